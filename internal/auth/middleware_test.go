package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/book-tracker/internal/httputil"
	"github.com/redmonkez12/book-tracker/internal/user"
)

type stubUsers struct {
	users map[string]*user.User
	err   error
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func TestMiddleware_RequireAuth(t *testing.T) {
	tokens := newTestJWT(t)
	reader := &user.User{ID: "u-1", Email: "reader@example.com"}
	users := &stubUsers{users: map[string]*user.User{reader.Email: reader}}

	valid, err := tokens.Issue(reader.Email, time.Minute)
	require.NoError(t, err)
	orphan, err := tokens.Issue("gone@example.com", time.Minute)
	require.NoError(t, err)
	expired, err := tokens.Issue(reader.Email, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "scheme is case-insensitive", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "forged token", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
		{name: "subject without user", header: "Bearer " + orphan, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotOwner, _ = OwnerID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			NewMiddleware(tokens, users).RequireAuth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, reader.ID, gotOwner)
				return
			}

			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			var body httputil.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, credentialsMessage, body.Detail)
			assert.Equal(t, httputil.CodeInvalidToken, body.Code)
		})
	}
}

func TestMiddleware_StoreFailure(t *testing.T) {
	tokens := newTestJWT(t)
	token, err := tokens.Issue("reader@example.com", time.Minute)
	require.NoError(t, err)

	users := &stubUsers{err: errors.New("connection reset")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	NewMiddleware(tokens, users).RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOwnerID_WithoutUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := OwnerID(req)
	assert.False(t, ok)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:1234", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 203.0.113.8 "}, remote: "10.0.0.1:1234", want: "203.0.113.8"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "remote addr without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
