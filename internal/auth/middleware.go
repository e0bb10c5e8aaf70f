package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/book-tracker/internal/httputil"
	"github.com/redmonkez12/book-tracker/internal/logging"
	"github.com/redmonkez12/book-tracker/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

const credentialsMessage = "Could not validate credentials"

// UserFinder resolves a token subject to a stored user
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	users        UserFinder
}

func NewMiddleware(tokenService TokenService, users UserFinder) *Middleware {
	return &Middleware{tokenService: tokenService, users: users}
}

// RequireAuth validates the bearer token and loads its user into the request
// context. Every rejection gets the same 401 so callers cannot tell a forged
// token from one whose user no longer exists.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := bearerToken(r)
		if !ok {
			logger.Debug("missing or malformed authorization header")
			respondUnauthorized(w)
			return
		}

		email, err := m.tokenService.Validate(token)
		if err != nil {
			logger.Debug("token rejected", "error", err.Error())
			respondUnauthorized(w)
			return
		}

		u, err := m.users.FindByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				logger.Warn("token subject has no user", "email", email)
				respondUnauthorized(w)
				return
			}
			logger.Error("failed to resolve token subject", "error", err.Error())
			httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondErrorWithCode(w, credentialsMessage, httputil.CodeInvalidToken, http.StatusUnauthorized)
}

// GetUserFromContext returns the authenticated user stored by RequireAuth
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}

// OwnerID returns the authenticated user's id; it fits book.OwnerFunc
func OwnerID(r *http.Request) (string, bool) {
	u, ok := GetUserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return u.ID, true
}
