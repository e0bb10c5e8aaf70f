package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPasetoKey = []byte("0123456789abcdef0123456789abcdef")

func newTestJWT(t *testing.T) *JWTService {
	t.Helper()
	s, err := NewJWTService("HS256", []byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newTestPaseto(t *testing.T) *PasetoService {
	t.Helper()
	s, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	services := map[string]TokenService{
		"jwt":    newTestJWT(t),
		"paseto": newTestPaseto(t),
	}

	for name, s := range services {
		t.Run(name, func(t *testing.T) {
			token, err := s.Issue("reader@example.com", 30*time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			subject, err := s.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, "reader@example.com", subject)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	services := map[string]TokenService{
		"jwt":    newTestJWT(t),
		"paseto": newTestPaseto(t),
	}

	for name, s := range services {
		t.Run(name, func(t *testing.T) {
			token, err := s.Issue("reader@example.com", -time.Minute)
			require.NoError(t, err)

			_, err = s.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_ZeroTTLIsExpired(t *testing.T) {
	s := newTestJWT(t)

	token, err := s.Issue("reader@example.com", 0)
	require.NoError(t, err)

	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongKey(t *testing.T) {
	t.Run("jwt", func(t *testing.T) {
		token, err := newTestJWT(t).Issue("reader@example.com", time.Minute)
		require.NoError(t, err)

		other, err := NewJWTService("HS256", []byte("another-secret"))
		require.NoError(t, err)

		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("paseto", func(t *testing.T) {
		token, err := newTestPaseto(t).Issue("reader@example.com", time.Minute)
		require.NoError(t, err)

		other, err := NewPasetoService([]byte("fedcba9876543210fedcba9876543210"))
		require.NoError(t, err)

		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTService_Rejects(t *testing.T) {
	s := newTestJWT(t)
	key := []byte("test-secret")
	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))

	alice, err := s.Issue("alice@example.com", time.Minute)
	require.NoError(t, err)
	bob, err := s.Issue("bob@example.com", time.Minute)
	require.NoError(t, err)

	// alice's header and signature around bob's claims
	aliceParts := strings.Split(alice, ".")
	bobParts := strings.Split(bob, ".")
	tampered := aliceParts[0] + "." + bobParts[1] + "." + aliceParts[2]

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: exp}).SignedString(key)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice@example.com"}).SignedString(key)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: exp,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: exp,
	}).SignedString(key)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "tampered claims", token: tampered},
		{name: "missing subject", token: noSubject},
		{name: "missing expiry", token: noExpiry},
		{name: "alg none", token: unsigned},
		{name: "unexpected algorithm", token: otherAlg},
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasetoService_RejectsMalformed(t *testing.T) {
	s := newTestPaseto(t)

	token, err := s.Issue("reader@example.com", time.Minute)
	require.NoError(t, err)

	for _, bad := range []string{"", "v4.local.", token[:len(token)-8], "v2.local." + strings.TrimPrefix(token, "v4.local.")} {
		_, err := s.Validate(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		key       string
		wantType  TokenService
		wantErr   bool
	}{
		{name: "HS256", algorithm: "HS256", key: "secret", wantType: &JWTService{}},
		{name: "HS512", algorithm: "HS512", key: "secret", wantType: &JWTService{}},
		{name: "paseto", algorithm: "paseto", key: string(testPasetoKey), wantType: &PasetoService{}},
		{name: "v4.local", algorithm: "V4.LOCAL", key: string(testPasetoKey), wantType: &PasetoService{}},
		{name: "asymmetric jwt algorithm", algorithm: "RS256", key: "secret", wantErr: true},
		{name: "unknown algorithm", algorithm: "ROT13", key: "secret", wantErr: true},
		{name: "empty jwt key", algorithm: "HS256", key: "", wantErr: true},
		{name: "short paseto key", algorithm: "paseto", key: "too-short", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewTokenService(tt.algorithm, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, s)
		})
	}
}
