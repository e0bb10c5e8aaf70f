package auth

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidToken covers every way a bearer token can be rejected: bad
// signature, malformed, expired or missing its subject
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and validates bearer tokens whose subject is the
// user's email. Implementations include JWTService (HMAC) and PasetoService
// (PASETO v4.local).
type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Validate(tokenStr string) (string, error)
}

// NewTokenService picks the implementation for the configured algorithm.
// "paseto" selects PASETO v4.local; anything else is treated as a JWT HMAC
// algorithm name such as HS256.
func NewTokenService(algorithm, secretKey string) (TokenService, error) {
	switch strings.ToLower(algorithm) {
	case "paseto", "v4.local":
		return NewPasetoService([]byte(secretKey))
	default:
		return NewJWTService(algorithm, []byte(secretKey))
	}
}
