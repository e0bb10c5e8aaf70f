package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redmonkez12/book-tracker/internal/password"
)

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// dummyHash is verified against when the email is unknown, so a failed login
// costs the same whether or not the account exists
var dummyHash = sync.OnceValue(func() string {
	hash, err := password.Hash("book-tracker-unknown-user")
	if err != nil {
		panic(fmt.Sprintf("failed to hash dummy password: %v", err))
	}
	return hash
})

// Directory handles signup, lookup and credential checks for users
type Directory struct {
	store    Store
	tokens   TokenIssuer
	tokenTTL time.Duration
	verify   func(plainPassword, encodedHash string) bool
}

func NewDirectory(store Store, tokens TokenIssuer, tokenTTL time.Duration) *Directory {
	dummyHash()

	return &Directory{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		verify:   password.Verify,
	}
}

// Create registers a new user. Emails are matched exactly, without
// normalisation. No token is issued; callers log in separately.
func (d *Directory) Create(ctx context.Context, email, plainPassword string) error {
	_, err := d.store.FindUserByEmail(ctx, email)
	if err == nil {
		return ErrDuplicateUser
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := password.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// The store's unique index catches a concurrent signup for the same email
	if _, err := d.store.InsertUser(ctx, email, passwordHash); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail returns the user with the given email or ErrNotFound
func (d *Directory) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := d.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// Authenticate checks the credentials and returns a bearer token whose
// subject is the user's email
func (d *Directory) Authenticate(ctx context.Context, email, plainPassword string) (string, error) {
	if email == "" || plainPassword == "" {
		return "", ErrAuthFailure
	}

	u, err := d.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d.verify(plainPassword, dummyHash())
			return "", ErrAuthFailure
		}
		return "", err
	}

	if !d.verify(plainPassword, u.PasswordHash) {
		return "", ErrAuthFailure
	}

	token, err := d.tokens.Issue(u.Email, d.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
