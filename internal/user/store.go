package user

import "context"

// Store persists user records. Implementations translate their native
// identifiers to string form and enforce email uniqueness.
type Store interface {
	// InsertUser returns ErrDuplicateUser when the email is already taken
	InsertUser(ctx context.Context, email, passwordHash string) (*User, error)
	// FindUserByEmail returns ErrNotFound when no user has the email
	FindUserByEmail(ctx context.Context, email string) (*User, error)
}
