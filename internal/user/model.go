package user

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrDuplicateUser = errors.New("email already registered")
	// ErrAuthFailure covers both unknown emails and wrong passwords
	ErrAuthFailure = errors.New("incorrect email or password")
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose password hash in JSON
}
