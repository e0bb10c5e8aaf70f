package book

import "errors"

// ErrNotFound is returned when no book matches both the id and the owner.
// A book owned by someone else is indistinguishable from a missing one.
var ErrNotFound = errors.New("book not found")

const (
	StatusRead   = "read"
	StatusToRead = "to-read"
)

type Book struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Status string `json:"status"`
	UserID string `json:"user_id"`
}
