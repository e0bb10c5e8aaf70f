package book

import "context"

// Store persists books. Every lookup by id is also filtered by owner.
// Ids that are not valid for the backend yield ErrNotFound.
type Store interface {
	InsertBook(ctx context.Context, b *Book) (string, error)
	ListBooks(ctx context.Context, ownerID string) ([]Book, error)
	UpdateBookStatus(ctx context.Context, id, ownerID, status string) error
	DeleteBook(ctx context.Context, id, ownerID string) error
}
