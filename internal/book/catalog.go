package book

import (
	"context"
	"errors"
	"fmt"
)

// Catalog manages the books of each user
type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// Add stores a new book for ownerID and returns its id. Rating and status are
// stored as given.
func (c *Catalog) Add(ctx context.Context, ownerID, title, author string, rating int, status string) (string, error) {
	id, err := c.store.InsertBook(ctx, &Book{
		Title:  title,
		Author: author,
		Rating: rating,
		Status: status,
		UserID: ownerID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add book: %w", err)
	}

	return id, nil
}

// List returns every book owned by ownerID
func (c *Catalog) List(ctx context.Context, ownerID string) ([]Book, error) {
	books, err := c.store.ListBooks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}

	return books, nil
}

// UpdateStatus sets the status of one of ownerID's books
func (c *Catalog) UpdateStatus(ctx context.Context, bookID, ownerID, status string) error {
	if err := c.store.UpdateBookStatus(ctx, bookID, ownerID, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update book status: %w", err)
	}

	return nil
}

// Delete removes one of ownerID's books
func (c *Catalog) Delete(ctx context.Context, bookID, ownerID string) error {
	if err := c.store.DeleteBook(ctx, bookID, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return nil
}
