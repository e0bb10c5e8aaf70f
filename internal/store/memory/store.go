// Package memory is an in-process store for tests and local development.
// Data lives only as long as the process.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/redmonkez12/book-tracker/internal/book"
	"github.com/redmonkez12/book-tracker/internal/user"
)

// Store implements user.Store and book.Store. Books keep insertion order.
type Store struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by email
	books []book.Book
}

var (
	_ user.Store = (*Store)(nil)
	_ book.Store = (*Store)(nil)
)

func New() *Store {
	return &Store{users: make(map[string]user.User)}
}

func (s *Store) InsertUser(_ context.Context, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return nil, user.ErrDuplicateUser
	}

	u := user.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash}
	s.users[email] = u

	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}

	return &u, nil
}

// UserCount returns the number of stored users
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) InsertBook(_ context.Context, b *book.Book) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *b
	stored.ID = uuid.NewString()
	s.books = append(s.books, stored)

	return stored.ID, nil
}

func (s *Store) ListBooks(_ context.Context, ownerID string) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := []book.Book{}
	for _, b := range s.books {
		if b.UserID == ownerID {
			books = append(books, b)
		}
	}

	return books, nil
}

func (s *Store) UpdateBookStatus(_ context.Context, id, ownerID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id, ownerID)
	if i < 0 {
		return book.ErrNotFound
	}
	s.books[i].Status = status

	return nil
}

func (s *Store) DeleteBook(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id, ownerID)
	if i < 0 {
		return book.ErrNotFound
	}
	s.books = append(s.books[:i], s.books[i+1:]...)

	return nil
}

// indexOf must be called with mu held
func (s *Store) indexOf(id, ownerID string) int {
	for i, b := range s.books {
		if b.ID == id && b.UserID == ownerID {
			return i
		}
	}
	return -1
}
