// Package postgres stores users and books in PostgreSQL through Bun.
// Rows are keyed by UUIDs, exposed to the application in string form.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/book-tracker/internal/book"
	"github.com/redmonkez12/book-tracker/internal/user"
)

// uniqueViolation is the SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type bookRow struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull"`
	Title     string    `bun:"title,notnull"`
	Author    string    `bun:"author,notnull"`
	Rating    int       `bun:"rating,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Store implements user.Store and book.Store on a Bun DB
type Store struct {
	db *bun.DB
}

var (
	_ user.Store = (*Store)(nil)
	_ book.Store = (*Store)(nil)
)

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and the owner index when they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*userRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := s.db.NewCreateTable().
		Model((*bookRow)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}

	if _, err := s.db.NewCreateIndex().
		Model((*bookRow)(nil)).
		Index("books_user_id_idx").
		Column("user_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create books owner index: %w", err)
	}

	return nil
}

func (s *Store) InsertUser(ctx context.Context, email, passwordHash string) (*user.User, error) {
	row := &userRow{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, user.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return row.toUser(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().
		Model(row).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return row.toUser(), nil
}

func (s *Store) InsertBook(ctx context.Context, b *book.Book) (string, error) {
	ownerID, err := uuid.Parse(b.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid owner id %q: %w", b.UserID, err)
	}

	row := &bookRow{
		ID:     uuid.New(),
		UserID: ownerID,
		Title:  b.Title,
		Author: b.Author,
		Rating: b.Rating,
		Status: b.Status,
	}

	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to insert book: %w", err)
	}

	return row.ID.String(), nil
}

func (s *Store) ListBooks(ctx context.Context, ownerID string) ([]book.Book, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return []book.Book{}, nil
	}

	var rows []bookRow
	err = s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", owner).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]book.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toBook())
	}

	return books, nil
}

func (s *Store) UpdateBookStatus(ctx context.Context, id, ownerID, status string) error {
	bookID, owner, ok := parseIDs(id, ownerID)
	if !ok {
		return book.ErrNotFound
	}

	result, err := s.db.NewUpdate().
		Model((*bookRow)(nil)).
		Set("status = ?", status).
		Where("id = ?", bookID).
		Where("user_id = ?", owner).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update book status: %w", err)
	}

	return requireAffected(result)
}

func (s *Store) DeleteBook(ctx context.Context, id, ownerID string) error {
	bookID, owner, ok := parseIDs(id, ownerID)
	if !ok {
		return book.ErrNotFound
	}

	result, err := s.db.NewDelete().
		Model((*bookRow)(nil)).
		Where("id = ?", bookID).
		Where("user_id = ?", owner).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return book.ErrNotFound
	}
	return nil
}

// parseIDs reports false when either id is not a UUID; such ids cannot
// match any row
func parseIDs(bookID, ownerID string) (uuid.UUID, uuid.UUID, bool) {
	b, err := uuid.Parse(bookID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	o, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return b, o, true
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *userRow) toUser() *user.User {
	return &user.User{
		ID:           r.ID.String(),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

func (r *bookRow) toBook() book.Book {
	return book.Book{
		ID:     r.ID.String(),
		Title:  r.Title,
		Author: r.Author,
		Rating: r.Rating,
		Status: r.Status,
		UserID: r.UserID.String(),
	}
}
