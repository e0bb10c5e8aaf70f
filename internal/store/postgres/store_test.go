package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestParseIDs(t *testing.T) {
	bookID, ownerID := uuid.New(), uuid.New()

	b, o, ok := parseIDs(bookID.String(), ownerID.String())
	assert.True(t, ok)
	assert.Equal(t, bookID, b)
	assert.Equal(t, ownerID, o)

	_, _, ok = parseIDs("65f1c0ffee0000000000beef", ownerID.String())
	assert.False(t, ok)

	_, _, ok = parseIDs(bookID.String(), "")
	assert.False(t, ok)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: uniqueViolation}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate key value violates unique constraint")))
}

func TestRowConversion(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	row := &bookRow{ID: id, UserID: owner, Title: "T", Author: "Au", Rating: 5, Status: "read"}

	b := row.toBook()
	assert.Equal(t, id.String(), b.ID)
	assert.Equal(t, owner.String(), b.UserID)
	assert.Equal(t, "read", b.Status)

	u := (&userRow{ID: owner, Email: "a@example.com", PasswordHash: "h"}).toUser()
	assert.Equal(t, owner.String(), u.ID)
	assert.Equal(t, "h", u.PasswordHash)
}
