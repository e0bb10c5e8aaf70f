package book_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/book-tracker/internal/book"
	"github.com/redmonkez12/book-tracker/internal/store/memory"
)

func TestCatalog_AddAndList(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	id, err := catalog.Add(ctx, "owner-1", "Dune", "Herbert", 5, book.StatusToRead)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	books, err := catalog.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.Book{
		ID:     id,
		Title:  "Dune",
		Author: "Herbert",
		Rating: 5,
		Status: book.StatusToRead,
		UserID: "owner-1",
	}, books[0])
}

func TestCatalog_ListEmpty(t *testing.T) {
	catalog := book.NewCatalog(memory.New())

	books, err := catalog.List(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestCatalog_StoresValuesVerbatim(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	_, err := catalog.Add(ctx, "owner-1", "Odd", "Author", -3, "abandoned")
	require.NoError(t, err)

	books, err := catalog.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, -3, books[0].Rating)
	assert.Equal(t, "abandoned", books[0].Status)
}

func TestCatalog_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	aliceBook, err := catalog.Add(ctx, "alice", "Emma", "Austen", 4, book.StatusRead)
	require.NoError(t, err)
	_, err = catalog.Add(ctx, "bob", "Ulysses", "Joyce", 2, book.StatusToRead)
	require.NoError(t, err)

	books, err := catalog.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Ulysses", books[0].Title)

	// bob cannot see, change or delete alice's book
	assert.ErrorIs(t, catalog.UpdateStatus(ctx, aliceBook, "bob", book.StatusToRead), book.ErrNotFound)
	assert.ErrorIs(t, catalog.Delete(ctx, aliceBook, "bob"), book.ErrNotFound)

	books, err = catalog.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.StatusRead, books[0].Status)
}

func TestCatalog_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	id, err := catalog.Add(ctx, "owner-1", "Dune", "Herbert", 5, book.StatusToRead)
	require.NoError(t, err)

	require.NoError(t, catalog.UpdateStatus(ctx, id, "owner-1", book.StatusRead))

	books, err := catalog.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.StatusRead, books[0].Status)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestCatalog_Delete(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	first, err := catalog.Add(ctx, "owner-1", "One", "A", 1, book.StatusRead)
	require.NoError(t, err)
	second, err := catalog.Add(ctx, "owner-1", "Two", "B", 2, book.StatusRead)
	require.NoError(t, err)

	require.NoError(t, catalog.Delete(ctx, first, "owner-1"))

	books, err := catalog.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, second, books[0].ID)

	assert.ErrorIs(t, catalog.Delete(ctx, first, "owner-1"), book.ErrNotFound)
	assert.ErrorIs(t, catalog.UpdateStatus(ctx, first, "owner-1", book.StatusToRead), book.ErrNotFound)
}

func TestCatalog_UnknownID(t *testing.T) {
	ctx := context.Background()
	catalog := book.NewCatalog(memory.New())

	for _, id := range []string{"", "missing", "65f1c0ffee0000000000beef"} {
		assert.ErrorIs(t, catalog.UpdateStatus(ctx, id, "owner-1", book.StatusRead), book.ErrNotFound)
		assert.ErrorIs(t, catalog.Delete(ctx, id, "owner-1"), book.ErrNotFound)
	}
}
