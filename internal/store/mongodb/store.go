// Package mongodb stores users and books as MongoDB documents.
//
// Documents use store-generated ObjectIDs; they are exposed to the rest of
// the application as hex strings.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/redmonkez12/book-tracker/internal/book"
	"github.com/redmonkez12/book-tracker/internal/user"
)

const (
	usersCollection = "users"
	booksCollection = "books"
)

// Store implements user.Store and book.Store on a MongoDB database
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	books  *mongo.Collection
}

var (
	_ user.Store = (*Store)(nil)
	_ book.Store = (*Store)(nil)
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"hashed_password"`
}

type bookDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Title  string             `bson:"title"`
	Author string             `bson:"author"`
	Rating int                `bson:"rating"`
	Status string             `bson:"status"`
	UserID string             `bson:"user_id"`
}

// Connect dials uri, verifies the connection and returns a store on database
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := New(client.Database(database))
	s.client = client

	return s, nil
}

// New wraps an existing database handle. Close is a no-op for stores built
// this way; the caller owns the client.
func New(db *mongo.Database) *Store {
	return &Store{
		users: db.Collection(usersCollection),
		books: db.Collection(booksCollection),
	}
}

// Close disconnects the client opened by Connect
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index and the owner index on books
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create books owner index: %w", err)
	}

	return nil
}

func (s *Store) InsertUser(ctx context.Context, email, passwordHash string) (*user.User, error) {
	doc := userDocument{
		ID:             primitive.NewObjectID(),
		Email:          email,
		HashedPassword: passwordHash,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, user.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return doc.toUser(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return doc.toUser(), nil
}

func (s *Store) InsertBook(ctx context.Context, b *book.Book) (string, error) {
	doc := bookDocument{
		ID:     primitive.NewObjectID(),
		Title:  b.Title,
		Author: b.Author,
		Rating: b.Rating,
		Status: b.Status,
		UserID: b.UserID,
	}

	if _, err := s.books.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert book: %w", err)
	}

	return doc.ID.Hex(), nil
}

// ListBooks returns ownerID's books sorted by _id, which follows insertion order
func (s *Store) ListBooks(ctx context.Context, ownerID string) ([]book.Book, error) {
	cursor, err := s.books.Find(ctx,
		bson.M{"user_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]book.Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, doc.toBook())
	}

	return books, nil
}

func (s *Store) UpdateBookStatus(ctx context.Context, id, ownerID, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.ErrNotFound
	}

	res, err := s.books.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": ownerID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return book.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.ErrNotFound
	}

	res, err := s.books.DeleteOne(ctx, bson.M{"_id": oid, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return book.ErrNotFound
	}

	return nil
}

func (d userDocument) toUser() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.HashedPassword,
	}
}

func (d bookDocument) toBook() book.Book {
	return book.Book{
		ID:     d.ID.Hex(),
		Title:  d.Title,
		Author: d.Author,
		Rating: d.Rating,
		Status: d.Status,
		UserID: d.UserID,
	}
}
