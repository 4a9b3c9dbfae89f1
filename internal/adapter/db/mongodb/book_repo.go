package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"library-service/internal/domain/book"
	pkgerrors "library-service/pkg/errors"
)

// BookRepo implements the catalog Repository interface on a MongoDB collection.
type BookRepo struct {
	col *mongo.Collection
	log *zap.Logger
}

// NewBookRepo creates a new BookRepo.
func NewBookRepo(db *mongo.Database, log *zap.Logger) *BookRepo {
	return &BookRepo{col: db.Collection(booksCollection), log: log}
}

// Create inserts a new book.
func (r *BookRepo) Create(ctx context.Context, b *book.Book) (string, error) {
	if b == nil {
		return "", errors.New("book cannot be nil")
	}

	now := time.Now().UTC()
	doc := bookDocument{
		ID:        uuid.NewString(),
		Name:      b.Name,
		Author:    b.Author,
		Code:      b.Code,
		Copies:    b.Copies,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		r.log.Error("failed to insert book", zap.Error(err), zap.String("code", b.Code))
		return "", fmt.Errorf("failed to create book: %w", err)
	}

	b.CreatedAt, b.UpdatedAt = now, now
	return doc.ID, nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepo) GetByID(ctx context.Context, id string) (*book.Book, error) {
	var doc bookDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrBookNotFound
		}
		r.log.Error("failed to find book", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns all books, or those whose name or code contains search
// case-insensitively.
func (r *BookRepo) List(ctx context.Context, search string) ([]book.Book, error) {
	filter := bson.M{}
	if search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter = bson.M{"$or": bson.A{bson.M{"name": re}, bson.M{"code": re}}}
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.log.Error("failed to list books", zap.Error(err), zap.String("search", search))
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]book.Book, len(docs))
	for i := range docs {
		books[i] = *docs[i].toDomain()
	}
	return books, nil
}

// Update applies a partial update and returns the stored book.
func (r *BookRepo) Update(ctx context.Context, id string, p book.Patch) (*book.Book, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.Code != nil {
		set["code"] = *p.Code
	}
	if p.Copies != nil {
		set["copies"] = *p.Copies
	}

	var doc bookDocument
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrBookNotFound
		}
		r.log.Error("failed to update book", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes a book by ID.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("failed to delete book", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return pkgerrors.ErrBookNotFound
	}
	return nil
}

// DecrementCopies takes one copy only while copies is positive.
func (r *BookRepo) DecrementCopies(ctx context.Context, id string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "copies": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"copies": -1}},
	)
	if err != nil {
		r.log.Error("failed to decrement copies", zap.Error(err), zap.String("id", id))
		return false, fmt.Errorf("failed to decrement copies: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// IncrementCopies puts one copy back.
func (r *BookRepo) IncrementCopies(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"copies": 1}})
	if err != nil {
		r.log.Error("failed to increment copies", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to increment copies: %w", err)
	}
	if res.MatchedCount == 0 {
		return pkgerrors.ErrBookNotFound
	}
	return nil
}
