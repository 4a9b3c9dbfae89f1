package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"library-service/internal/domain/loan"
	pkgerrors "library-service/pkg/errors"
)

// LoanRepo implements the loan Repository interface on a MongoDB collection.
type LoanRepo struct {
	col *mongo.Collection
	log *zap.Logger
}

// NewLoanRepo creates a new LoanRepo.
func NewLoanRepo(db *mongo.Database, log *zap.Logger) *LoanRepo {
	return &LoanRepo{col: db.Collection(loansCollection), log: log}
}

// Create inserts an open loan.
func (r *LoanRepo) Create(ctx context.Context, l *loan.Loan) (string, error) {
	if l == nil {
		return "", errors.New("loan cannot be nil")
	}

	doc := loanDocument{
		ID:         uuid.NewString(),
		UserID:     l.UserID,
		Roll:       l.Roll,
		Email:      l.Email,
		BookID:     l.BookID,
		BookName:   l.BookName,
		BookCode:   l.BookCode,
		Author:     l.Author,
		BorrowDate: l.BorrowDate,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		r.log.Error("failed to insert loan", zap.Error(err), zap.String("book_id", l.BookID))
		return "", fmt.Errorf("failed to create loan: %w", err)
	}
	return doc.ID, nil
}

// GetByID retrieves a loan by ID.
func (r *LoanRepo) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	var doc loanDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrLoanNotFound
		}
		r.log.Error("failed to find loan", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return doc.toDomain(), nil
}

// MarkReturned closes the loan only while it is still open.
func (r *LoanRepo) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "returned": false},
		bson.M{"$set": bson.M{"returned": true, "return_date": at}},
	)
	if err != nil {
		r.log.Error("failed to mark loan returned", zap.Error(err), zap.String("id", id))
		return false, fmt.Errorf("failed to mark loan returned: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// ListByUserID returns the user's loans, newest first.
func (r *LoanRepo) ListByUserID(ctx context.Context, userID string) ([]loan.Loan, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "borrow_date", Value: -1}}))
	if err != nil {
		r.log.Error("failed to list loans", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	var docs []loanDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode loans: %w", err)
	}

	loans := make([]loan.Loan, len(docs))
	for i := range docs {
		loans[i] = *docs[i].toDomain()
	}
	return loans, nil
}
