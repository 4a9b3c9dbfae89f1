package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-service/internal/domain/loan"
	pkgerrors "library-service/pkg/errors"
)

// LoanRepoPG implements the loan Repository interface using GORM.
type LoanRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLoanRepoPG creates a new instance of LoanRepoPG.
func NewLoanRepoPG(db *gorm.DB, log *zap.Logger) *LoanRepoPG {
	return &LoanRepoPG{db: db, log: log}
}

// Create inserts an open loan.
func (r *LoanRepoPG) Create(ctx context.Context, l *loan.Loan) (string, error) {
	if l == nil {
		return "", errors.New("loan cannot be nil")
	}

	model := LoanSchema{
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

	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create loan in db", zap.Error(err), zap.String("book_id", l.BookID))
		return "", fmt.Errorf("failed to create loan: %w", err)
	}

	r.log.Info("loan created in db", zap.String("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a loan by its ID.
func (r *LoanRepoPG) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	var model LoanSchema
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("loan not found", zap.String("id", id))
			return nil, pkgerrors.ErrLoanNotFound
		}
		r.log.Error("failed to get loan from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return toLoan(&model), nil
}

// MarkReturned closes the loan only while it is still open.
func (r *LoanRepoPG) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&LoanSchema{}).
		Where("id = ? AND returned = ?", id, false).
		Updates(map[string]any{"returned": true, "return_date": at})
	if res.Error != nil {
		r.log.Error("failed to mark loan returned", zap.Error(res.Error), zap.String("id", id))
		return false, fmt.Errorf("failed to mark loan returned: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListByUserID returns the user's loans, newest first.
func (r *LoanRepoPG) ListByUserID(ctx context.Context, userID string) ([]loan.Loan, error) {
	var models []LoanSchema
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("borrow_date DESC").Find(&models).Error; err != nil {
		r.log.Error("failed to list loans from db", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	loans := make([]loan.Loan, len(models))
	for i := range models {
		loans[i] = *toLoan(&models[i])
	}
	return loans, nil
}

func toLoan(m *LoanSchema) *loan.Loan {
	return &loan.Loan{
		ID:         m.ID,
		UserID:     m.UserID,
		Roll:       m.Roll,
		Email:      m.Email,
		BookID:     m.BookID,
		BookName:   m.BookName,
		BookCode:   m.BookCode,
		Author:     m.Author,
		BorrowDate: m.BorrowDate,
		Returned:   m.Returned,
		ReturnDate: m.ReturnDate,
	}
}
