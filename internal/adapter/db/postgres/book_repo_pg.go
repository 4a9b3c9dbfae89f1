package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-service/internal/domain/book"
	pkgerrors "library-service/pkg/errors"
	"library-service/pkg/security"
)

// BookRepoPG implements the catalog Repository interface using GORM.
type BookRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewBookRepoPG creates a new instance of BookRepoPG.
func NewBookRepoPG(db *gorm.DB, log *zap.Logger) *BookRepoPG {
	return &BookRepoPG{db: db, log: log}
}

// Create inserts a new book into the database.
func (r *BookRepoPG) Create(ctx context.Context, b *book.Book) (string, error) {
	if b == nil {
		return "", errors.New("book cannot be nil")
	}

	model := BookSchema{
		ID:      uuid.NewString(),
		Name:    b.Name,
		Author:  b.Author,
		Code:    b.Code,
		Copies:  b.Copies,
		NameKey: searchKey(b.Name),
		CodeKey: searchKey(b.Code),
	}

	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create book in db", zap.Error(err), zap.String("code", b.Code))
		return "", fmt.Errorf("failed to create book: %w", err)
	}

	b.CreatedAt, b.UpdatedAt = model.CreatedAt, model.UpdatedAt
	r.log.Info("book created in db", zap.String("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepoPG) GetByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookSchema
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("book not found", zap.String("id", id))
			return nil, pkgerrors.ErrBookNotFound
		}
		r.log.Error("failed to get book from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return toBook(&model), nil
}

// List returns all books, or those whose name or code contains search
// case-insensitively. LIKE wildcards in search match literally. Matching runs
// against the stored search keys so non-ASCII letters fold on every driver.
func (r *BookRepoPG) List(ctx context.Context, search string) ([]book.Book, error) {
	q := conn(ctx, r.db).Order("name ASC")
	if search != "" {
		pattern := "%" + security.SanitizeSearchString(searchKey(search)) + "%"
		q = q.Where("name_key LIKE ? ESCAPE '\\' OR code_key LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var models []BookSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list books from db", zap.Error(err), zap.String("search", search))
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]book.Book, len(models))
	for i := range models {
		books[i] = *toBook(&models[i])
	}
	return books, nil
}

// Update applies a partial update. It fails with ErrBookNotFound when no
// row matched the id.
func (r *BookRepoPG) Update(ctx context.Context, id string, p book.Patch) (*book.Book, error) {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
		fields["name_key"] = searchKey(*p.Name)
	}
	if p.Author != nil {
		fields["author"] = *p.Author
	}
	if p.Code != nil {
		fields["code"] = *p.Code
		fields["code_key"] = searchKey(*p.Code)
	}
	if p.Copies != nil {
		fields["copies"] = *p.Copies
	}
	if len(fields) == 0 {
		return nil, errors.New("no fields to update")
	}

	res := conn(ctx, r.db).Model(&BookSchema{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.Error("failed to update book in db", zap.Error(res.Error), zap.String("id", id))
		return nil, fmt.Errorf("failed to update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("book not found for update", zap.String("id", id))
		return nil, pkgerrors.ErrBookNotFound
	}

	r.log.Info("book updated in db", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete removes a book by ID.
func (r *BookRepoPG) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&BookSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete book in db", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrBookNotFound
	}

	r.log.Info("book deleted in db", zap.String("id", id))
	return nil
}

// DecrementCopies takes one copy in a single conditional UPDATE, so two
// callers can never both take the last copy.
func (r *BookRepoPG) DecrementCopies(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Model(&BookSchema{}).
		Where("id = ? AND copies > 0", id).
		Update("copies", gorm.Expr("copies - ?", 1))
	if res.Error != nil {
		r.log.Error("failed to decrement copies", zap.Error(res.Error), zap.String("id", id))
		return false, fmt.Errorf("failed to decrement copies: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// IncrementCopies puts one copy back.
func (r *BookRepoPG) IncrementCopies(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Model(&BookSchema{}).
		Where("id = ?", id).
		Update("copies", gorm.Expr("copies + ?", 1))
	if res.Error != nil {
		r.log.Error("failed to increment copies", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to increment copies: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrBookNotFound
	}
	return nil
}

func toBook(m *BookSchema) *book.Book {
	return &book.Book{
		ID:        m.ID,
		Name:      m.Name,
		Author:    m.Author,
		Code:      m.Code,
		Copies:    m.Copies,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
