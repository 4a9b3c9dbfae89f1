package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "library-service/internal/domain/book"
	"library-service/internal/usecase/validate"
	pkgerrors "library-service/pkg/errors"
	"library-service/pkg/logger"
	"library-service/pkg/security"
)

// Repository defines the interface for book data access operations.
// Lookups and mutations by id return pkgerrors.ErrBookNotFound when no
// book matches.
type Repository interface {
	Create(ctx context.Context, b *domain.Book) (string, error)                  // Create a new book and return its id
	GetByID(ctx context.Context, id string) (*domain.Book, error)                // Retrieve book by ID
	List(ctx context.Context, search string) ([]domain.Book, error)              // List books, optionally filtered by name or code
	Update(ctx context.Context, id string, p domain.Patch) (*domain.Book, error) // Apply a partial update and return the result
	Delete(ctx context.Context, id string) error                                 // Delete book by ID
	DecrementCopies(ctx context.Context, id string) (bool, error)                // Take one copy if any is left
	IncrementCopies(ctx context.Context, id string) error                        // Put one copy back
}

// Service implements catalog management over book records.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validate.Validator
}

// New creates a new catalog Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validate.New()}
}

// CreateBook stores a new book record.
func (s *Service) CreateBook(ctx context.Context, in CreateBookRequest) (*BookResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating book", zap.String("name", in.Name), zap.String("code", in.Code), zap.Int("copies", in.Copies))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	b := &domain.Book{
		Name:   in.Name,
		Author: in.Author,
		Code:   in.Code,
		Copies: in.Copies,
	}
	id, err := s.repo.Create(ctx, b)
	if err != nil {
		log.Error("failed to create book", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create book", err)
	}
	b.ID = id

	return &BookResponse{Book: toDTO(b)}, nil
}

// ListBooks returns the catalog, restricted to books whose name or code
// contains the search string (case-insensitive) when one is given.
func (s *Service) ListBooks(ctx context.Context, in ListBooksRequest) (*ListBooksResponse, error) {
	log := logger.WithContext(ctx, s.log)

	search, err := security.ValidateSearchQuery(in.Search)
	if err != nil {
		log.Warn("invalid search query", zap.String("search", in.Search), zap.Error(err))
		return nil, pkgerrors.NewValidationError("search", err.Error())
	}

	log.Info("listing books", zap.String("search", search))

	books, err := s.repo.List(ctx, search)
	if err != nil {
		log.Error("failed to list books", zap.String("search", search), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list books", err)
	}

	out := make([]Book, len(books))
	for i := range books {
		out[i] = toDTO(&books[i])
	}
	return &ListBooksResponse{Books: out}, nil
}

// GetBook retrieves a book by id.
func (s *Service) GetBook(ctx context.Context, in GetBookRequest) (*BookResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, s.wrapError(ctx, "failed to get book", in.ID, err)
	}
	return &BookResponse{Book: toDTO(b)}, nil
}

// UpdateBook merges the given fields into the book. Updating a missing book
// fails with ErrBookNotFound.
func (s *Service) UpdateBook(ctx context.Context, in UpdateBookRequest) (*BookResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating book", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	patch := domain.Patch{Name: in.Name, Author: in.Author, Code: in.Code, Copies: in.Copies}
	if patch.IsEmpty() {
		return nil, pkgerrors.NewValidationError("", "at least one field must be provided")
	}

	b, err := s.repo.Update(ctx, in.ID, patch)
	if err != nil {
		return nil, s.wrapError(ctx, "failed to update book", in.ID, err)
	}
	return &BookResponse{Book: toDTO(b)}, nil
}

// DeleteBook removes a book record.
func (s *Service) DeleteBook(ctx context.Context, in DeleteBookRequest) (*DeleteBookResponse, error) {
	logger.WithContext(ctx, s.log).Info("deleting book", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, in.ID); err != nil {
		return nil, s.wrapError(ctx, "failed to delete book", in.ID, err)
	}
	return &DeleteBookResponse{ID: in.ID}, nil
}

func (s *Service) wrapError(ctx context.Context, msg, id string, err error) error {
	if errors.Is(err, pkgerrors.ErrBookNotFound) {
		logger.WithContext(ctx, s.log).Warn("book not found", zap.String("id", id))
		return err
	}
	logger.WithContext(ctx, s.log).Error(msg, zap.String("id", id), zap.Error(err))
	return pkgerrors.NewInternalError(msg, err)
}

func toDTO(b *domain.Book) Book {
	return Book{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Code:      b.Code,
		Copies:    b.Copies,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
