package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	bookdomain "library-service/internal/domain/book"
	domain "library-service/internal/domain/loan"
	userdomain "library-service/internal/domain/user"
	"library-service/internal/usecase/validate"
	pkgerrors "library-service/pkg/errors"
	"library-service/pkg/logger"
)

// Repository defines the interface for loan data access operations.
type Repository interface {
	// Create inserts an open loan and returns its id.
	Create(ctx context.Context, l *domain.Loan) (string, error)
	// GetByID returns pkgerrors.ErrLoanNotFound when no loan matches.
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	// MarkReturned closes the loan only if it is still open. It reports
	// false when no open loan with that id exists.
	MarkReturned(ctx context.Context, id string, at time.Time) (bool, error)
	// ListByUserID returns the user's loans, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error)
}

// BookRepository is the subset of catalog storage the workflow needs.
type BookRepository interface {
	GetByID(ctx context.Context, id string) (*bookdomain.Book, error)
	// DecrementCopies takes one copy only if at least one is available, as a
	// single store operation. It reports false when no copy was left.
	DecrementCopies(ctx context.Context, id string) (bool, error)
	IncrementCopies(ctx context.Context, id string) error
}

// UserFinder resolves borrowers.
type UserFinder interface {
	GetByRoll(ctx context.Context, roll string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Transactor runs fn so that either every store write made through ctx
// inside it takes effect or none does.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the loan workflow.
type Service struct {
	loans     Repository
	books     BookRepository
	users     UserFinder
	tx        Transactor
	publisher EventPublisher
	log       *zap.Logger
	validate  *validate.Validator
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the publisher that receives committed loan events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a new loan Service.
func New(loans Repository, books BookRepository, users UserFinder, tx Transactor, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		loans:     loans,
		books:     books,
		users:     users,
		tx:        tx,
		publisher: NopPublisher{},
		log:       log,
		validate:  validate.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Borrow lends one copy of a book to the user with the given roll. The copy
// decrement and the loan insert commit together or not at all.
func (s *Service) Borrow(ctx context.Context, in BorrowRequest) (*BorrowResponse, error) {
	in.Roll = strings.TrimSpace(in.Roll)
	in.BookID = strings.TrimSpace(in.BookID)
	log := logger.WithContext(ctx, s.log).With(zap.String("roll", in.Roll), zap.String("book_id", in.BookID))
	log.Info("borrowing book")

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	u, err := s.users.GetByRoll(ctx, in.Roll)
	if err != nil {
		return nil, s.wrapError(log, "failed to look up user", err)
	}

	var created *domain.Loan
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.books.GetByID(ctx, in.BookID)
		if err != nil {
			return err
		}

		taken, err := s.books.DecrementCopies(ctx, b.ID)
		if err != nil {
			return err
		}
		if !taken {
			return pkgerrors.ErrNoCopiesAvailable
		}

		l := domain.New(u, b, s.now())
		id, err := s.loans.Create(ctx, l)
		if err != nil {
			return err
		}
		l.ID = id
		created = l
		return nil
	})
	if err != nil {
		return nil, s.wrapError(log, "failed to borrow book", err)
	}

	log.Info("book borrowed", zap.String("loan_id", created.ID))
	s.publish(ctx, EventBorrowed, created, created.BorrowDate)

	return &BorrowResponse{Loan: toDTO(created)}, nil
}

// ReturnLoan closes an open loan and puts the copy back. Closing the loan and
// the copy increment commit together or not at all.
func (s *Service) ReturnLoan(ctx context.Context, in ReturnLoanRequest) (*ReturnLoanResponse, error) {
	in.LoanID = strings.TrimSpace(in.LoanID)
	log := logger.WithContext(ctx, s.log).With(zap.String("loan_id", in.LoanID))
	log.Info("returning loan")

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	var returned *domain.Loan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		l, err := s.loans.GetByID(ctx, in.LoanID)
		if err != nil {
			return err
		}
		if l.Returned {
			return pkgerrors.ErrAlreadyReturned
		}

		at := s.now()
		closed, err := s.loans.MarkReturned(ctx, l.ID, at)
		if err != nil {
			return err
		}
		if !closed {
			// lost the race against a concurrent return
			return pkgerrors.ErrAlreadyReturned
		}

		// A book deleted while on loan has no copy count to restore; the
		// loan still closes.
		if err := s.books.IncrementCopies(ctx, l.BookID); err != nil {
			if !errors.Is(err, pkgerrors.ErrBookNotFound) {
				return err
			}
			logger.WithContext(ctx, s.log).Warn("returned loan for deleted book",
				zap.String("loan_id", l.ID),
				zap.String("book_id", l.BookID),
			)
		}

		l.Returned = true
		l.ReturnDate = &at
		returned = l
		return nil
	})
	if err != nil {
		return nil, s.wrapError(log, "failed to return loan", err)
	}

	log.Info("loan returned", zap.String("book_id", returned.BookID))
	s.publish(ctx, EventReturned, returned, *returned.ReturnDate)

	return &ReturnLoanResponse{Loan: toDTO(returned)}, nil
}

// ListLoansByUser returns every loan of the user registered with email.
func (s *Service) ListLoansByUser(ctx context.Context, in ListLoansByUserRequest) (*ListLoansByUserResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	log := logger.WithContext(ctx, s.log).With(zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.wrapError(log, "failed to look up user", err)
	}

	loans, err := s.loans.ListByUserID(ctx, u.ID)
	if err != nil {
		return nil, s.wrapError(log, "failed to list loans", err)
	}

	out := make([]Loan, len(loans))
	for i := range loans {
		out[i] = toDTO(&loans[i])
	}
	return &ListLoansByUserResponse{Loans: out}, nil
}

func (s *Service) publish(ctx context.Context, eventType string, l *domain.Loan, at time.Time) {
	event := Event{
		Type:       eventType,
		LoanID:     l.ID,
		UserID:     l.UserID,
		Roll:       l.Roll,
		BookID:     l.BookID,
		BookCode:   l.BookCode,
		OccurredAt: at,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to publish loan event",
			zap.String("type", eventType),
			zap.String("loan_id", l.ID),
			zap.Error(err),
		)
	}
}

// wrapError passes expected outcomes through unchanged and hides store
// failures behind an InternalError.
func (s *Service) wrapError(log *zap.Logger, msg string, err error) error {
	var (
		notFound *pkgerrors.NotFoundError
		invalid  *pkgerrors.InvalidStateError
	)
	if errors.As(err, &notFound) || errors.As(err, &invalid) {
		log.Warn(msg, zap.Error(err))
		return err
	}
	log.Error(msg, zap.Error(err))
	return pkgerrors.NewInternalError(msg, err)
}

func toDTO(l *domain.Loan) Loan {
	return Loan{
		ID:         l.ID,
		UserID:     l.UserID,
		Roll:       l.Roll,
		Email:      l.Email,
		BookID:     l.BookID,
		BookName:   l.BookName,
		BookCode:   l.BookCode,
		Author:     l.Author,
		BorrowDate: l.BorrowDate,
		Returned:   l.Returned,
		ReturnDate: l.ReturnDate,
	}
}
