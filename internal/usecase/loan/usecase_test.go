package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	bookdomain "library-service/internal/domain/book"
	domain "library-service/internal/domain/loan"
	userdomain "library-service/internal/domain/user"
	pkgerrors "library-service/pkg/errors"
)

// MockRepository is a mock implementation of the loan Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *domain.Loan) (string, error) {
	args := m.Called(ctx, l)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockRepository) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

// MockBookRepository is a mock implementation of BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) GetByID(ctx context.Context, id string) (*bookdomain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookdomain.Book), args.Error(1)
}

func (m *MockBookRepository) DecrementCopies(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookRepository) IncrementCopies(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserFinder is a mock implementation of UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByRoll(ctx context.Context, roll string) (*userdomain.User, error) {
	args := m.Called(ctx, roll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdomain.User), args.Error(1)
}

func (m *MockUserFinder) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdomain.User), args.Error(1)
}

// passthroughTx runs fn directly and counts invocations.
type passthroughTx struct {
	calls int
}

func (tx *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.events = append(p.events, e)
	return p.err
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type testDeps struct {
	loans     *MockRepository
	books     *MockBookRepository
	users     *MockUserFinder
	tx        *passthroughTx
	publisher *recordingPublisher
}

func setupTestService(t *testing.T) (*Service, testDeps) {
	d := testDeps{
		loans:     new(MockRepository),
		books:     new(MockBookRepository),
		users:     new(MockUserFinder),
		tx:        &passthroughTx{},
		publisher: &recordingPublisher{},
	}
	svc := New(d.loans, d.books, d.users, d.tx, zaptest.NewLogger(t),
		WithPublisher(d.publisher),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, d
}

var (
	testUser = &userdomain.User{ID: "u-1", Roll: "R1", Email: "r1@example.com"}
	testBook = &bookdomain.Book{ID: "b-1", Name: "Dune", Author: "Frank Herbert", Code: "SF-001", Copies: 1}
)

// ==================== BORROW TESTS ====================

func TestBorrow_Success(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.users.On("GetByRoll", ctx, "R1").Return(testUser, nil)
	d.books.On("GetByID", ctx, "b-1").Return(testBook, nil)
	d.books.On("DecrementCopies", ctx, "b-1").Return(true, nil)
	d.loans.On("Create", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.UserID == "u-1" && l.BookID == "b-1" && l.BookName == "Dune" &&
			l.BookCode == "SF-001" && l.Author == "Frank Herbert" && l.Email == "r1@example.com" &&
			!l.Returned && l.BorrowDate.Equal(fixedNow)
	})).Return("l-1", nil)

	resp, err := svc.Borrow(ctx, BorrowRequest{Roll: "R1", BookID: "b-1"})

	require.NoError(t, err)
	assert.Equal(t, "l-1", resp.Loan.ID)
	assert.False(t, resp.Loan.Returned)
	assert.Nil(t, resp.Loan.ReturnDate)
	assert.Equal(t, 1, d.tx.calls)
	require.Len(t, d.publisher.events, 1)
	assert.Equal(t, EventBorrowed, d.publisher.events[0].Type)
	assert.Equal(t, "l-1", d.publisher.events[0].LoanID)
	d.loans.AssertExpectations(t)
	d.books.AssertExpectations(t)
}

func TestBorrow_UserNotFound(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.users.On("GetByRoll", ctx, "ghost").Return(nil, pkgerrors.ErrUserNotFound)

	resp, err := svc.Borrow(ctx, BorrowRequest{Roll: "ghost", BookID: "b-1"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
	assert.Equal(t, 0, d.tx.calls)
	d.books.AssertNotCalled(t, "DecrementCopies", mock.Anything, mock.Anything)
	assert.Empty(t, d.publisher.events)
}

func TestBorrow_BookNotFound(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.users.On("GetByRoll", ctx, "R1").Return(testUser, nil)
	d.books.On("GetByID", ctx, "missing").Return(nil, pkgerrors.ErrBookNotFound)

	_, err := svc.Borrow(ctx, BorrowRequest{Roll: "R1", BookID: "missing"})

	assert.ErrorIs(t, err, pkgerrors.ErrBookNotFound)
	assert.NotErrorIs(t, err, pkgerrors.ErrUserNotFound)
	d.books.AssertNotCalled(t, "DecrementCopies", mock.Anything, mock.Anything)
	d.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBorrow_NoCopiesAvailable(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	empty := &bookdomain.Book{ID: "b-0", Name: "Gone", Code: "X-0", Copies: 0}
	d.users.On("GetByRoll", ctx, "R1").Return(testUser, nil)
	d.books.On("GetByID", ctx, "b-0").Return(empty, nil)
	d.books.On("DecrementCopies", ctx, "b-0").Return(false, nil)

	resp, err := svc.Borrow(ctx, BorrowRequest{Roll: "R1", BookID: "b-0"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrNoCopiesAvailable)
	d.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, d.publisher.events)
}

func TestBorrow_LoanInsertFailureIsInternal(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.users.On("GetByRoll", ctx, "R1").Return(testUser, nil)
	d.books.On("GetByID", ctx, "b-1").Return(testBook, nil)
	d.books.On("DecrementCopies", ctx, "b-1").Return(true, nil)
	d.loans.On("Create", ctx, mock.Anything).Return("", errors.New("write conflict"))

	resp, err := svc.Borrow(ctx, BorrowRequest{Roll: "R1", BookID: "b-1"})

	assert.Nil(t, resp)
	var ierr *pkgerrors.InternalError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "failed to borrow book", ierr.Message)
	assert.Empty(t, d.publisher.events)
}

func TestBorrow_ValidationError(t *testing.T) {
	svc, d := setupTestService(t)

	_, err := svc.Borrow(context.Background(), BorrowRequest{Roll: " ", BookID: "b-1"})

	var verr *pkgerrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	d.users.AssertNotCalled(t, "GetByRoll", mock.Anything, mock.Anything)
}

func TestBorrow_PublishFailureDoesNotFailBorrow(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()
	d.publisher.err = errors.New("broker down")

	d.users.On("GetByRoll", ctx, "R1").Return(testUser, nil)
	d.books.On("GetByID", ctx, "b-1").Return(testBook, nil)
	d.books.On("DecrementCopies", ctx, "b-1").Return(true, nil)
	d.loans.On("Create", ctx, mock.Anything).Return("l-1", nil)

	resp, err := svc.Borrow(ctx, BorrowRequest{Roll: "R1", BookID: "b-1"})

	require.NoError(t, err)
	assert.Equal(t, "l-1", resp.Loan.ID)
}

// ==================== RETURN TESTS ====================

func openLoan() *domain.Loan {
	return &domain.Loan{ID: "l-1", UserID: "u-1", BookID: "b-1", BorrowDate: fixedNow.Add(-time.Hour)}
}

func TestReturnLoan_Success(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.loans.On("GetByID", ctx, "l-1").Return(openLoan(), nil)
	d.loans.On("MarkReturned", ctx, "l-1", fixedNow).Return(true, nil)
	d.books.On("IncrementCopies", ctx, "b-1").Return(nil)

	resp, err := svc.ReturnLoan(ctx, ReturnLoanRequest{LoanID: "l-1"})

	require.NoError(t, err)
	assert.True(t, resp.Loan.Returned)
	require.NotNil(t, resp.Loan.ReturnDate)
	assert.Equal(t, fixedNow, *resp.Loan.ReturnDate)
	require.Len(t, d.publisher.events, 1)
	assert.Equal(t, EventReturned, d.publisher.events[0].Type)
	d.books.AssertExpectations(t)
}

func TestReturnLoan_LoanNotFound(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.loans.On("GetByID", ctx, "nope").Return(nil, pkgerrors.ErrLoanNotFound)

	_, err := svc.ReturnLoan(ctx, ReturnLoanRequest{LoanID: "nope"})

	assert.ErrorIs(t, err, pkgerrors.ErrLoanNotFound)
	d.books.AssertNotCalled(t, "IncrementCopies", mock.Anything, mock.Anything)
}

func TestReturnLoan_AlreadyReturned(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	closed := openLoan()
	closed.Returned = true
	d.loans.On("GetByID", ctx, "l-1").Return(closed, nil)

	_, err := svc.ReturnLoan(ctx, ReturnLoanRequest{LoanID: "l-1"})

	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyReturned)
	d.loans.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything)
	d.books.AssertNotCalled(t, "IncrementCopies", mock.Anything, mock.Anything)
	assert.Empty(t, d.publisher.events)
}

func TestReturnLoan_LostRaceIsAlreadyReturned(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.loans.On("GetByID", ctx, "l-1").Return(openLoan(), nil)
	d.loans.On("MarkReturned", ctx, "l-1", fixedNow).Return(false, nil)

	_, err := svc.ReturnLoan(ctx, ReturnLoanRequest{LoanID: "l-1"})

	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyReturned)
	d.books.AssertNotCalled(t, "IncrementCopies", mock.Anything, mock.Anything)
}

func TestReturnLoan_IncrementFailureIsInternal(t *testing.T) {
	svc, d := setupTestService(t)
	ctx := context.Background()

	d.loans.On("GetByID", ctx, "l-1").Return(openLoan(), nil)
	d.loans.On("MarkReturned", ctx, "l-1", fixedNow).Return(true, nil)
	d.books.On("IncrementCopies", ctx, "b-1").Return(errors.New("book row locked"))

	_, err := svc.ReturnLoan(ctx, ReturnLoanRequest{LoanID: "l-1"})

	var ierr *pkgerrors.InternalError
	assert.True(t, errors.As(err, &ierr))
	assert.Empty(t, d.publisher.events)
}

// ==================== LIST TESTS ====================

func TestListLoansByUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, d := setupTestService(t)
		ctx := context.Background()

		d.users.On("GetByEmail", ctx, "r1@example.com").Return(testUser, nil)
		d.loans.On("ListByUserID", ctx, "u-1").Return([]domain.Loan{*openLoan(), {ID: "l-2", UserID: "u-1"}}, nil)

		resp, err := svc.ListLoansByUser(ctx, ListLoansByUserRequest{Email: " R1@example.com"})

		require.NoError(t, err)
		assert.Len(t, resp.Loans, 2)
	})

	t.Run("User Not Found", func(t *testing.T) {
		svc, d := setupTestService(t)
		ctx := context.Background()

		d.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, pkgerrors.ErrUserNotFound)

		_, err := svc.ListLoansByUser(ctx, ListLoansByUserRequest{Email: "ghost@example.com"})

		assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
		d.loans.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
	})

	t.Run("No Loans", func(t *testing.T) {
		svc, d := setupTestService(t)
		ctx := context.Background()

		d.users.On("GetByEmail", ctx, "r1@example.com").Return(testUser, nil)
		d.loans.On("ListByUserID", ctx, "u-1").Return([]domain.Loan{}, nil)

		resp, err := svc.ListLoansByUser(ctx, ListLoansByUserRequest{Email: "r1@example.com"})

		require.NoError(t, err)
		assert.NotNil(t, resp.Loans)
		assert.Empty(t, resp.Loans)
	})
}
