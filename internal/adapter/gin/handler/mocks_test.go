package handler

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"library-service/internal/usecase/catalog"
	"library-service/internal/usecase/loan"
	"library-service/internal/usecase/user"
)

// MockCatalogUsecase is a mock implementation of catalog.Usecase
type MockCatalogUsecase struct {
	mock.Mock
}

func (m *MockCatalogUsecase) CreateBook(ctx context.Context, in catalog.CreateBookRequest) (*catalog.BookResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BookResponse), args.Error(1)
}

func (m *MockCatalogUsecase) ListBooks(ctx context.Context, in catalog.ListBooksRequest) (*catalog.ListBooksResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ListBooksResponse), args.Error(1)
}

func (m *MockCatalogUsecase) GetBook(ctx context.Context, in catalog.GetBookRequest) (*catalog.BookResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BookResponse), args.Error(1)
}

func (m *MockCatalogUsecase) UpdateBook(ctx context.Context, in catalog.UpdateBookRequest) (*catalog.BookResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BookResponse), args.Error(1)
}

func (m *MockCatalogUsecase) DeleteBook(ctx context.Context, in catalog.DeleteBookRequest) (*catalog.DeleteBookResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.DeleteBookResponse), args.Error(1)
}

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, in user.RegisterUserRequest) (*user.RegisterUserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.RegisterUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetByEmail(ctx context.Context, in user.GetUserByEmailRequest) (*user.GetUserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetByRoll(ctx context.Context, in user.GetUserByRollRequest) (*user.GetUserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.GetUserResponse), args.Error(1)
}

// MockLoanUsecase is a mock implementation of loan.Usecase
type MockLoanUsecase struct {
	mock.Mock
}

func (m *MockLoanUsecase) Borrow(ctx context.Context, in loan.BorrowRequest) (*loan.BorrowResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.BorrowResponse), args.Error(1)
}

func (m *MockLoanUsecase) ReturnLoan(ctx context.Context, in loan.ReturnLoanRequest) (*loan.ReturnLoanResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.ReturnLoanResponse), args.Error(1)
}

func (m *MockLoanUsecase) ListLoansByUser(ctx context.Context, in loan.ListLoansByUserRequest) (*loan.ListLoansByUserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.ListLoansByUserResponse), args.Error(1)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return gin.New()
}
