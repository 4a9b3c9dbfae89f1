package loan

import "context"

// Usecase defines the borrow/return workflow.
type Usecase interface {
	Borrow(ctx context.Context, in BorrowRequest) (*BorrowResponse, error)
	ReturnLoan(ctx context.Context, in ReturnLoanRequest) (*ReturnLoanResponse, error)
	ListLoansByUser(ctx context.Context, in ListLoansByUserRequest) (*ListLoansByUserResponse, error)
}
