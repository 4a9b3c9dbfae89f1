package loan

import "time"

// BorrowRequest represents the request payload for borrowing a book.
type BorrowRequest struct {
	Roll   string `validate:"required"`
	BookID string `validate:"required"`
}

// BorrowResponse carries the loan created by a successful borrow.
type BorrowResponse struct {
	Loan Loan
}

// ReturnLoanRequest represents the request payload for returning a loan.
type ReturnLoanRequest struct {
	LoanID string `validate:"required"`
}

// ReturnLoanResponse confirms a return and carries the closed loan.
type ReturnLoanResponse struct {
	Loan Loan
}

// ListLoansByUserRequest represents the request payload for listing a user's loans.
type ListLoansByUserRequest struct {
	Email string `validate:"required,email"`
}

// ListLoansByUserResponse represents the response payload for loan listing.
type ListLoansByUserResponse struct {
	Loans []Loan
}

// Loan represents a loan DTO for API responses.
type Loan struct {
	ID         string
	UserID     string
	Roll       string
	Email      string
	BookID     string
	BookName   string
	BookCode   string
	Author     string
	BorrowDate time.Time
	Returned   bool
	ReturnDate *time.Time
}
