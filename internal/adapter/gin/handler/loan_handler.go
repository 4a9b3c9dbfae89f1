package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-service/internal/usecase/loan"
	"library-service/pkg/logger"
)

// LoanHandler handles HTTP requests for the borrow/return workflow
type LoanHandler struct {
	uc  loan.Usecase
	log *zap.Logger
}

// NewLoanHandler creates a new LoanHandler instance
func NewLoanHandler(uc loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

// BorrowRequest represents the HTTP request body for borrowing a book
type BorrowRequest struct {
	Roll   string `json:"roll" binding:"required"`
	BookID string `json:"book_id" binding:"required"`
}

// LoanResponse represents the HTTP response for loan data
type LoanResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Roll       string     `json:"roll"`
	Email      string     `json:"email"`
	BookID     string     `json:"book_id"`
	BookName   string     `json:"book_name"`
	BookCode   string     `json:"book_code"`
	Author     string     `json:"author"`
	BorrowDate time.Time  `json:"borrow_date"`
	Returned   bool       `json:"returned"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// ListLoansResponse represents the HTTP response for listing loans
type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
}

func toLoanResponse(l loan.Loan) LoanResponse {
	return LoanResponse{
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

// Borrow handles POST /v1/loans
func (h *LoanHandler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid borrow request", zap.Error(err))
		badRequest(c, err)
		return
	}

	ctx := logger.WithRoll(c.Request.Context(), req.Roll)
	resp, err := h.uc.Borrow(ctx, loan.BorrowRequest{Roll: req.Roll, BookID: req.BookID})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toLoanResponse(resp.Loan))
}

// ReturnLoan handles PATCH /v1/loans/:id/return
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	resp, err := h.uc.ReturnLoan(c.Request.Context(), loan.ReturnLoanRequest{LoanID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toLoanResponse(resp.Loan))
}

// ListLoans handles GET /v1/loans?email=
func (h *LoanHandler) ListLoans(c *gin.Context) {
	resp, err := h.uc.ListLoansByUser(c.Request.Context(), loan.ListLoansByUserRequest{Email: c.Query("email")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	loans := make([]LoanResponse, len(resp.Loans))
	for i, l := range resp.Loans {
		loans[i] = toLoanResponse(l)
	}
	c.JSON(http.StatusOK, ListLoansResponse{Loans: loans})
}
