package loan

import (
	"time"

	"library-service/internal/domain/book"
	"library-service/internal/domain/user"
)

// Loan records one book borrowed by one user. It is open until returned and
// is never re-opened or deleted.
type Loan struct {
	ID     string
	UserID string
	Roll   string
	Email  string
	BookID string

	// Snapshot of the book taken at borrow time.
	BookName string
	BookCode string
	Author   string

	BorrowDate time.Time
	Returned   bool
	ReturnDate *time.Time
}

// New builds an open loan of b for u, snapshotting the book fields.
func New(u *user.User, b *book.Book, borrowedAt time.Time) *Loan {
	return &Loan{
		UserID:     u.ID,
		Roll:       u.Roll,
		Email:      u.Email,
		BookID:     b.ID,
		BookName:   b.Name,
		BookCode:   b.Code,
		Author:     b.Author,
		BorrowDate: borrowedAt,
	}
}
