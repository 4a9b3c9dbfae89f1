package mongodb

import (
	"time"

	"library-service/internal/domain/book"
	"library-service/internal/domain/loan"
	"library-service/internal/domain/user"
)

type bookDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Author    string    `bson:"author"`
	Code      string    `bson:"code"`
	Copies    int       `bson:"copies"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *bookDocument) toDomain() *book.Book {
	return &book.Book{
		ID:        d.ID,
		Name:      d.Name,
		Author:    d.Author,
		Code:      d.Code,
		Copies:    d.Copies,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type userDocument struct {
	ID        string            `bson:"_id"`
	Roll      string            `bson:"roll"`
	Email     string            `bson:"email"`
	Name      string            `bson:"name"`
	Profile   map[string]string `bson:"profile,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
}

func (d *userDocument) toDomain() *user.User {
	return &user.User{
		ID:        d.ID,
		Roll:      d.Roll,
		Email:     d.Email,
		Name:      d.Name,
		Profile:   d.Profile,
		CreatedAt: d.CreatedAt,
	}
}

type loanDocument struct {
	ID         string     `bson:"_id"`
	UserID     string     `bson:"user_id"`
	Roll       string     `bson:"roll"`
	Email      string     `bson:"email"`
	BookID     string     `bson:"book_id"`
	BookName   string     `bson:"book_name"`
	BookCode   string     `bson:"book_code"`
	Author     string     `bson:"author"`
	BorrowDate time.Time  `bson:"borrow_date"`
	Returned   bool       `bson:"returned"`
	ReturnDate *time.Time `bson:"return_date,omitempty"`
}

func (d *loanDocument) toDomain() *loan.Loan {
	return &loan.Loan{
		ID:         d.ID,
		UserID:     d.UserID,
		Roll:       d.Roll,
		Email:      d.Email,
		BookID:     d.BookID,
		BookName:   d.BookName,
		BookCode:   d.BookCode,
		Author:     d.Author,
		BorrowDate: d.BorrowDate,
		Returned:   d.Returned,
		ReturnDate: d.ReturnDate,
	}
}
