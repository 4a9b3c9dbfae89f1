package catalog

import "context"

// Usecase defines the interface for catalog operations over book records.
type Usecase interface {
	CreateBook(ctx context.Context, in CreateBookRequest) (*BookResponse, error)
	ListBooks(ctx context.Context, in ListBooksRequest) (*ListBooksResponse, error)
	GetBook(ctx context.Context, in GetBookRequest) (*BookResponse, error)
	UpdateBook(ctx context.Context, in UpdateBookRequest) (*BookResponse, error)
	DeleteBook(ctx context.Context, in DeleteBookRequest) (*DeleteBookResponse, error)
}
