package catalog

import "time"

// CreateBookRequest represents the request payload for adding a book.
type CreateBookRequest struct {
	Name   string `validate:"required,max=200"`
	Author string `validate:"omitempty,max=200"`
	Code   string `validate:"required,max=64"`
	Copies int    `validate:"gte=0"`
}

// ListBooksRequest represents the request payload for listing books.
// An empty Search returns the whole catalog.
type ListBooksRequest struct {
	Search string
}

// ListBooksResponse represents the response payload for book listing.
type ListBooksResponse struct {
	Books []Book
}

// GetBookRequest represents the request payload for retrieving a book.
type GetBookRequest struct {
	ID string `validate:"required"`
}

// UpdateBookRequest represents a partial update. Nil fields are left unchanged.
type UpdateBookRequest struct {
	ID     string  `validate:"required"`
	Name   *string `validate:"omitempty,min=1,max=200"`
	Author *string `validate:"omitempty,max=200"`
	Code   *string `validate:"omitempty,min=1,max=64"`
	Copies *int    `validate:"omitempty,gte=0"`
}

// DeleteBookRequest represents the request payload for deleting a book.
type DeleteBookRequest struct {
	ID string `validate:"required"`
}

// DeleteBookResponse represents the response payload after deleting a book.
type DeleteBookResponse struct {
	ID string
}

// BookResponse wraps a single book.
type BookResponse struct {
	Book Book
}

// Book represents a book DTO for API responses.
type Book struct {
	ID        string
	Name      string
	Author    string
	Code      string
	Copies    int
	CreatedAt time.Time
	UpdatedAt time.Time
}
