package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-service/internal/usecase/catalog"
)

// BookHandler handles HTTP requests for catalog operations
type BookHandler struct {
	uc  catalog.Usecase
	log *zap.Logger
}

// NewBookHandler creates a new BookHandler instance
func NewBookHandler(uc catalog.Usecase, log *zap.Logger) *BookHandler {
	return &BookHandler{uc: uc, log: log}
}

// CreateBookRequest represents the HTTP request body for adding a book
type CreateBookRequest struct {
	Name   string `json:"name" binding:"required"`
	Author string `json:"author"`
	Code   string `json:"code" binding:"required"`
	Copies int    `json:"copies"`
}

// UpdateBookRequest represents the HTTP request body for a partial update
type UpdateBookRequest struct {
	Name   *string `json:"name"`
	Author *string `json:"author"`
	Code   *string `json:"code"`
	Copies *int    `json:"copies"`
}

// BookResponse represents the HTTP response for book data
type BookResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Author    string    `json:"author"`
	Code      string    `json:"code"`
	Copies    int       `json:"copies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListBooksResponse represents the HTTP response for listing books
type ListBooksResponse struct {
	Books []BookResponse `json:"books"`
}

func toBookResponse(b catalog.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Code:      b.Code,
		Copies:    b.Copies,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// CreateBook handles POST /v1/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create book request", zap.Error(err))
		badRequest(c, err)
		return
	}

	resp, err := h.uc.CreateBook(c.Request.Context(), catalog.CreateBookRequest{
		Name:   req.Name,
		Author: req.Author,
		Code:   req.Code,
		Copies: req.Copies,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toBookResponse(resp.Book))
}

// ListBooks handles GET /v1/books?search=
func (h *BookHandler) ListBooks(c *gin.Context) {
	resp, err := h.uc.ListBooks(c.Request.Context(), catalog.ListBooksRequest{Search: c.Query("search")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	books := make([]BookResponse, len(resp.Books))
	for i, b := range resp.Books {
		books[i] = toBookResponse(b)
	}
	c.JSON(http.StatusOK, ListBooksResponse{Books: books})
}

// GetBook handles GET /v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	resp, err := h.uc.GetBook(c.Request.Context(), catalog.GetBookRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookResponse(resp.Book))
}

// UpdateBook handles PUT /v1/books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid update book request", zap.Error(err))
		badRequest(c, err)
		return
	}

	resp, err := h.uc.UpdateBook(c.Request.Context(), catalog.UpdateBookRequest{
		ID:     c.Param("id"),
		Name:   req.Name,
		Author: req.Author,
		Code:   req.Code,
		Copies: req.Copies,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookResponse(resp.Book))
}

// DeleteBook handles DELETE /v1/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	resp, err := h.uc.DeleteBook(c.Request.Context(), catalog.DeleteBookRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": resp.ID})
}
