package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog/internal/service"
	"book-catalog/internal/validation"
)

// BookHandler mantiene dependencias para endpoints del catálogo.
type BookHandler struct {
	logger   *zap.Logger
	bookServ *service.BookService
}

// NewBookHandler crea una instancia de BookHandler con dependencias necesarias.
func NewBookHandler(logger *zap.Logger, bookServ *service.BookService) *BookHandler {
	return &BookHandler{
		logger:   logger,
		bookServ: bookServ,
	}
}

// ListBooks maneja GET /api/books.
func (h *BookHandler) ListBooks(c *gin.Context) {
	input := service.ListInput{
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
		Search: c.Query("search"),
		Author: c.Query("author"),
	}

	books, pagination, err := h.bookServ.List(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("list books failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Books retrieved successfully",
		"data":       books,
		"pagination": pagination,
	})
}

// GetBook maneja GET /api/books/:id.
func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.bookServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Not Found", "Book not found")
			return
		}
		h.logger.Error("get book failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book retrieved successfully",
		"data":    book,
	})
}

// CreateBook maneja POST /api/books.
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req validation.BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create book request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	input, details := validation.ParseBookCreate(req)
	if details != nil {
		respondValidationError(c, details)
		return
	}

	book, err := h.bookServ.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrISBNTaken) {
			respondError(c, http.StatusBadRequest, "Bad Request", "Book with this ISBN already exists")
			return
		}
		h.logger.Error("create book failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to create book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"data":    book,
	})
}

// UpdateBook maneja PUT /api/books/:id.
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req validation.BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update book request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	patch, details := validation.ParseBookUpdate(req)
	if details != nil {
		respondValidationError(c, details)
		return
	}

	book, err := h.bookServ.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			respondError(c, http.StatusNotFound, "Not Found", "Book not found")
			return
		case errors.Is(err, service.ErrISBNTaken):
			respondError(c, http.StatusBadRequest, "Bad Request", "Book with this ISBN already exists")
			return
		default:
			h.logger.Error("update book failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to update book")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"data":    book,
	})
}

// DeleteBook maneja DELETE /api/books/:id.
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.bookServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Not Found", "Book not found")
			return
		}
		h.logger.Error("delete book failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to delete book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// parseIntQuery lee un query param entero; ante valor ausente o basura
// cae al default, igual que el comportamiento histórico del API.
func parseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
