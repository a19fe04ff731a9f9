package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"book-catalog/internal/domain"
	"book-catalog/internal/repository"
	"book-catalog/internal/validation"
)

// BookService coordina reglas de negocio para el catálogo de libros.
type BookService struct {
	logger *zap.Logger
	books  repository.BookRepository
}

var (
	ErrBookNotFound = errors.New("book not found")
	ErrISBNTaken    = errors.New("isbn already in use")
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func NewBookService(logger *zap.Logger, books repository.BookRepository) *BookService {
	return &BookService{
		logger: logger,
		books:  books,
	}
}

// ListInput lleva los parámetros de consulta ya parseados del listado.
type ListInput struct {
	Page   int
	Limit  int
	Search string
	Author string
}

// Pagination describe la página devuelta por List.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// List devuelve una página del catálogo, del más reciente al más viejo.
func (s *BookService) List(ctx context.Context, input ListInput) ([]domain.Book, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = defaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	books, total, err := s.books.List(ctx, repository.BookListParams{
		Search: input.Search,
		Author: input.Author,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	if books == nil {
		books = []domain.Book{}
	}

	pages := (total + limit - 1) / limit
	return books, Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

// GetByID devuelve un libro puntual o ErrBookNotFound.
func (s *BookService) GetByID(ctx context.Context, id string) (domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, ErrBookNotFound
		}
		return domain.Book{}, err
	}
	return book, nil
}

// Create da de alta un libro. El chequeo previo de ISBN es el camino
// rápido; el índice único parcial de books.isbn decide ante una carrera.
func (s *BookService) Create(ctx context.Context, input validation.BookInput) (domain.Book, error) {
	if input.ISBN != "" {
		if err := s.checkISBNFree(ctx, input.ISBN, ""); err != nil {
			return domain.Book{}, err
		}
	}

	now := time.Now().UTC()
	book := domain.Book{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		Description: input.Description,
		PublishedAt: input.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.books.Create(ctx, book); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Book{}, ErrISBNTaken
		}
		return domain.Book{}, err
	}
	return book, nil
}

// Update aplica un parche parcial sobre un libro existente. Si el parche
// cambia el ISBN, la unicidad se re-verifica excluyendo el propio libro.
func (s *BookService) Update(ctx context.Context, id string, patch validation.BookPatch) (domain.Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}

	if patch.ISBN != nil && *patch.ISBN != "" && *patch.ISBN != book.ISBN {
		if err := s.checkISBNFree(ctx, *patch.ISBN, book.ID); err != nil {
			return domain.Book{}, err
		}
	}

	if patch.Title != nil {
		book.Title = *patch.Title
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.ISBN != nil {
		book.ISBN = *patch.ISBN
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.PublishedAt != nil {
		book.PublishedAt = patch.PublishedAt
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.books.Update(ctx, book); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Book{}, ErrISBNTaken
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, ErrBookNotFound
		}
		return domain.Book{}, err
	}
	return book, nil
}

// Delete elimina un libro de forma definitiva.
func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}

func (s *BookService) checkISBNFree(ctx context.Context, isbn, excludeID string) error {
	existing, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID == excludeID {
		return nil
	}
	return ErrISBNTaken
}
