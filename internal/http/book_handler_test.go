package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"book-catalog/internal/domain"
	"book-catalog/internal/repository"
	"book-catalog/internal/service"
)

type mockBookRepo struct {
	booksByID map[string]domain.Book
	seq       int
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{booksByID: make(map[string]domain.Book)}
}

func (m *mockBookRepo) Create(_ context.Context, book domain.Book) error {
	if book.ISBN != "" {
		for _, b := range m.booksByID {
			if b.ISBN == book.ISBN {
				return &pgconn.PgError{Code: "23505", ConstraintName: "books_isbn_uniq"}
			}
		}
	}
	// Orden de creación estable aunque los timestamps coincidan.
	m.seq++
	book.CreatedAt = book.CreatedAt.Add(time.Duration(m.seq) * time.Microsecond)
	m.booksByID[book.ID] = book
	return nil
}

func (m *mockBookRepo) GetByID(_ context.Context, id string) (domain.Book, error) {
	book, ok := m.booksByID[id]
	if !ok {
		return domain.Book{}, pgx.ErrNoRows
	}
	return book, nil
}

func (m *mockBookRepo) GetByISBN(_ context.Context, isbn string) (domain.Book, error) {
	for _, b := range m.booksByID {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return domain.Book{}, pgx.ErrNoRows
}

func (m *mockBookRepo) List(_ context.Context, params repository.BookListParams) ([]domain.Book, int, error) {
	matchFold := func(haystack, needle string) bool {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	var matched []domain.Book
	for _, b := range m.booksByID {
		if params.Search != "" && !matchFold(b.Title, params.Search) &&
			!matchFold(b.Author, params.Search) && !matchFold(b.Description, params.Search) {
			continue
		}
		if params.Author != "" && !matchFold(b.Author, params.Author) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if params.Offset >= total {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func (m *mockBookRepo) Update(_ context.Context, book domain.Book) error {
	existing, ok := m.booksByID[book.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if book.ISBN != "" {
		for id, b := range m.booksByID {
			if id != book.ID && b.ISBN == book.ISBN {
				return &pgconn.PgError{Code: "23505", ConstraintName: "books_isbn_uniq"}
			}
		}
	}
	book.CreatedAt = existing.CreatedAt
	m.booksByID[book.ID] = book
	return nil
}

func (m *mockBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.booksByID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.booksByID, id)
	return nil
}

func setupBookRouter(repo *mockBookRepo) (*gin.Engine, map[string]string) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("test-secret", time.Hour)
	bookSvc := service.NewBookService(zap.NewNop(), repo)
	h := NewBookHandler(zap.NewNop(), bookSvc)

	r := gin.New()
	books := r.Group("/api/books", JWTAuthMiddleware(tokenSvc))
	books.GET("", h.ListBooks)
	books.POST("", h.CreateBook)
	books.GET("/:id", h.GetBook)
	books.PUT("/:id", h.UpdateBook)
	books.DELETE("/:id", h.DeleteBook)

	token, _ := tokenSvc.Issue("u1")
	return r, map[string]string{"Authorization": "Bearer " + token}
}

type bookEnvelope struct {
	Message string `json:"message"`
	Data    struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Author string `json:"author"`
		ISBN   string `json:"isbn"`
	} `json:"data"`
}

func createBook(t *testing.T, r http.Handler, headers map[string]string, payload map[string]string) bookEnvelope {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/api/books", payload, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create book: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp bookEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp
}

func TestBookHandler_RequiresAuth(t *testing.T) {
	r, _ := setupBookRouter(newMockBookRepo())

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/books"},
		{http.MethodPost, "/api/books"},
		{http.MethodGet, "/api/books/x"},
		{http.MethodPut, "/api/books/x"},
		{http.MethodDelete, "/api/books/x"},
	} {
		rec := performRequest(r, route.method, route.path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
		var resp APIError
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error != "Access denied" {
			t.Fatalf("expected Access denied body, got %+v", resp)
		}
	}
}

func TestBookHandler_RoundTrip(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	created := createBook(t, r, headers, map[string]string{
		"title":  "The Great Gatsby",
		"author": "F. Scott Fitzgerald",
	})
	if created.Data.ID == "" {
		t.Fatalf("expected id in response")
	}

	rec := performRequest(r, http.MethodGet, "/api/books/"+created.Data.ID, nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var fetched bookEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched.Data.Title != "The Great Gatsby" || fetched.Data.Author != "F. Scott Fitzgerald" {
		t.Fatalf("round trip mismatch: %+v", fetched.Data)
	}

	rec = performRequest(r, http.MethodDelete, "/api/books/"+created.Data.ID, nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodGet, "/api/books/"+created.Data.ID, nil, headers)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestBookHandler_CreateValidation(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	rec := performRequest(r, http.MethodPost, "/api/books", map[string]string{
		"title": "",
		"isbn":  "bad!isbn",
	}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error != "Validation Error" || len(resp.Details) == 0 {
		t.Fatalf("expected field details, got %+v", resp)
	}
}

func TestBookHandler_ISBNConflict(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	createBook(t, r, headers, map[string]string{
		"title": "A", "author": "B", "isbn": "978-0-7432-7356-5",
	})
	rec := performRequest(r, http.MethodPost, "/api/books", map[string]string{
		"title": "C", "author": "D", "isbn": "978-0-7432-7356-5",
	}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ISBN already exists") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestBookHandler_UpdatePartial(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	created := createBook(t, r, headers, map[string]string{
		"title": "Old", "author": "Keep Me",
	})

	rec := performRequest(r, http.MethodPut, "/api/books/"+created.Data.ID, map[string]string{
		"title": "New",
	}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated bookEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.Data.Title != "New" || updated.Data.Author != "Keep Me" {
		t.Fatalf("partial merge broken: %+v", updated.Data)
	}
}

func TestBookHandler_UpdateMissing(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	rec := performRequest(r, http.MethodPut, "/api/books/missing", map[string]string{
		"title": "X",
	}, headers)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBookHandler_DeleteTwice(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	created := createBook(t, r, headers, map[string]string{"title": "A", "author": "B"})

	if rec := performRequest(r, http.MethodDelete, "/api/books/"+created.Data.ID, nil, headers); rec.Code != http.StatusOK {
		t.Fatalf("first delete: expected 200, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodDelete, "/api/books/"+created.Data.ID, nil, headers); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestBookHandler_ListPagination(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	for i := 0; i < 12; i++ {
		createBook(t, r, headers, map[string]string{
			"title":  fmt.Sprintf("Book %02d", i),
			"author": fmt.Sprintf("Author %02d", i),
		})
	}

	rec := performRequest(r, http.MethodGet, "/api/books?page=1&limit=5", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data       []json.RawMessage  `json:"data"`
		Pagination service.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 5 || resp.Pagination.Total != 12 || resp.Pagination.Pages != 3 {
		t.Fatalf("unexpected page 1: %d items, %+v", len(resp.Data), resp.Pagination)
	}

	rec = performRequest(r, http.MethodGet, "/api/books?page=3&limit=5", nil, headers)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 items on page 3, got %d", len(resp.Data))
	}
}

func TestBookHandler_ListSearch(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	createBook(t, r, headers, map[string]string{
		"title": "The Great Gatsby", "author": "F. Scott Fitzgerald",
	})
	createBook(t, r, headers, map[string]string{
		"title": "Moby Dick", "author": "Herman Melville",
	})

	rec := performRequest(r, http.MethodGet, "/api/books?search=gatsby", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Title != "The Great Gatsby" {
		t.Fatalf("expected only Gatsby, got %+v", resp.Data)
	}
}

func TestBookHandler_ListAuthorFilter(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	createBook(t, r, headers, map[string]string{
		"title": "The Great Gatsby", "author": "F. Scott Fitzgerald",
	})
	createBook(t, r, headers, map[string]string{
		"title": "Moby Dick", "author": "Herman Melville",
	})

	rec := performRequest(r, http.MethodGet, "/api/books?author=melville", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data []struct {
			Author string `json:"author"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Author != "Herman Melville" {
		t.Fatalf("expected only Melville, got %+v", resp.Data)
	}
}

func TestBookHandler_ListEmptyDataIsArray(t *testing.T) {
	r, headers := setupBookRouter(newMockBookRepo())

	rec := performRequest(r, http.MethodGet, "/api/books", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty array for data, got: %s", rec.Body.String())
	}
}
