package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-catalog/internal/domain"
)

// BookListParams describe filtros y paginación para listar libros.
type BookListParams struct {
	Search string
	Author string
	Limit  int
	Offset int
}

// BookRepository define el contrato de persistencia para libros.
type BookRepository interface {
	Create(ctx context.Context, book domain.Book) error
	GetByID(ctx context.Context, id string) (domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (domain.Book, error)
	List(ctx context.Context, params BookListParams) ([]domain.Book, int, error)
	Update(ctx context.Context, book domain.Book) error
	Delete(ctx context.Context, id string) error
}

// PgBookRepository implementa BookRepository usando pgxpool.
type PgBookRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookRepository(pool *pgxpool.Pool) *PgBookRepository {
	return &PgBookRepository{pool: pool}
}

func (r *PgBookRepository) Create(ctx context.Context, book domain.Book) error {
	const query = `
		INSERT INTO books (id, title, author, isbn, description, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		nullableText(book.ISBN),
		nullableText(book.Description),
		book.PublishedAt,
		book.CreatedAt,
		book.UpdatedAt,
	)
	return err
}

func (r *PgBookRepository) GetByID(ctx context.Context, id string) (domain.Book, error) {
	const query = `
		SELECT id, title, author, isbn, description, published_at, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgBookRepository) GetByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	const query = `
		SELECT id, title, author, isbn, description, published_at, created_at, updated_at
		FROM books
		WHERE isbn = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, isbn))
}

// List devuelve una página de libros, ordenada por creación descendente,
// junto con el total de filas que cumplen los filtros.
func (r *PgBookRepository) List(ctx context.Context, params BookListParams) ([]domain.Book, int, error) {
	where, args := buildBookFilter(params)

	countQuery := "SELECT COUNT(*) FROM books" + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(
		"SELECT id, title, author, isbn, description, published_at, created_at, updated_at FROM books%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *PgBookRepository) Update(ctx context.Context, book domain.Book) error {
	const query = `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, description = $5, published_at = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		nullableText(book.ISBN),
		nullableText(book.Description),
		book.PublishedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBookRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// buildBookFilter arma la cláusula WHERE para search (OR sobre título,
// autor y descripción) y el filtro por autor, ambos case-insensitive.
func buildBookFilter(params BookListParams) (string, []any) {
	var conds []string
	var args []any

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}
	if params.Author != "" {
		args = append(args, "%"+params.Author+"%")
		conds = append(conds, fmt.Sprintf("author ILIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PgBookRepository) scanOne(row pgx.Row) (domain.Book, error) {
	book, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Book{}, err
	}
	return book, err
}

func scanBook(row pgx.Row) (domain.Book, error) {
	var b domain.Book
	var isbn, description *string

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&isbn,
		&description,
		&b.PublishedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return domain.Book{}, err
	}
	if isbn != nil {
		b.ISBN = *isbn
	}
	if description != nil {
		b.Description = *description
	}
	return b, nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
