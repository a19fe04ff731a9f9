package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reporta si err es una violación de restricción única
// de Postgres (código 23505). Es la señal autoritativa ante dos escrituras
// concurrentes que pasaron el chequeo previo.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
