package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUndefinedTable verifica si un error es 42P01 (tabla inexistente).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}

// wrapErr añade contexto a errores de PostgreSQL; para tablas inexistentes indica el esquema
// esperado, que es el fallo típico de un MAIN_DB_SCHEMA mal configurado.
func wrapErr(op string, t Tables, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%s: tabla inexistente en esquema %q (ver migrations/001_catalog.sql): %w", op, t.Schema, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
