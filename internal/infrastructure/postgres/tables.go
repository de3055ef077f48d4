package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Catalogo-api/pkg/config"
)

// Tables nombres de tabla calificados y ya citados para el esquema configurado.
// Es lo único que se interpola en SQL; todo valor va como parámetro.
type Tables struct {
	Schema     string
	Categories string
	Products   string
}

// NewTables valida el esquema contra la lista permitida de caracteres y cita los identificadores.
func NewTables(schema string) (Tables, error) {
	if !config.ValidSchemaName(schema) {
		return Tables{}, fmt.Errorf("%w: %q", config.ErrInvalidSchema, schema)
	}
	return Tables{
		Schema:     schema,
		Categories: pgx.Identifier{schema, "categories"}.Sanitize(),
		Products:   pgx.Identifier{schema, "products"}.Sanitize(),
	}, nil
}
