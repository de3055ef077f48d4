package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
	t Tables
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier, t Tables) *ProductRepo {
	return &ProductRepo{q: q, t: t}
}

// Upsert inserta el producto o sobrescribe todos los campos mutables por moysklad_id.
// is_active no se toca: la desactivación no es responsabilidad de la sincronización.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
			(moysklad_id, name, description, article, price, stock_quantity,
			 category_id, image_url, unit, barcode, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (moysklad_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			article = EXCLUDED.article,
			price = EXCLUDED.price,
			stock_quantity = EXCLUDED.stock_quantity,
			category_id = EXCLUDED.category_id,
			image_url = EXCLUDED.image_url,
			unit = EXCLUDED.unit,
			barcode = EXCLUDED.barcode,
			updated_at = now()
		RETURNING id, updated_at`, r.t.Products)
	err := r.q.QueryRow(ctx, query,
		p.ExternalID, p.Name, p.Description, p.Article, p.Price, p.StockQuantity,
		p.CategoryID, p.ImageURL, p.Unit, p.Barcode,
	).Scan(&p.ID, &p.UpdatedAt)
	if err != nil {
		return wrapErr("upsert product", r.t, err)
	}
	return nil
}

// List productos activos filtrados, ordenados por nombre, con el nombre de su categoría.
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	where, args := productWhere(filter)
	n := len(args)
	query := fmt.Sprintf(`
		SELECT
			p.id, p.moysklad_id, p.name, p.description, p.article,
			p.price, p.stock_quantity, p.category_id, p.image_url,
			p.unit, p.barcode, p.is_active, p.updated_at, c.name AS category_name
		FROM %s p
		LEFT JOIN %s c ON p.category_id = c.id
		WHERE %s
		ORDER BY p.name, p.id
		LIMIT $%d OFFSET $%d`, r.t.Products, r.t.Categories, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list products", r.t, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var (
			p           entity.Product
			description *string
			article     *string
			barcode     *string
			unit        *string
		)
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name, &description, &article,
			&p.Price, &p.StockQuantity, &p.CategoryID, &p.ImageURL,
			&unit, &barcode, &p.IsActive, &p.UpdatedAt, &p.CategoryName); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Description = deref(description)
		p.Article = deref(article)
		p.Barcode = deref(barcode)
		p.Unit = deref(unit)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// CountFiltered cuenta con los mismos filtros que List, sin paginación.
func (r *ProductRepo) CountFiltered(ctx context.Context, filter entity.ProductFilter) (int, error) {
	where, args := productWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s p WHERE %s`, r.t.Products, where)
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrapErr("count filtered products", r.t, err)
	}
	return n, nil
}

// Count total de productos (activos o no).
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.t.Products)).Scan(&n); err != nil {
		return 0, wrapErr("count products", r.t, err)
	}
	return n, nil
}

// LastUpdatedAt MAX(updated_at) de productos; nil si la tabla está vacía.
func (r *ProductRepo) LastUpdatedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT MAX(updated_at) FROM %s`, r.t.Products)).Scan(&last); err != nil {
		return nil, wrapErr("max product updated_at", r.t, err)
	}
	return last, nil
}

// productWhere arma el WHERE solo con fragmentos fijos; los valores van como parámetros $n.
func productWhere(filter entity.ProductFilter) (string, []any) {
	clauses := []string{"p.is_active = TRUE"}
	var args []any
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		i := len(args)
		clauses = append(clauses, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.article ILIKE $%d)", i, i, i))
	}
	return strings.Join(clauses, " AND "), args
}

// escapeLike neutraliza los comodines de LIKE (el escape por defecto de PostgreSQL es '\').
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
