package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación de CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
	t Tables
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier, t Tables) *CategoryRepo {
	return &CategoryRepo{q: q, t: t}
}

// Upsert inserta la categoría o renueva su nombre si ya existe el moysklad_id.
func (r *CategoryRepo) Upsert(ctx context.Context, c *entity.Category) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (moysklad_id, name, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (moysklad_id)
		DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id, updated_at`, r.t.Categories)
	if err := r.q.QueryRow(ctx, query, c.ExternalID, c.Name).Scan(&c.ID, &c.UpdatedAt); err != nil {
		return 0, wrapErr("upsert category", r.t, err)
	}
	return c.ID, nil
}

// GetIDByExternalID busca el id local por moysklad_id; nil si no existe.
func (r *CategoryRepo) GetIDByExternalID(ctx context.Context, externalID string) (*int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE moysklad_id = $1`, r.t.Categories)
	var id int64
	err := r.q.QueryRow(ctx, query, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get category by moysklad_id", r.t, err)
	}
	return &id, nil
}

// ListWithProductCounts lista categorías por nombre con el número de productos activos.
func (r *CategoryRepo) ListWithProductCounts(ctx context.Context) ([]*entity.CategorySummary, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.moysklad_id, c.name, c.parent_id, COUNT(p.id) AS products_count
		FROM %s c
		LEFT JOIN %s p ON c.id = p.category_id AND p.is_active = TRUE
		GROUP BY c.id, c.moysklad_id, c.name, c.parent_id
		ORDER BY c.name`, r.t.Categories, r.t.Products)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list categories", r.t, err)
	}
	defer rows.Close()
	var list []*entity.CategorySummary
	for rows.Next() {
		var c entity.CategorySummary
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name, &c.ParentID, &c.ProductsCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Count total de categorías.
func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.t.Categories)).Scan(&n); err != nil {
		return 0, wrapErr("count categories", r.t, err)
	}
	return n, nil
}
