package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Upsert inserta o sobrescribe por ExternalID; updated_at siempre se renueva.
	Upsert(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	// CountFiltered cuenta ignorando Limit y Offset.
	CountFiltered(ctx context.Context, filter entity.ProductFilter) (int, error)
	Count(ctx context.Context) (int, error)
	// LastUpdatedAt devuelve nil si no hay productos.
	LastUpdatedAt(ctx context.Context) (*time.Time, error)
}
