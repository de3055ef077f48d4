package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	// Upsert inserta o actualiza por ExternalID y devuelve el ID local.
	Upsert(ctx context.Context, category *entity.Category) (int64, error)
	// GetIDByExternalID devuelve nil si no existe.
	GetIDByExternalID(ctx context.Context, externalID string) (*int64, error)
	ListWithProductCounts(ctx context.Context) ([]*entity.CategorySummary, error)
	Count(ctx context.Context) (int, error)
}
