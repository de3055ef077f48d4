package catalogsync

import (
	"context"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// RemoteCatalog puerto hacia la API de inventario (MoySklad).
type RemoteCatalog interface {
	ListFolders(ctx context.Context) ([]dto.MSFolder, error)
	ListProducts(ctx context.Context, offset, limit int) (*dto.MSProductPage, error)
	FirstImageURL(ctx context.Context, imagesHref string) (*string, error)
}

// TxRunner ejecuta fn dentro de una única transacción, con repositorios atados a ella.
// Si fn devuelve error se hace Rollback de todo; si no, Commit.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		categories repository.CategoryRepository,
		products repository.ProductRepository,
	) error) error
}

// Recorder recibe el resultado de cada ejecución (métricas).
type Recorder interface {
	RecordSync(success bool, categories, products int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordSync(bool, int, int, time.Duration) {}
