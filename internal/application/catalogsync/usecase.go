package catalogsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// DefaultPageSize tamaño de página de productos en MoySklad.
const DefaultPageSize = 100

// SuccessMessage mensaje devuelto tras una sincronización completa.
const SuccessMessage = "Sincronización completada"

// Config parámetros del caso de uso.
type Config struct {
	PageSize    int
	DefaultUnit string
}

// SyncUseCase sincroniza categorías y productos de MoySklad y reporta el estado del catálogo.
type SyncUseCase struct {
	remote     RemoteCatalog
	tx         TxRunner
	categories repository.CategoryRepository
	products   repository.ProductRepository
	normalizer *Normalizer
	pageSize   int
	recorder   Recorder
	log        zerolog.Logger
}

// NewSyncUseCase construye el caso de uso. categories y products (sobre el pool) se usan solo
// para el reporte de estado; la escritura siempre va por tx.
func NewSyncUseCase(
	remote RemoteCatalog,
	tx TxRunner,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	cfg Config,
	recorder Recorder,
	log zerolog.Logger,
) *SyncUseCase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SyncUseCase{
		remote:     remote,
		tx:         tx,
		categories: categories,
		products:   products,
		normalizer: NewNormalizer(cfg.DefaultUnit),
		pageSize:   cfg.PageSize,
		recorder:   recorder,
		log:        log.With().Str("component", "catalogsync").Logger(),
	}
}

// Sync ejecuta una sincronización completa dentro de una sola transacción: primero todas las
// categorías, luego los productos página a página hasta alcanzar el total que informa MoySklad.
// Cualquier error deshace todo; nunca queda una sincronización parcial confirmada.
func (uc *SyncUseCase) Sync(ctx context.Context) (*dto.SyncResult, error) {
	runID := uuid.NewString()
	log := uc.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	var categoriesSynced, productsSynced int
	err := uc.tx.RunCatalog(ctx, func(categories repository.CategoryRepository, products repository.ProductRepository) error {
		n, err := uc.syncCategories(ctx, categories)
		if err != nil {
			return err
		}
		categoriesSynced = n
		log.Info().Int("categories", n).Msg("categorías sincronizadas")

		n, err = uc.syncProducts(ctx, log, categories, products)
		if err != nil {
			return err
		}
		productsSynced = n
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		uc.recorder.RecordSync(false, 0, 0, elapsed)
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("sincronización fallida, transacción revertida")
		return nil, fmt.Errorf("sincronización: %w", err)
	}

	uc.recorder.RecordSync(true, categoriesSynced, productsSynced, elapsed)
	log.Info().
		Int("categories", categoriesSynced).
		Int("products", productsSynced).
		Dur("elapsed", elapsed).
		Msg("sincronización completada")

	return &dto.SyncResult{
		Success:          true,
		CategoriesSynced: categoriesSynced,
		ProductsSynced:   productsSynced,
		Message:          SuccessMessage,
		RunID:            runID,
	}, nil
}

func (uc *SyncUseCase) syncCategories(ctx context.Context, categories repository.CategoryRepository) (int, error) {
	folders, err := uc.remote.ListFolders(ctx)
	if err != nil {
		return 0, fmt.Errorf("obtener categorías: %w", err)
	}
	for _, f := range folders {
		if _, err := categories.Upsert(ctx, uc.normalizer.Category(f)); err != nil {
			return 0, fmt.Errorf("guardar categoría %s: %w", f.ID, err)
		}
	}
	return len(folders), nil
}

func (uc *SyncUseCase) syncProducts(
	ctx context.Context,
	log zerolog.Logger,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) (int, error) {
	resolver := newCategoryResolver(categories)
	synced := 0
	for offset := 0; ; offset += uc.pageSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		page, err := uc.remote.ListProducts(ctx, offset, uc.pageSize)
		if err != nil {
			return 0, fmt.Errorf("obtener productos (offset %d): %w", offset, err)
		}
		if len(page.Rows) == 0 {
			break
		}
		for _, raw := range page.Rows {
			categoryID, err := resolver.resolve(ctx, FolderExternalID(raw))
			if err != nil {
				return 0, fmt.Errorf("resolver categoría de %s: %w", raw.ID, err)
			}
			var imageURL *string
			if href := ImagesHref(raw); href != "" {
				imageURL, err = uc.remote.FirstImageURL(ctx, href)
				if err != nil {
					return 0, fmt.Errorf("obtener imagen de %s: %w", raw.ID, err)
				}
			}

			product := uc.normalizer.Product(raw, categoryID, imageURL)
			_, source := Stock(raw)
			log.Debug().
				Str("product", raw.Name).
				Interface("stock_field", raw.Stock).
				Interface("quantity_field", raw.Quantity).
				Str("stock_source", string(source)).
				Int64("final_stock", product.StockQuantity).
				Msg("stock normalizado")

			if err := products.Upsert(ctx, product); err != nil {
				return 0, fmt.Errorf("guardar producto %s: %w", raw.ID, err)
			}
			synced++
		}
		if offset+uc.pageSize >= page.Total {
			break
		}
	}
	return synced, nil
}

// Status devuelve conteos y la última actualización de productos. Solo lectura.
func (uc *SyncUseCase) Status(ctx context.Context) (*dto.SyncStatusResponse, error) {
	categories, err := uc.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar categorías: %w", err)
	}
	products, err := uc.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar productos: %w", err)
	}
	last, err := uc.products.LastUpdatedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("última actualización: %w", err)
	}
	out := &dto.SyncStatusResponse{Categories: categories, Products: products}
	if last != nil {
		s := last.UTC().Format(time.RFC3339Nano)
		out.LastSync = &s
	}
	return out, nil
}

// categoryResolver memoriza external id -> id local dentro de una ejecución.
type categoryResolver struct {
	repo  repository.CategoryRepository
	cache map[string]*int64
}

func newCategoryResolver(repo repository.CategoryRepository) *categoryResolver {
	return &categoryResolver{repo: repo, cache: make(map[string]*int64)}
}

func (r *categoryResolver) resolve(ctx context.Context, externalID string) (*int64, error) {
	if externalID == "" {
		return nil, nil
	}
	if id, ok := r.cache[externalID]; ok {
		return id, nil
	}
	id, err := r.repo.GetIDByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	r.cache[externalID] = id
	return id, nil
}
