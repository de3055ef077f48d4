package catalogsync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
)

const folderHref = "https://api.moysklad.ru/api/remap/1.2/entity/productfolder/"

// fakeRemote catálogo remoto en memoria; pagina products igual que MoySklad.
type fakeRemote struct {
	folders    []dto.MSFolder
	products   []dto.MSProduct
	images     map[string]string
	failOffset int // -1 = nunca
	pageCalls  []int
	imageCalls int
	foldersErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{images: map[string]string{}, failOffset: -1}
}

func (f *fakeRemote) ListFolders(context.Context) ([]dto.MSFolder, error) {
	if f.foldersErr != nil {
		return nil, f.foldersErr
	}
	return f.folders, nil
}

func (f *fakeRemote) ListProducts(_ context.Context, offset, limit int) (*dto.MSProductPage, error) {
	f.pageCalls = append(f.pageCalls, offset)
	if f.failOffset >= 0 && offset >= f.failOffset {
		return nil, errors.New("MoySklad product: HTTP 500")
	}
	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}
	var rows []dto.MSProduct
	if offset < len(f.products) {
		rows = f.products[offset:end]
	}
	return &dto.MSProductPage{Rows: rows, Total: len(f.products)}, nil
}

func (f *fakeRemote) FirstImageURL(_ context.Context, href string) (*string, error) {
	f.imageCalls++
	if u, ok := f.images[href]; ok {
		return &u, nil
	}
	return nil, nil
}

type recorded struct {
	success              bool
	categories, products int
}

type fakeRecorder struct{ calls []recorded }

func (r *fakeRecorder) RecordSync(success bool, categories, products int, _ time.Duration) {
	r.calls = append(r.calls, recorded{success, categories, products})
}

func product(id, name string, priceKopeks int64, stock, quantity float64, folder string) dto.MSProduct {
	p := dto.MSProduct{
		ID:         id,
		Name:       name,
		SalePrices: []dto.MSSalePrice{{Value: decimal.NewFromInt(priceKopeks)}},
		Stock:      &stock,
		Quantity:   &quantity,
	}
	if folder != "" {
		p.ProductFolder = &dto.MSRef{Meta: dto.MSMeta{Href: folderHref + folder}}
	}
	return p
}

func newUseCase(remote catalogsync.RemoteCatalog, store *memory.Store, pageSize int, rec catalogsync.Recorder) *catalogsync.SyncUseCase {
	return catalogsync.NewSyncUseCase(remote, store, store.Categories(), store.Products(),
		catalogsync.Config{PageSize: pageSize}, rec, zerolog.Nop())
}

func allProducts(t *testing.T, store *memory.Store) map[string]*entity.Product {
	t.Helper()
	list, err := store.Products().List(context.Background(), entity.ProductFilter{Limit: 1000})
	require.NoError(t, err)
	out := make(map[string]*entity.Product, len(list))
	for _, p := range list {
		out[p.ExternalID] = p
	}
	return out
}

func TestSync_CatalogoVacio(t *testing.T) {
	remote := newFakeRemote()
	store := memory.NewStore()
	rec := &fakeRecorder{}

	res, err := newUseCase(remote, store, 100, rec).Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Zero(t, res.CategoriesSynced)
	assert.Zero(t, res.ProductsSynced)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []int{0}, remote.pageCalls, "una sola página vacía")
	assert.Equal(t, []recorded{{true, 0, 0}}, rec.calls)
}

func TestSync_PaginaHastaElTotal(t *testing.T) {
	remote := newFakeRemote()
	for i := 0; i < 5; i++ {
		remote.products = append(remote.products, product(string(rune('a'+i)), "P", 100, 1, 0, ""))
	}
	store := memory.NewStore()

	res, err := newUseCase(remote, store, 2, nil).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.ProductsSynced)
	assert.Equal(t, []int{0, 2, 4}, remote.pageCalls)
}

func TestSync_NormalizaYResuelveCategorias(t *testing.T) {
	remote := newFakeRemote()
	remote.folders = []dto.MSFolder{{ID: "abc123", Name: "Shirts"}}
	withImage := product("p1", "Red shirt", 15000, 0, 7, "abc123")
	withImage.Images = &dto.MSRef{Meta: dto.MSMeta{Href: "https://api.moysklad.ru/img/p1", Size: 1}}
	withImage.Barcodes = []dto.MSBarcode{{EAN13: "4600000000001"}}
	remote.images["https://api.moysklad.ru/img/p1"] = "https://cdn/p1-mini.png"
	noImages := product("p2", "Orphan", 100, 3, 99, "zzz")
	noImages.Images = &dto.MSRef{Meta: dto.MSMeta{Href: "https://api.moysklad.ru/img/p2", Size: 0}}
	remote.products = []dto.MSProduct{withImage, noImages}
	store := memory.NewStore()

	res, err := newUseCase(remote, store, 100, nil).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.CategoriesSynced)
	assert.Equal(t, 2, res.ProductsSynced)
	assert.Equal(t, 1, remote.imageCalls, "solo se consulta la colección con imágenes")

	catID, err := store.Categories().GetIDByExternalID(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, catID)

	got := allProducts(t, store)
	p1 := got["p1"]
	require.NotNil(t, p1)
	assert.Equal(t, "150", p1.Price.String())
	assert.EqualValues(t, 7, p1.StockQuantity, "stock 0 cae a quantity")
	require.NotNil(t, p1.CategoryID)
	assert.Equal(t, *catID, *p1.CategoryID)
	require.NotNil(t, p1.ImageURL)
	assert.Equal(t, "https://cdn/p1-mini.png", *p1.ImageURL)
	assert.Equal(t, "pcs", p1.Unit)
	assert.Equal(t, "4600000000001", p1.Barcode)

	p2 := got["p2"]
	require.NotNil(t, p2)
	assert.EqualValues(t, 3, p2.StockQuantity)
	assert.Nil(t, p2.CategoryID, "carpeta desconocida queda en null")
	assert.Nil(t, p2.ImageURL)
}

func TestSync_Idempotente(t *testing.T) {
	remote := newFakeRemote()
	remote.folders = []dto.MSFolder{{ID: "f1", Name: "Hats"}, {ID: "f2", Name: "Shirts"}}
	remote.products = []dto.MSProduct{
		product("p1", "Cap", 2500, 2, 0, "f1"),
		product("p2", "Tee", 1000, 0, 4, "f2"),
	}
	store := memory.NewStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })
	uc := newUseCase(remote, store, 100, nil)

	_, err := uc.Sync(context.Background())
	require.NoError(t, err)
	first := allProducts(t, store)

	clock = clock.Add(time.Hour)
	res, err := uc.Sync(context.Background())
	require.NoError(t, err)
	second := allProducts(t, store)

	assert.Equal(t, 2, res.CategoriesSynced)
	assert.Equal(t, 2, res.ProductsSynced)
	require.Len(t, second, len(first))
	for id, a := range first {
		b := second[id]
		require.NotNil(t, b)
		assert.True(t, b.UpdatedAt.After(a.UpdatedAt), "updated_at se renueva")
		a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, a, b, "mismos valores salvo updated_at para %s", id)
	}
	n, _ := store.Categories().Count(context.Background())
	assert.Equal(t, 2, n)
}

func TestSync_ErrorRemotoRevierteTodo(t *testing.T) {
	remote := newFakeRemote()
	remote.folders = []dto.MSFolder{{ID: "f1", Name: "Hats"}}
	remote.products = []dto.MSProduct{
		product("p1", "Cap", 2500, 2, 0, "f1"),
		product("p2", "Tee", 1000, 1, 0, "f1"),
	}
	remote.failOffset = 1
	store := memory.NewStore()
	rec := &fakeRecorder{}

	res, err := newUseCase(remote, store, 1, rec).Sync(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "HTTP 500")

	n, _ := store.Categories().Count(context.Background())
	assert.Zero(t, n, "las categorías también se revierten")
	n, _ = store.Products().Count(context.Background())
	assert.Zero(t, n)
	assert.Equal(t, []recorded{{false, 0, 0}}, rec.calls)
}

func TestSync_ErrorCarpetas(t *testing.T) {
	remote := newFakeRemote()
	remote.foldersErr = errors.New("MoySklad productfolder: HTTP 401")
	store := memory.NewStore()

	_, err := newUseCase(remote, store, 100, nil).Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Empty(t, remote.pageCalls, "no se piden productos si fallan las categorías")
}

// failingTx envuelve el store y hace fallar el n-ésimo upsert de producto.
type failingTx struct {
	store  *memory.Store
	failAt int
}

type failingProducts struct {
	repository.ProductRepository
	calls  *int
	failAt int
}

func (f failingProducts) Upsert(ctx context.Context, p *entity.Product) error {
	*f.calls++
	if *f.calls == f.failAt {
		return errors.New("upsert product: connection reset")
	}
	return f.ProductRepository.Upsert(ctx, p)
}

func (f failingTx) RunCatalog(ctx context.Context, fn func(repository.CategoryRepository, repository.ProductRepository) error) error {
	return f.store.RunCatalog(ctx, func(c repository.CategoryRepository, p repository.ProductRepository) error {
		calls := 0
		return fn(c, failingProducts{ProductRepository: p, calls: &calls, failAt: f.failAt})
	})
}

func TestSync_ErrorPersistenciaRevierteTodo(t *testing.T) {
	remote := newFakeRemote()
	remote.folders = []dto.MSFolder{{ID: "f1", Name: "Hats"}}
	remote.products = []dto.MSProduct{
		product("p1", "Cap", 2500, 2, 0, "f1"),
		product("p2", "Tee", 1000, 1, 0, "f1"),
	}
	store := memory.NewStore()
	uc := catalogsync.NewSyncUseCase(remote, failingTx{store: store, failAt: 2},
		store.Categories(), store.Products(), catalogsync.Config{PageSize: 1}, nil, zerolog.Nop())

	_, err := uc.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	n, _ := store.Products().Count(context.Background())
	assert.Zero(t, n, "la primera página tampoco queda confirmada")
	n, _ = store.Categories().Count(context.Background())
	assert.Zero(t, n)
}

func TestStatus(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(newFakeRemote(), store, 100, nil)

	st, err := uc.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Categories)
	assert.Zero(t, st.Products)
	assert.Nil(t, st.LastSync)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	store.SetClock(func() time.Time { return at })
	remote := newFakeRemote()
	remote.folders = []dto.MSFolder{{ID: "f1", Name: "Hats"}}
	remote.products = []dto.MSProduct{product("p1", "Cap", 100, 1, 0, "f1")}
	_, err = newUseCase(remote, store, 100, nil).Sync(context.Background())
	require.NoError(t, err)

	st, err = uc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Categories)
	assert.Equal(t, 1, st.Products)
	require.NotNil(t, st.LastSync)
	assert.Equal(t, "2026-03-04T05:06:07Z", *st.LastSync)
}
