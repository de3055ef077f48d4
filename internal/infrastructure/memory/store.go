// Package memory implementa los puertos del catálogo en memoria. Lo usa la
// sincronización en modo dry-run (cmd/sync -dry-run) y los tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ catalogsync.TxRunner = (*Store)(nil)

type state struct {
	categories map[string]*entity.Category // por ExternalID
	products   map[string]*entity.Product  // por ExternalID
	nextCatID  int64
	nextProdID int64
}

func newState() *state {
	return &state{
		categories: make(map[string]*entity.Category),
		products:   make(map[string]*entity.Product),
	}
}

func (s *state) clone() *state {
	c := &state{
		categories: make(map[string]*entity.Category, len(s.categories)),
		products:   make(map[string]*entity.Product, len(s.products)),
		nextCatID:  s.nextCatID,
		nextProdID: s.nextProdID,
	}
	for k, v := range s.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	return c
}

// Store catálogo en memoria con transacciones por copia: RunCatalog trabaja sobre un clon
// y solo lo publica si fn termina sin error.
type Store struct {
	mu      sync.Mutex
	st      *state
	syncing bool
	now     func() time.Time
}

// NewStore crea un catálogo vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock reemplaza el reloj usado para updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Categories repositorio de categorías sobre el estado confirmado.
func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepo{mu: &s.mu, st: func() *state { return s.st }, now: s.clock}
}

// Products repositorio de productos sobre el estado confirmado.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{mu: &s.mu, st: func() *state { return s.st }, now: s.clock}
}

// SetActive marca un producto como activo o inactivo (la sincronización nunca lo cambia).
func (s *Store) SetActive(externalID string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.st.products[externalID]; ok {
		p.IsActive = active
	}
}

// SetParent asigna la categoría padre por ids externos.
func (s *Store) SetParent(childExternalID, parentExternalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	child, ok := s.st.categories[childExternalID]
	parent, ok2 := s.st.categories[parentExternalID]
	if ok && ok2 {
		id := parent.ID
		child.ParentID = &id
	}
}

func (s *Store) clock() time.Time {
	return s.now()
}

// RunCatalog implementa catalogsync.TxRunner. Una segunda ejecución concurrente recibe
// domain.ErrSyncInProgress, igual que con el advisory lock de PostgreSQL.
func (s *Store) RunCatalog(ctx context.Context, fn func(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) error) error {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return domain.ErrSyncInProgress
	}
	s.syncing = true
	work := s.st.clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	var txMu sync.Mutex
	get := func() *state { return work }
	err := fn(
		&categoryRepo{mu: &txMu, st: get, now: s.clock},
		&productRepo{mu: &txMu, st: get, now: s.clock},
	)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

type categoryRepo struct {
	mu  *sync.Mutex
	st  func() *state
	now func() time.Time
}

func (r *categoryRepo) Upsert(_ context.Context, c *entity.Category) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.st()
	now := r.now()
	if existing, ok := st.categories[c.ExternalID]; ok {
		existing.Name = c.Name
		existing.UpdatedAt = now
		c.ID, c.UpdatedAt = existing.ID, now
		return existing.ID, nil
	}
	st.nextCatID++
	row := &entity.Category{ID: st.nextCatID, ExternalID: c.ExternalID, Name: c.Name, UpdatedAt: now}
	st.categories[c.ExternalID] = row
	c.ID, c.UpdatedAt = row.ID, now
	return row.ID, nil
}

func (r *categoryRepo) GetIDByExternalID(_ context.Context, externalID string) (*int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.st().categories[externalID]; ok {
		id := c.ID
		return &id, nil
	}
	return nil, nil
}

func (r *categoryRepo) ListWithProductCounts(_ context.Context) ([]*entity.CategorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.st()
	counts := make(map[int64]int)
	for _, p := range st.products {
		if p.IsActive && p.CategoryID != nil {
			counts[*p.CategoryID]++
		}
	}
	list := make([]*entity.CategorySummary, 0, len(st.categories))
	for _, c := range st.categories {
		list = append(list, &entity.CategorySummary{Category: *c, ProductsCount: counts[c.ID]})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *categoryRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.st().categories), nil
}

type productRepo struct {
	mu  *sync.Mutex
	st  func() *state
	now func() time.Time
}

func (r *productRepo) Upsert(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.st()
	now := r.now()
	row, ok := st.products[p.ExternalID]
	if !ok {
		st.nextProdID++
		row = &entity.Product{ID: st.nextProdID, ExternalID: p.ExternalID, IsActive: true}
		st.products[p.ExternalID] = row
	}
	row.Name = p.Name
	row.Description = p.Description
	row.Article = p.Article
	row.Price = p.Price
	row.StockQuantity = p.StockQuantity
	row.CategoryID = copyInt64(p.CategoryID)
	row.ImageURL = copyString(p.ImageURL)
	row.Unit = p.Unit
	row.Barcode = p.Barcode
	row.UpdatedAt = now
	p.ID, p.UpdatedAt = row.ID, now
	return nil
}

func (r *productRepo) matching(filter entity.ProductFilter) []*entity.Product {
	st := r.st()
	needle := strings.ToLower(filter.Search)
	var out []*entity.Product
	for _, p := range st.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Article), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *productRepo) List(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.matching(filter)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	if filter.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit >= 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	names := make(map[int64]string, len(r.st().categories))
	for _, c := range r.st().categories {
		names[c.ID] = c.Name
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, p := range rows {
		cp := *p
		if p.CategoryID != nil {
			if name, ok := names[*p.CategoryID]; ok {
				cp.CategoryName = &name
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *productRepo) CountFiltered(_ context.Context, filter entity.ProductFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(filter)), nil
}

func (r *productRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.st().products), nil
}

func (r *productRepo) LastUpdatedAt(_ context.Context) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *time.Time
	for _, p := range r.st().products {
		if last == nil || p.UpdatedAt.After(*last) {
			t := p.UpdatedAt
			last = &t
		}
	}
	return last, nil
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
