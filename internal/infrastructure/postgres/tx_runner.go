package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// Ensure TxRunner implements catalogsync.TxRunner.
var _ catalogsync.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	t    Tables
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, t Tables) *TxRunner {
	return &TxRunner{pool: pool, t: t}
}

// RunCatalog inicia una transacción, toma el advisory lock de sincronización del esquema,
// ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si otra sincronización tiene el lock devuelve domain.ErrSyncInProgress sin esperar.
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, syncLockKey(r.t)).Scan(&locked); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		return domain.ErrSyncInProgress
	}

	if err := fn(NewCategoryRepository(tx, r.t), NewProductRepository(tx, r.t)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func syncLockKey(t Tables) string {
	return "catalogsync:" + t.Schema
}
