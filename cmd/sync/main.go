// sync ejecuta una sincronización completa con MoySklad y termina (uso desde cron).
//
// Uso: go run ./cmd/sync [-dry-run] [-timeout 10m]
// Con -dry-run descarga y normaliza el catálogo en memoria, sin tocar PostgreSQL,
// e imprime el resultado y los productos normalizados en JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/moysklad"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Catalogo-api/pkg/config"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

type dryRunOutput struct {
	Result   *dto.SyncResult       `json:"result"`
	Products []dto.ProductResponse `json:"products"`
}

func main() {
	dryRun := flag.Bool("dry-run", false, "sincronizar en memoria sin escribir en PostgreSQL")
	timeout := flag.Duration("timeout", 10*time.Minute, "tiempo máximo de la sincronización")
	flag.Parse()

	load := config.Load
	if *dryRun {
		load = config.LoadRemoteOnly
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	remote, err := moysklad.NewClient(moysklad.Options{
		BaseURL:   cfg.MoySklad.BaseURL,
		Token:     cfg.MoySklad.Token,
		Timeout:   cfg.MoySklad.Timeout,
		RateLimit: cfg.MoySklad.RateLimit,
	}, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("cliente MoySklad")
	}
	syncCfg := catalogsync.Config{PageSize: cfg.MoySklad.PageSize, DefaultUnit: cfg.MoySklad.DefaultUnit}

	if *dryRun {
		os.Exit(runDryRun(ctx, remote, syncCfg, log))
	}

	tables, err := postgres.NewTables(cfg.DB.Schema)
	if err != nil {
		log.Fatal().Err(err).Msg("esquema de base de datos")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := catalogsync.NewSyncUseCase(remote, postgres.NewTxRunner(pool, tables),
		postgres.NewCategoryRepository(pool, tables), postgres.NewProductRepository(pool, tables),
		syncCfg, metrics.SyncRecorder{}, log.Zerolog())

	res, err := uc.Sync(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			log.Warn().Msg("otra sincronización en curso; nada que hacer")
			return
		}
		log.Error().Err(err).Msg("sincronización fallida")
		pool.Close()
		os.Exit(1)
	}
	_ = json.NewEncoder(os.Stdout).Encode(res)
}

func runDryRun(ctx context.Context, remote catalogsync.RemoteCatalog, cfg catalogsync.Config, log *logger.Logger) int {
	store := memory.NewStore()
	uc := catalogsync.NewSyncUseCase(remote, store, store.Categories(), store.Products(),
		cfg, nil, log.Zerolog())

	res, err := uc.Sync(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sincronización en seco fallida")
		return 1
	}
	list, err := usecase.NewProductUseCase(store.Products()).List(ctx, dto.ProductQuery{Limit: usecase.MaxProductLimit})
	if err != nil {
		log.Error().Err(err).Msg("listar productos normalizados")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dryRunOutput{Result: res, Products: list.Products}); err != nil {
		log.Error().Err(err).Msg("escribir salida")
		return 1
	}
	return 0
}
