package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/natewolfe/dreamcensus-sub001/internal/cache"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/logging"
	"github.com/natewolfe/dreamcensus-sub001/internal/store"
)

// deps holds what a command needs from the engine. Close releases it.
type deps struct {
	Logger  *slog.Logger
	Store   *store.Store
	Service *census.Service
	closers []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Warn("close failed", "error", err)
		}
	}
}

// loadCatalog returns the configured catalog or the built-in one.
func loadCatalog() (*catalog.Snapshot, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	snap, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogPath, err)
	}
	return snap, nil
}

// openDeps builds the logger, store, cache and census service. Logs go to
// logOut.
func openDeps(ctx context.Context, identity census.IdentityProvider, logOut io.Writer) (*deps, error) {
	logger := logging.New(logOut, logging.ParseLevel(cfg.LogLevel))
	d := &deps{Logger: logger}

	snap, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.Store = st
	d.closers = append(d.closers, st.Close)

	var pc cache.ProgressCache = cache.NewMemoryProgressCache(cfg.CacheTTL)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, client.Close)
		pc = cache.NewRedisProgressCache(client, cfg.CacheTTL)
		logger.Debug("using redis progress cache")
	}

	d.Service = census.New(snap, st.AnswerRepo(), st.ExposureRepo(), identity,
		census.WithLogger(logger),
		census.WithCache(pc),
		census.WithSelectLimit(cfg.SelectLimit),
	)
	logger.Debug("census ready", "db", dbPath, "catalog_version", snap.Version())
	return d, nil
}
