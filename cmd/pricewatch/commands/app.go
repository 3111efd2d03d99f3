package commands

import (
	"context"
	"fmt"

	"github.com/Houeta/pricewatch/internal/parser"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/Houeta/pricewatch/internal/services/orchestrator"
	"github.com/Houeta/pricewatch/internal/services/reconciler"
	"github.com/Houeta/pricewatch/internal/sites"
)

// app holds the components every pipeline-running command shares.
type app struct {
	registry *sites.Registry
	store    *sqlstore.Repository
	fetcher  parser.Fetcher
}

func loadRegistry() (*sites.Registry, error) {
	if cfg.SitesFile == "" {
		return sites.Default(), nil
	}

	return sites.LoadFile(cfg.SitesFile)
}

func newApp(ctx context.Context) (*app, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	fetcher, err := parser.NewFetcher(logger, cfg.Fetch.Engine, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	if err != nil {
		return nil, err
	}

	store, err := sqlstore.NewRepository(ctx, logger, cfg.Storage.Driver, cfg.Storage.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	if err = store.SeedCategories(ctx, registry.SeedCategories()); err != nil {
		store.Close()
		return nil, err
	}

	return &app{registry: registry, store: store, fetcher: fetcher}, nil
}

// pipeline wires the scrape pipeline with alert delivery to notifier.
func (a *app) pipeline(notifier alerts.Notifier) *orchestrator.Orchestrator {
	rec := reconciler.New(logger, a.store, reconciler.NewFuzzyNameMatcher(a.store))
	evaluator := alerts.NewEvaluator(logger, a.store, notifier, alerts.WithWindow(cfg.AlertWindow))

	return orchestrator.New(logger, a.registry, a.fetcher, parser.NewExtractor(logger), rec, evaluator)
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Error("failed to close store", "error", err)
	}
}
