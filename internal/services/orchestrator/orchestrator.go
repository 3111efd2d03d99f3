// Package orchestrator drives one scrape invocation: it resolves the category paths of a
// site and runs fetch, extract and reconcile for each of them in turn, then evaluates alerts.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/parser"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/Houeta/pricewatch/internal/services/reconciler"
	"github.com/Houeta/pricewatch/internal/sites"
)

// ErrExtractionEmpty marks a path that yielded no valid candidates.
var ErrExtractionEmpty = errors.New("No products found") //nolint:staticcheck // message is part of the response contract

// Request selects what to scrape. CategorySlug wins over CategoryPath; with neither the
// site's default paths are used.
type Request struct {
	Site         string `json:"site"`
	CategorySlug string `json:"categorySlug,omitempty"`
	CategoryPath string `json:"categoryPath,omitempty"`
}

type SiteRegistry interface {
	Lookup(id string) (sites.Site, error)
	IDs() []string
}

type Extractor interface {
	Extract(ctx context.Context, markup io.Reader, site sites.Site) ([]models.Candidate, error)
}

type Reconciler interface {
	Reconcile(
		ctx context.Context, shopName string, candidates []models.Candidate, categorySlug string,
	) (*reconciler.Report, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context) (*alerts.Summary, error)
}

// Interface is the scrape pipeline as seen by its callers.
type Interface interface {
	Run(ctx context.Context, req Request) (*models.RunResult, error)
	RunAll(ctx context.Context) ([]*models.RunResult, error)
}

// Orchestrator runs the scrape pipeline.
type Orchestrator struct {
	log        *slog.Logger
	sites      SiteRegistry
	fetcher    parser.Fetcher
	extractor  Extractor
	reconciler Reconciler
	evaluator  Evaluator
}

// New creates a new Orchestrator instance.
func New(
	log *slog.Logger,
	registry SiteRegistry,
	fetcher parser.Fetcher,
	extractor Extractor,
	rec Reconciler,
	evaluator Evaluator,
) *Orchestrator {
	return &Orchestrator{
		log:        log,
		sites:      registry,
		fetcher:    fetcher,
		extractor:  extractor,
		reconciler: rec,
		evaluator:  evaluator,
	}
}

// Run scrapes one site and evaluates alerts once afterwards. Only an unknown site or a
// cancelled context fail the whole run; path failures are reported in the result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.RunResult, error) {
	const opn = "orchestrator.Run"

	result, err := o.scrape(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	o.evaluate(ctx)

	return result, nil
}

// RunAll scrapes every registered site with its default paths and evaluates alerts once.
// A failing site is logged and skipped.
func (o *Orchestrator) RunAll(ctx context.Context) ([]*models.RunResult, error) {
	const opn = "orchestrator.RunAll"
	log := o.log.With("op", opn)

	var results []*models.RunResult
	for _, id := range o.sites.IDs() {
		result, err := o.scrape(ctx, Request{Site: id})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, fmt.Errorf("%s: %w", opn, ctxErr)
			}
			log.ErrorContext(ctx, "Site run failed", "site", id, "error", err)
			continue
		}
		results = append(results, result)
	}

	o.evaluate(ctx)

	return results, nil
}

func (o *Orchestrator) scrape(ctx context.Context, req Request) (*models.RunResult, error) {
	log := o.log.With("site", req.Site)

	log.DebugContext(ctx, "Resolving paths")
	site, err := o.sites.Lookup(req.Site)
	if err != nil {
		return nil, err
	}

	paths := site.ResolvePaths(req.CategorySlug, req.CategoryPath)
	log.InfoContext(ctx, "Starting scrape", "shop", site.Name, "paths", len(paths))

	var category *string
	if req.CategorySlug != "" {
		slug := req.CategorySlug
		category = &slug
	}

	result := &models.RunResult{Site: site.ID, Results: make([]models.PathResult, 0, len(paths))}
	for _, path := range paths {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted before %s: %w", path, err)
		}

		pathResult := o.scrapePath(ctx, log.With("path", path), site, path, req.CategorySlug)
		pathResult.Category = category
		result.Results = append(result.Results, pathResult)
	}
	result.Success = true

	return result, nil
}

func (o *Orchestrator) scrapePath(
	ctx context.Context, log *slog.Logger, site sites.Site, path, categorySlug string,
) models.PathResult {
	failed := func(err error) models.PathResult {
		log.WarnContext(ctx, "Path failed", "error", err)
		return models.PathResult{Path: path, Success: false, Error: err.Error()}
	}

	log.DebugContext(ctx, "Fetching")
	body, err := o.fetcher.Fetch(ctx, site.URL(path))
	if err != nil {
		return failed(err)
	}

	log.DebugContext(ctx, "Extracting")
	candidates, err := o.extractor.Extract(ctx, strings.NewReader(body), site)
	if err != nil {
		return failed(err)
	}
	if len(candidates) == 0 {
		return failed(ErrExtractionEmpty)
	}

	log.DebugContext(ctx, "Reconciling", "candidates", len(candidates))
	report, err := o.reconciler.Reconcile(ctx, site.Name, candidates, categorySlug)
	if err != nil {
		return failed(err)
	}

	count := report.Processed
	log.InfoContext(ctx, "Path done", "count", count, "inserted", report.Inserted, "updated", report.Updated)

	return models.PathResult{Path: path, Success: true, Count: &count, Failures: report.Failures}
}

func (o *Orchestrator) evaluate(ctx context.Context) {
	if o.evaluator == nil {
		return
	}

	o.log.DebugContext(ctx, "Evaluating alerts")
	if _, err := o.evaluator.Evaluate(ctx); err != nil {
		o.log.ErrorContext(ctx, "Alert evaluation failed", "error", err)
	}
}
