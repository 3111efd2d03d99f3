// Package reconciler persists extracted candidates: it resolves the shop, matches each
// candidate to a stored product and records price changes exactly once.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/shopspring/decimal"
)

// Store is the persistence the reconciler writes through.
type Store interface {
	EnsureShop(ctx context.Context, name, baseURL string) (*models.Shop, error)
	CreateProduct(ctx context.Context, product *models.Product, checkedAt time.Time) error
	RecordPriceChange(
		ctx context.Context, productID string, price decimal.Decimal, category string, checkedAt time.Time,
	) error
	BackfillCategory(ctx context.Context, productID, category string, at time.Time) error
}

// PersistenceError is a failed write for one candidate.
type PersistenceError struct {
	Action    string
	Candidate string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Action, e.Candidate, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Report summarises one reconciliation batch.
type Report struct {
	Shop      models.Shop
	Processed int
	Inserted  int
	Updated   int
	Unchanged int
	Failures  []models.ItemFailure
}

// Reconciler upserts candidates of one shop at a time.
type Reconciler struct {
	log     *slog.Logger
	store   Store
	matcher Matcher
	locks   *keyedMutex
	now     func() time.Time
}

type Option func(*Reconciler)

// WithClock overrides the time source used for observation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler.
func New(log *slog.Logger, store Store, matcher Matcher, opts ...Option) *Reconciler {
	r := &Reconciler{
		log:     log,
		store:   store,
		matcher: matcher,
		locks:   newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile persists the candidates under the named shop, creating the shop on first sight.
// Per-candidate failures are collected in the report; only a failure to resolve the shop
// is returned as an error. Calls for the same shop are serialised.
func (r *Reconciler) Reconcile(
	ctx context.Context, shopName string, candidates []models.Candidate, categorySlug string,
) (*Report, error) {
	const opn = "reconciler.Reconcile"
	log := r.log.With("op", opn, "shop", shopName)

	unlock := r.locks.Lock(shopName)
	defer unlock()

	baseURL := ""
	if len(candidates) > 0 {
		baseURL = origin(candidates[0].URL)
	}

	shop, err := r.store.EnsureShop(ctx, shopName, baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve shop: %w", opn, &PersistenceError{
			Action: "resolve shop", Candidate: shopName, Err: err,
		})
	}

	report := &Report{Shop: *shop, Processed: len(candidates)}
	for _, candidate := range candidates {
		outcome, itemErr := r.reconcileOne(ctx, shop.ID, candidate, categorySlug)
		if itemErr != nil {
			log.WarnContext(ctx, "Failed to persist candidate", "name", candidate.Name, "error", itemErr)
			report.Failures = append(report.Failures, models.ItemFailure{Name: candidate.Name, Error: itemErr.Error()})
			continue
		}

		switch outcome {
		case outcomeInserted:
			report.Inserted++
		case outcomeUpdated:
			report.Updated++
		case outcomeUnchanged:
			report.Unchanged++
		}
	}

	log.InfoContext(ctx, "Reconciliation complete",
		"processed", report.Processed,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", len(report.Failures),
	)

	return report, nil
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeInserted
	outcomeUpdated
)

func (r *Reconciler) reconcileOne(
	ctx context.Context, shopID string, candidate models.Candidate, categorySlug string,
) (outcome, error) {
	existing, err := r.matcher.Match(ctx, shopID, candidate)
	if err != nil {
		return outcomeUnchanged, &PersistenceError{Action: "match", Candidate: candidate.Name, Err: err}
	}

	now := r.now()

	if existing == nil {
		product := &models.Product{
			Name:         candidate.Name,
			ShopID:       shopID,
			CurrentPrice: candidate.Price,
			URL:          candidate.URL,
			Category:     categorySlug,
		}
		if err = r.store.CreateProduct(ctx, product, now); err != nil {
			return outcomeUnchanged, &PersistenceError{Action: "insert", Candidate: candidate.Name, Err: err}
		}
		r.log.DebugContext(ctx, "Inserted product", "id", product.ID, "name", product.Name, "price", candidate.Price)

		return outcomeInserted, nil
	}

	priceChanged := !existing.CurrentPrice.Equal(candidate.Price)
	backfill := categorySlug != "" && !existing.HasCategory()

	switch {
	case priceChanged:
		err = r.store.RecordPriceChange(ctx, existing.ID, candidate.Price, categorySlug, now)
		if err != nil {
			return outcomeUnchanged, &PersistenceError{Action: "update", Candidate: candidate.Name, Err: err}
		}
		r.log.DebugContext(ctx, "Recorded price change",
			"id", existing.ID, "old", existing.CurrentPrice, "new", candidate.Price)

		return outcomeUpdated, nil
	case backfill:
		if err = r.store.BackfillCategory(ctx, existing.ID, categorySlug, now); err != nil {
			return outcomeUnchanged, &PersistenceError{Action: "update", Candidate: candidate.Name, Err: err}
		}

		return outcomeUpdated, nil
	default:
		return outcomeUnchanged, nil
	}
}

// origin returns scheme://host of raw, or an empty string when it has none.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}
