// Package alerts evaluates user price alerts against recently observed prices
// and manages the alerts themselves.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/shopspring/decimal"
)

// DefaultWindow is how far back observations are scanned.
const DefaultWindow = 24 * time.Hour

// HistoryStore is what the evaluator reads.
type HistoryStore interface {
	RecentChanges(ctx context.Context, since time.Time) ([]models.RecentChange, error)
	PreviousEntry(ctx context.Context, productID string, before time.Time) (*models.PriceHistoryEntry, error)
	AlertsForProduct(ctx context.Context, productID string) ([]models.Alert, error)
	AlertsForCategory(ctx context.Context, categoryID string) ([]models.Alert, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// Drop is a product whose current price is below its previous observation.
type Drop struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Current   decimal.Decimal `json:"current_price"`
	Previous  decimal.Decimal `json:"previous_price"`
	Amount    decimal.Decimal `json:"drop"`
}

// Summary is the outcome of one evaluation pass.
type Summary struct {
	Scanned  int
	Drops    int
	Fired    []Notification
	Failures int // notifications that could not be delivered
	// LoadFailures counts products and categories skipped because a store read failed.
	LoadFailures int
}

// Evaluator scans recent price history and fires matching drop alerts.
// Rising-price alerts are stored but never evaluated here.
type Evaluator struct {
	log      *slog.Logger
	store    HistoryStore
	notifier Notifier
	window   time.Duration
	now      func() time.Time
}

type Option func(*Evaluator)

// WithWindow sets the trailing window of observations to scan.
func WithWindow(window time.Duration) Option {
	return func(e *Evaluator) {
		if window > 0 {
			e.window = window
		}
	}
}

// WithClock overrides the evaluation time source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func NewEvaluator(log *slog.Logger, store HistoryStore, notifier Notifier, opts ...Option) *Evaluator {
	e := &Evaluator{
		log:      log,
		store:    store,
		notifier: notifier,
		window:   DefaultWindow,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate runs one pass over the trailing window. Each product is considered once, using
// its newest observation in the window and the observation just before it. Only a failure to
// read the window fails the pass; a failed read for one product or category is logged, counted
// in LoadFailures and skipped.
func (e *Evaluator) Evaluate(ctx context.Context) (*Summary, error) {
	const opn = "alerts.Evaluator.Evaluate"
	log := e.log.With("op", opn)

	since := e.now().Add(-e.window)
	changes, err := e.store.RecentChanges(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load recent changes: %w", opn, err)
	}

	summary := &Summary{}
	seen := make(map[string]struct{}, len(changes))
	dropsByCategory := make(map[string][]Drop)
	var categoryOrder []string

	for _, change := range changes {
		productID := change.Product.ID
		if _, ok := seen[productID]; ok {
			continue
		}
		seen[productID] = struct{}{}
		summary.Scanned++

		prev, prevErr := e.store.PreviousEntry(ctx, productID, change.Entry.CheckedAt)
		if errors.Is(prevErr, repository.ErrNotFound) {
			continue
		}
		if prevErr != nil {
			summary.LoadFailures++
			log.ErrorContext(ctx, "Failed to load previous price", "product", productID, "error", prevErr)
			continue
		}

		current := change.Product.CurrentPrice
		if !current.LessThan(prev.Price) {
			continue
		}

		drop := Drop{
			ProductID: productID,
			Name:      change.Product.Name,
			Current:   current,
			Previous:  prev.Price,
			Amount:    prev.Price.Sub(current),
		}
		summary.Drops++
		log.DebugContext(ctx, "Price drop detected", "product", productID, "from", prev.Price, "to", current)

		if change.Product.HasCategory() {
			slug := change.Product.Category
			if _, ok := dropsByCategory[slug]; !ok {
				categoryOrder = append(categoryOrder, slug)
			}
			dropsByCategory[slug] = append(dropsByCategory[slug], drop)
		}

		product := change.Product
		if err = e.fireProductAlerts(ctx, &product, drop, summary); err != nil {
			summary.LoadFailures++
			log.ErrorContext(ctx, "Skipping product alerts", "product", productID, "error", err)
		}
	}

	for _, slug := range categoryOrder {
		if err = e.fireCategoryAlerts(ctx, slug, dropsByCategory[slug], summary); err != nil {
			summary.LoadFailures++
			log.ErrorContext(ctx, "Skipping category alerts", "category", slug, "error", err)
		}
	}

	log.InfoContext(ctx, "Alert evaluation complete",
		"scanned", summary.Scanned, "drops", summary.Drops, "fired", len(summary.Fired),
		"failed", summary.Failures, "skipped", summary.LoadFailures)

	return summary, nil
}

func (e *Evaluator) fireProductAlerts(ctx context.Context, product *models.Product, drop Drop, summary *Summary) error {
	alerts, err := e.store.AlertsForProduct(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to load alerts of product %s: %w", product.ID, err)
	}

	for _, alert := range alerts {
		if !alert.FiresOnDrop(drop.Current) {
			continue
		}
		e.deliver(ctx, Notification{Alert: alert, Product: product, Drop: drop}, summary)
	}

	return nil
}

func (e *Evaluator) fireCategoryAlerts(ctx context.Context, slug string, drops []Drop, summary *Summary) error {
	category, err := e.store.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		e.log.DebugContext(ctx, "Skipping drops of an unknown category", "category", slug)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load category %s: %w", slug, err)
	}

	alerts, err := e.store.AlertsForCategory(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("failed to load alerts of category %s: %w", slug, err)
	}
	if len(alerts) == 0 {
		return nil
	}

	biggest := drops[0]
	for _, d := range drops[1:] {
		if d.Amount.GreaterThan(biggest.Amount) {
			biggest = d
		}
	}

	for _, alert := range alerts {
		if !anyFires(alert, drops) {
			continue
		}
		e.deliver(ctx, Notification{Alert: alert, Category: category, Drop: biggest, Drops: len(drops)}, summary)
	}

	return nil
}

func anyFires(alert models.Alert, drops []Drop) bool {
	for _, d := range drops {
		if alert.FiresOnDrop(d.Current) {
			return true
		}
	}

	return false
}

func (e *Evaluator) deliver(ctx context.Context, n Notification, summary *Summary) {
	summary.Fired = append(summary.Fired, n)

	if err := e.notifier.Notify(ctx, n); err != nil {
		summary.Failures++
		e.log.ErrorContext(ctx, "Failed to deliver alert notification", "alert", n.Alert.ID, "error", err)
	}
}
