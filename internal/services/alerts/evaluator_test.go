package alerts_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []alerts.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n alerts.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)

	return r.err
}

func (r *recordingNotifier) alertIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		ids = append(ids, n.Alert.ID)
	}

	return ids
}

func newStore(t *testing.T) *sqlstore.Repository {
	t.Helper()

	repo, err := sqlstore.NewRepository(t.Context(), discard(), sqlstore.DriverSQLite,
		filepath.Join(t.TempDir(), "alerts.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.SeedCategories(t.Context(), []models.Category{
		{Name: "Laptops", Slug: "laptops"},
		{Name: "Monitors", Slug: "monitors"},
	}))

	return repo
}

// observe stores a product first seen at firstAt for firstPrice, followed by the given price changes.
func observe(
	t *testing.T, store *sqlstore.Repository, shopID, name, category string,
	firstPrice int64, firstAt time.Time, changes ...priceAt,
) *models.Product {
	t.Helper()

	product := &models.Product{
		Name: name, ShopID: shopID, CurrentPrice: decimal.NewFromInt(firstPrice),
		URL: "https://shop.example/" + name, Category: category,
	}
	require.NoError(t, store.CreateProduct(t.Context(), product, firstAt))

	for _, c := range changes {
		require.NoError(t, store.RecordPriceChange(t.Context(), product.ID, decimal.NewFromInt(c.price), "", c.at))
	}

	return product
}

type priceAt struct {
	price int64
	at    time.Time
}

func productAlert(t *testing.T, store *sqlstore.Repository, productID string, threshold int64, dir models.Direction) string {
	t.Helper()

	alert := &models.Alert{
		UserID: "user-1", ProductID: productID, Threshold: decimal.NewFromInt(threshold), Direction: dir,
	}
	require.NoError(t, store.CreateAlert(t.Context(), alert))

	return alert.ID
}

func categoryAlert(t *testing.T, store *sqlstore.Repository, slug string, threshold int64) string {
	t.Helper()

	category, err := store.GetCategoryBySlug(t.Context(), slug)
	require.NoError(t, err)

	alert := &models.Alert{
		UserID: "user-2", CategoryID: category.ID, Threshold: decimal.NewFromInt(threshold),
		Direction: models.DirectionDown,
	}
	require.NoError(t, store.CreateAlert(t.Context(), alert))

	return alert.ID
}

func newEvaluator(store alerts.HistoryStore, notifier alerts.Notifier) *alerts.Evaluator {
	return alerts.NewEvaluator(discard(), store, notifier, alerts.WithClock(func() time.Time { return evalTime }))
}

func TestEvaluate_ProductThresholds(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Star Tech", "https://www.startech.com.bd")
	require.NoError(t, err)

	laptop := observe(t, store, shop.ID, "ideapad", "laptops", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-time.Hour)})

	fires := productAlert(t, store, laptop.ID, 500, models.DirectionDown)
	silent := productAlert(t, store, laptop.ID, 400, models.DirectionDown)

	notifier := &recordingNotifier{}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Drops)
	assert.Equal(t, []string{fires}, notifier.alertIDs())
	assert.NotContains(t, notifier.alertIDs(), silent)

	sent := notifier.sent[0]
	assert.True(t, sent.Drop.Previous.Equal(decimal.NewFromInt(600)))
	assert.True(t, sent.Drop.Current.Equal(decimal.NewFromInt(450)))
	assert.True(t, sent.Drop.Amount.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, sent.Product)
	assert.Equal(t, laptop.ID, sent.Product.ID)
}

func TestEvaluate_OneEvaluationPerProduct(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Ryans", "https://www.ryans.com")
	require.NoError(t, err)

	laptop := observe(t, store, shop.ID, "vivobook", "", 700, evalTime.Add(-30*time.Hour),
		priceAt{500, evalTime.Add(-3 * time.Hour)},
		priceAt{450, evalTime.Add(-time.Hour)},
	)
	productAlert(t, store, laptop.ID, 500, models.DirectionDown)

	notifier := &recordingNotifier{}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scanned)
	require.Len(t, notifier.sent, 1, "two observations in the window still notify once")
	assert.True(t, notifier.sent[0].Drop.Previous.Equal(decimal.NewFromInt(500)),
		"the baseline is the entry just before the newest one")
}

func TestEvaluate_CategoryAlertFiresOnAnyDrop(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Tech Land", "https://www.techlandbd.com")
	require.NoError(t, err)

	observe(t, store, shop.ID, "small-drop", "laptops", 1000, evalTime.Add(-48*time.Hour),
		priceAt{950, evalTime.Add(-2 * time.Hour)})
	observe(t, store, shop.ID, "big-drop", "laptops", 2000, evalTime.Add(-48*time.Hour),
		priceAt{1500, evalTime.Add(-time.Hour)})
	// New in the window, so it has no baseline and does not count as a drop.
	observe(t, store, shop.ID, "brand-new", "laptops", 100, evalTime.Add(-time.Hour))

	fires := categoryAlert(t, store, "laptops", 960)
	silent := categoryAlert(t, store, "laptops", 900)
	categoryAlert(t, store, "monitors", 1_000_000)

	notifier := &recordingNotifier{}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 2, summary.Drops)
	require.Equal(t, []string{fires}, notifier.alertIDs())
	assert.NotContains(t, notifier.alertIDs(), silent)

	sent := notifier.sent[0]
	require.NotNil(t, sent.Category)
	assert.Equal(t, "laptops", sent.Category.Slug)
	assert.Equal(t, 2, sent.Drops)
	assert.Equal(t, "big-drop", sent.Drop.Name, "the payload carries the biggest drop")
}

func TestEvaluate_ObservationsOutsideWindowAreIgnored(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Skyland", "https://www.skyland.com.bd")
	require.NoError(t, err)

	old := observe(t, store, shop.ID, "old-drop", "", 600, evalTime.Add(-72*time.Hour),
		priceAt{100, evalTime.Add(-25 * time.Hour)})
	productAlert(t, store, old.ID, 500, models.DirectionDown)

	notifier := &recordingNotifier{}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Zero(t, summary.Scanned)
	assert.Empty(t, notifier.sent)

	// A wider window picks it up.
	summary, err = alerts.NewEvaluator(discard(), store, notifier,
		alerts.WithClock(func() time.Time { return evalTime }), alerts.WithWindow(48*time.Hour)).
		Evaluate(t.Context())
	require.NoError(t, err)
	assert.Len(t, summary.Fired, 1)
}

// Rising-price alerts are accepted at creation but this evaluator only detects drops.
func TestEvaluate_UpAlertsAreNotEvaluated(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Ultra Tech", "https://www.ultratech.com.bd")
	require.NoError(t, err)

	rising := observe(t, store, shop.ID, "rising", "", 400, evalTime.Add(-30*time.Hour),
		priceAt{900, evalTime.Add(-time.Hour)})
	falling := observe(t, store, shop.ID, "falling", "", 900, evalTime.Add(-30*time.Hour),
		priceAt{400, evalTime.Add(-time.Hour)})
	productAlert(t, store, rising.ID, 500, models.DirectionUp)
	productAlert(t, store, falling.ID, 1000, models.DirectionUp)

	notifier := &recordingNotifier{}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Drops)
	assert.Empty(t, notifier.sent)
}

func TestEvaluate_DeliveryFailureDoesNotStopEvaluation(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Binary Logic", "https://www.binarylogic.com.bd")
	require.NoError(t, err)

	first := observe(t, store, shop.ID, "first", "", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-2 * time.Hour)})
	second := observe(t, store, shop.ID, "second", "", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-time.Hour)})
	productAlert(t, store, first.ID, 500, models.DirectionDown)
	productAlert(t, store, second.ID, 500, models.DirectionDown)

	notifier := &recordingNotifier{err: assert.AnError}
	summary, err := newEvaluator(store, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Len(t, summary.Fired, 2)
	assert.Equal(t, 2, summary.Failures)
}

type failingStore struct {
	alerts.HistoryStore
}

func (failingStore) RecentChanges(context.Context, time.Time) ([]models.RecentChange, error) {
	return nil, assert.AnError
}

func TestEvaluate_StoreFailure(t *testing.T) {
	_, err := newEvaluator(failingStore{}, &recordingNotifier{}).Evaluate(t.Context())

	require.ErrorIs(t, err, assert.AnError)
	require.ErrorContains(t, err, "alerts.Evaluator.Evaluate")
}

// flakyStore fails reads for selected products and categories.
type flakyStore struct {
	*sqlstore.Repository
	failPrevious   string
	failAlerts     string
	failCategories string
}

func (f flakyStore) PreviousEntry(ctx context.Context, productID string, before time.Time) (*models.PriceHistoryEntry, error) {
	if productID == f.failPrevious {
		return nil, assert.AnError
	}

	return f.Repository.PreviousEntry(ctx, productID, before)
}

func (f flakyStore) AlertsForProduct(ctx context.Context, productID string) ([]models.Alert, error) {
	if productID == f.failAlerts {
		return nil, assert.AnError
	}

	return f.Repository.AlertsForProduct(ctx, productID)
}

func (f flakyStore) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if slug == f.failCategories {
		return nil, assert.AnError
	}

	return f.Repository.GetCategoryBySlug(ctx, slug)
}

func TestEvaluate_ReadFailuresSkipOnlyTheAffectedItem(t *testing.T) {
	store := newStore(t)
	shop, err := store.EnsureShop(t.Context(), "Ultra Tech", "https://www.ultratech.com.bd")
	require.NoError(t, err)

	bad := observe(t, store, shop.ID, "bad", "", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-3 * time.Hour)})
	noHistory := observe(t, store, shop.ID, "no-history", "", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-2 * time.Hour)})
	good := observe(t, store, shop.ID, "good", "monitors", 600, evalTime.Add(-30*time.Hour),
		priceAt{450, evalTime.Add(-time.Hour)})
	laptop := observe(t, store, shop.ID, "laptop", "laptops", 900, evalTime.Add(-30*time.Hour),
		priceAt{800, evalTime.Add(-time.Hour)})

	productAlert(t, store, bad.ID, 500, models.DirectionDown)
	productAlert(t, store, noHistory.ID, 500, models.DirectionDown)
	goodAlert := productAlert(t, store, good.ID, 500, models.DirectionDown)
	productAlert(t, store, laptop.ID, 850, models.DirectionDown)
	monitorsAlert := categoryAlert(t, store, "monitors", 500)
	categoryAlert(t, store, "laptops", 850)

	flaky := flakyStore{
		Repository:     store,
		failPrevious:   noHistory.ID,
		failAlerts:     bad.ID,
		failCategories: "laptops",
	}
	notifier := &recordingNotifier{}
	summary, err := newEvaluator(flaky, notifier).Evaluate(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.LoadFailures)
	assert.Contains(t, notifier.alertIDs(), goodAlert)
	assert.Contains(t, notifier.alertIDs(), monitorsAlert)
	// good, laptop and the monitors category alert.
	assert.Len(t, notifier.sent, 3)
}

func TestNotification_Message(t *testing.T) {
	t.Parallel()

	n := alerts.Notification{
		Alert:   models.Alert{Threshold: decimal.NewFromInt(500)},
		Product: &models.Product{URL: "https://shop.example/ideapad"},
		Drop: alerts.Drop{
			Name: "IdeaPad", Current: decimal.NewFromInt(450), Previous: decimal.NewFromInt(600),
			Amount: decimal.NewFromInt(150),
		},
	}

	assert.Equal(t,
		"Price drop: IdeaPad\n600.00 -> 450.00 (-150.00), your threshold 500.00\nhttps://shop.example/ideapad",
		n.Message())

	n.Product = nil
	n.Category = &models.Category{Name: "Laptops"}
	n.Drops = 3
	assert.Contains(t, n.Message(), "Price drop in Laptops: 3 product(s) got cheaper.")
}

func TestMultiNotifier(t *testing.T) {
	t.Parallel()

	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: assert.AnError}

	err := alerts.MultiNotifier{ok, broken}.Notify(t.Context(), alerts.Notification{})

	require.ErrorIs(t, err, assert.AnError)
	assert.Len(t, ok.sent, 1)
	assert.Len(t, broken.sent, 1)
	require.NoError(t, alerts.NewLogNotifier(discard()).Notify(t.Context(), alerts.Notification{}))
}
