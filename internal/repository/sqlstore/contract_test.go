package sqlstore_test

import (
	"testing"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises behaviour every dialect must share. The repository
// must be empty apart from the categories returned by testCategories.
func runStoreContract(t *testing.T, repo *sqlstore.Repository) {
	t.Helper()

	ctx := t.Context()
	base := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	shop, err := repo.EnsureShop(ctx, "Star Tech", "https://www.startech.com.bd")
	require.NoError(t, err)

	t.Run("ensure shop is idempotent", func(t *testing.T) {
		again, ensureErr := repo.EnsureShop(ctx, "Star Tech", "https://elsewhere.example")
		require.NoError(t, ensureErr)
		assert.Equal(t, shop.ID, again.ID)
		assert.Equal(t, "https://www.startech.com.bd", again.BaseURL)

		shops, listErr := repo.ListShops(ctx)
		require.NoError(t, listErr)
		assert.Len(t, shops, 1)
	})

	t.Run("create shop conflicts on name", func(t *testing.T) {
		dup := &models.Shop{Name: "Star Tech", BaseURL: "https://x.example"}
		require.ErrorIs(t, repo.CreateShop(ctx, dup), repository.ErrConflict)
	})

	laptop := &models.Product{
		Name:         "Lenovo IdeaPad Slim 3 15IAH8 Core i5 12th Gen",
		ShopID:       shop.ID,
		CurrentPrice: decimal.RequireFromString("65500"),
		URL:          "https://www.startech.com.bd/lenovo-ideapad-slim-3",
	}
	require.NoError(t, repo.CreateProduct(ctx, laptop, base))
	require.NotEmpty(t, laptop.ID)

	t.Run("created product has one history entry", func(t *testing.T) {
		entries, histErr := repo.ListHistory(ctx, laptop.ID)
		require.NoError(t, histErr)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].Price.Equal(decimal.NewFromInt(65500)))
		assert.True(t, entries[0].CheckedAt.Equal(base))
	})

	t.Run("find by name is case-insensitive containment", func(t *testing.T) {
		found, findErr := repo.FindProductByName(ctx, shop.ID, "lenovo ideapad slim 3 15IAH8 C")
		require.NoError(t, findErr)
		assert.Equal(t, laptop.ID, found.ID)
		assert.False(t, found.HasCategory())

		_, findErr = repo.FindProductByName(ctx, "other-shop", "Lenovo")
		require.ErrorIs(t, findErr, repository.ErrNotFound)
	})

	t.Run("like wildcards are matched literally", func(t *testing.T) {
		_, findErr := repo.FindProductByName(ctx, shop.ID, "Lenovo%Slim")
		require.ErrorIs(t, findErr, repository.ErrNotFound)
		_, findErr = repo.FindProductByName(ctx, shop.ID, "Lenovo_IdeaPad")
		require.ErrorIs(t, findErr, repository.ErrNotFound)
	})

	t.Run("find by url", func(t *testing.T) {
		found, findErr := repo.FindProductByURL(ctx, shop.ID, laptop.URL)
		require.NoError(t, findErr)
		assert.Equal(t, laptop.ID, found.ID)
	})

	t.Run("category backfill writes no history", func(t *testing.T) {
		require.NoError(t, repo.BackfillCategory(ctx, laptop.ID, "laptops", base.Add(time.Minute)))
		require.NoError(t, repo.BackfillCategory(ctx, laptop.ID, "monitors", base.Add(2*time.Minute)))

		got, getErr := repo.GetProduct(ctx, laptop.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "laptops", got.Category, "an assigned category is never overwritten")

		entries, histErr := repo.ListHistory(ctx, laptop.ID)
		require.NoError(t, histErr)
		assert.Len(t, entries, 1)
	})

	t.Run("price change updates product and appends history", func(t *testing.T) {
		require.NoError(t, repo.RecordPriceChange(ctx, laptop.ID, decimal.NewFromInt(61000), "monitors",
			base.Add(time.Hour)))

		got, getErr := repo.GetProduct(ctx, laptop.ID)
		require.NoError(t, getErr)
		assert.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(61000)))
		assert.Equal(t, "laptops", got.Category)

		entries, histErr := repo.ListHistory(ctx, laptop.ID)
		require.NoError(t, histErr)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Price.Equal(decimal.NewFromInt(61000)), "newest first")

		require.ErrorIs(t,
			repo.RecordPriceChange(ctx, "missing", decimal.NewFromInt(1), "", base),
			repository.ErrNotFound)
	})

	t.Run("recent changes and previous entry", func(t *testing.T) {
		changes, recentErr := repo.RecentChanges(ctx, base.Add(30*time.Minute))
		require.NoError(t, recentErr)
		require.Len(t, changes, 1)
		assert.Equal(t, laptop.ID, changes[0].Product.ID)
		assert.True(t, changes[0].Product.CurrentPrice.Equal(decimal.NewFromInt(61000)))

		prev, prevErr := repo.PreviousEntry(ctx, laptop.ID, changes[0].Entry.CheckedAt)
		require.NoError(t, prevErr)
		assert.True(t, prev.Price.Equal(decimal.NewFromInt(65500)))

		_, prevErr = repo.PreviousEntry(ctx, laptop.ID, base)
		require.ErrorIs(t, prevErr, repository.ErrNotFound)
	})

	t.Run("listing", func(t *testing.T) {
		byShop, listErr := repo.ListProductsByShop(ctx, shop.ID)
		require.NoError(t, listErr)
		assert.Len(t, byShop, 1)

		byCategory, listErr := repo.ListProductsByCategory(ctx, "laptops")
		require.NoError(t, listErr)
		assert.Len(t, byCategory, 1)

		all, listErr := repo.ListProducts(ctx)
		require.NoError(t, listErr)
		assert.Len(t, all, 1)
	})

	category, err := repo.GetCategoryBySlug(ctx, "laptops")
	require.NoError(t, err)

	t.Run("categories", func(t *testing.T) {
		byID, getErr := repo.GetCategory(ctx, category.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "Laptops", byID.Name)

		_, getErr = repo.GetCategoryBySlug(ctx, "nope")
		require.ErrorIs(t, getErr, repository.ErrNotFound)
	})

	t.Run("alerts", func(t *testing.T) {
		productAlert := &models.Alert{
			UserID: "user-1", ProductID: laptop.ID, Threshold: decimal.NewFromInt(62000),
			Direction: models.DirectionDown,
		}
		categoryAlert := &models.Alert{
			UserID: "user-1", CategoryID: category.ID, Threshold: decimal.NewFromInt(70000),
			Direction: models.DirectionDown,
		}
		require.NoError(t, repo.CreateAlert(ctx, productAlert))
		require.NoError(t, repo.CreateAlert(ctx, categoryAlert))

		byProduct, alertErr := repo.AlertsForProduct(ctx, laptop.ID)
		require.NoError(t, alertErr)
		require.Len(t, byProduct, 1)
		assert.True(t, byProduct[0].Threshold.Equal(decimal.NewFromInt(62000)))
		assert.Equal(t, models.DirectionDown, byProduct[0].Direction)

		byCategory, alertErr := repo.AlertsForCategory(ctx, category.ID)
		require.NoError(t, alertErr)
		assert.Len(t, byCategory, 1)

		byUser, alertErr := repo.AlertsForUser(ctx, "user-1")
		require.NoError(t, alertErr)
		assert.Len(t, byUser, 2)

		invalid := &models.Alert{
			UserID: "user-1", ProductID: laptop.ID, CategoryID: category.ID,
			Threshold: decimal.NewFromInt(1), Direction: models.DirectionDown,
		}
		require.Error(t, repo.CreateAlert(ctx, invalid), "the table rejects two targets")

		require.ErrorIs(t, repo.DeleteAlert(ctx, "user-2", categoryAlert.ID), repository.ErrNotFound)
		require.NoError(t, repo.DeleteAlert(ctx, "user-1", categoryAlert.ID))
	})

	t.Run("chat subscriptions", func(t *testing.T) {
		require.NoError(t, repo.SubscribeChat(ctx, -100, "user-1"))
		require.NoError(t, repo.SubscribeChat(ctx, -100, "user-1"))
		require.NoError(t, repo.SubscribeChat(ctx, 42, "user-1"))

		chats, subErr := repo.ChatsForUser(ctx, "user-1")
		require.NoError(t, subErr)
		assert.ElementsMatch(t, []int64{-100, 42}, chats)

		require.NoError(t, repo.UnsubscribeChat(ctx, 42))
		chats, subErr = repo.ChatsForUser(ctx, "user-1")
		require.NoError(t, subErr)
		assert.Equal(t, []int64{-100}, chats)
	})

	t.Run("link codes are one-time and expire", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, repo.CreateLinkCode(ctx, "code-live", "user-3", now.Add(15*time.Minute)))
		require.NoError(t, repo.CreateLinkCode(ctx, "code-stale", "user-3", now.Add(time.Minute)))
		require.ErrorIs(t, repo.CreateLinkCode(ctx, "code-live", "user-4", now.Add(time.Hour)), repository.ErrConflict)

		_, redeemErr := repo.RedeemLinkCode(ctx, "code-unknown", 77, now)
		require.ErrorIs(t, redeemErr, repository.ErrNotFound)

		_, redeemErr = repo.RedeemLinkCode(ctx, "code-stale", 77, now.Add(2*time.Minute))
		require.ErrorIs(t, redeemErr, repository.ErrNotFound)

		userID, redeemErr := repo.RedeemLinkCode(ctx, "code-live", 77, now)
		require.NoError(t, redeemErr)
		assert.Equal(t, "user-3", userID)

		_, redeemErr = repo.RedeemLinkCode(ctx, "code-live", 78, now)
		require.ErrorIs(t, redeemErr, repository.ErrNotFound)

		chats, subErr := repo.ChatsForUser(ctx, "user-3")
		require.NoError(t, subErr)
		assert.Equal(t, []int64{77}, chats)
	})

	t.Run("deleting a product cascades", func(t *testing.T) {
		require.NoError(t, repo.DeleteProduct(ctx, laptop.ID))
		require.ErrorIs(t, repo.DeleteProduct(ctx, laptop.ID), repository.ErrNotFound)

		entries, histErr := repo.ListHistory(ctx, laptop.ID)
		require.NoError(t, histErr)
		assert.Empty(t, entries)

		alerts, alertErr := repo.AlertsForProduct(ctx, laptop.ID)
		require.NoError(t, alertErr)
		assert.Empty(t, alerts)
	})
}
