package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

const shopColumns = "id, name, base_url, user_id, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanShop(row scanner) (*models.Shop, error) {
	var (
		shop  models.Shop
		owner sql.NullString
	)
	if err := row.Scan(&shop.ID, &shop.Name, &shop.BaseURL, &owner, &shop.CreatedAt); err != nil {
		return nil, err
	}
	shop.OwnerID = owner.String

	return &shop, nil
}

// GetShopByName returns the shop with the exact name.
func (r *Repository) GetShopByName(ctx context.Context, name string) (*models.Shop, error) {
	const opn = "repository.sqlstore.GetShopByName"

	row := r.db.QueryRowContext(ctx, r.q("SELECT "+shopColumns+" FROM shops WHERE name = ?"), name)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to get shop: %w", opn, err)
	}

	return shop, nil
}

// GetShop returns the shop by id.
func (r *Repository) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	const opn = "repository.sqlstore.GetShop"

	row := r.db.QueryRowContext(ctx, r.q("SELECT "+shopColumns+" FROM shops WHERE id = ?"), id)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to get shop: %w", opn, err)
	}

	return shop, nil
}

// CreateShop inserts a new shop. ID and CreatedAt are filled in when empty.
func (r *Repository) CreateShop(ctx context.Context, shop *models.Shop) error {
	const opn = "repository.sqlstore.CreateShop"

	if shop.ID == "" {
		shop.ID = newID()
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		r.q("INSERT INTO shops ("+shopColumns+") VALUES (?, ?, ?, ?, ?)"),
		shop.ID, shop.Name, shop.BaseURL, nullString(shop.OwnerID), shop.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: shop %q: %w", opn, shop.Name, repository.ErrConflict)
		}
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// EnsureShop returns the shop with the given name, creating it with baseURL when absent.
// Concurrent callers converge on the same row through the unique name constraint.
func (r *Repository) EnsureShop(ctx context.Context, name, baseURL string) (*models.Shop, error) {
	const opn = "repository.sqlstore.EnsureShop"

	_, err := r.db.ExecContext(ctx,
		r.q("INSERT INTO shops ("+shopColumns+") VALUES (?, ?, ?, NULL, ?) ON CONFLICT (name) DO NOTHING"),
		newID(), name, baseURL, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to insert shop: %w", opn, err)
	}

	shop, err := r.GetShopByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return shop, nil
}

// ListShops returns all shops ordered by name.
func (r *Repository) ListShops(ctx context.Context) ([]models.Shop, error) {
	const opn = "repository.sqlstore.ListShops"

	rows, err := r.db.QueryContext(ctx, "SELECT "+shopColumns+" FROM shops ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		shop, scanErr := scanShop(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: failed to scan shop: %w", opn, scanErr)
		}
		shops = append(shops, *shop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return shops, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
