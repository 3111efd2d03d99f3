package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/shopspring/decimal"
)

const historyColumns = "id, product_id, price, checked_at"

func scanEntry(row scanner) (*models.PriceHistoryEntry, error) {
	var e models.PriceHistoryEntry
	if err := row.Scan(&e.ID, &e.ProductID, &e.Price, &e.CheckedAt); err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateProduct inserts a product and its first history entry in one transaction.
// ID and timestamps are filled in from checkedAt when empty.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product, checkedAt time.Time) error {
	const opn = "repository.sqlstore.CreateProduct"

	checkedAt = checkedAt.UTC()
	if product.ID == "" {
		product.ID = newID()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = checkedAt
	}
	product.UpdatedAt = checkedAt

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx is the usual name for a transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a commit

	_, err = tx.ExecContext(ctx,
		r.q("INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		product.ID, product.Name, product.ShopID, product.CurrentPrice, product.URL,
		nullString(product.Category), product.CreatedAt.UTC(), product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert product %q: %w", opn, product.Name, err)
	}

	if err = r.insertEntry(ctx, tx, product.ID, product.CurrentPrice, checkedAt); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// RecordPriceChange sets the product's current price, backfills its category when
// it has none, and appends a history entry, all in one transaction.
func (r *Repository) RecordPriceChange(
	ctx context.Context, productID string, price decimal.Decimal, category string, checkedAt time.Time,
) error {
	const opn = "repository.sqlstore.RecordPriceChange"

	checkedAt = checkedAt.UTC()

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx is the usual name for a transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a commit

	res, err := tx.ExecContext(ctx,
		r.q("UPDATE products SET current_price = ?, category = COALESCE(category, ?), updated_at = ? WHERE id = ?"),
		price, nullString(category), checkedAt, productID,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to update product: %w", opn, err)
	}
	if err = expectAffected(opn, res); err != nil {
		return err
	}

	if err = r.insertEntry(ctx, tx, productID, price, checkedAt); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// BackfillCategory tags an uncategorized product. It writes no history.
func (r *Repository) BackfillCategory(ctx context.Context, productID, category string, at time.Time) error {
	const opn = "repository.sqlstore.BackfillCategory"

	_, err := r.db.ExecContext(ctx,
		r.q("UPDATE products SET category = ?, updated_at = ? WHERE id = ? AND category IS NULL"),
		category, at.UTC(), productID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

func (r *Repository) insertEntry(
	ctx context.Context, tx *sql.Tx, productID string, price decimal.Decimal, checkedAt time.Time,
) error {
	_, err := tx.ExecContext(ctx,
		r.q("INSERT INTO price_history ("+historyColumns+") VALUES (?, ?, ?, ?)"),
		newID(), productID, price, checkedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price history: %w", err)
	}

	return nil
}

// RecentChanges returns the history entries checked after since, newest first,
// each joined with the current state of its product.
func (r *Repository) RecentChanges(ctx context.Context, since time.Time) ([]models.RecentChange, error) {
	const opn = "repository.sqlstore.RecentChanges"

	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT h.id, h.product_id, h.price, h.checked_at,
			p.id, p.name, p.shop_id, p.current_price, p.url, p.category, p.created_at, p.updated_at
		FROM price_history h
		JOIN products p ON p.id = h.product_id
		WHERE h.checked_at > ?
		ORDER BY h.checked_at DESC, h.id`), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var changes []models.RecentChange
	for rows.Next() {
		var (
			c        models.RecentChange
			category sql.NullString
		)
		err = rows.Scan(
			&c.Entry.ID, &c.Entry.ProductID, &c.Entry.Price, &c.Entry.CheckedAt,
			&c.Product.ID, &c.Product.Name, &c.Product.ShopID, &c.Product.CurrentPrice,
			&c.Product.URL, &category, &c.Product.CreatedAt, &c.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan change: %w", opn, err)
		}
		c.Product.Category = category.String
		changes = append(changes, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return changes, nil
}

// PreviousEntry returns the latest entry of the product checked strictly before the given time.
func (r *Repository) PreviousEntry(
	ctx context.Context, productID string, before time.Time,
) (*models.PriceHistoryEntry, error) {
	const opn = "repository.sqlstore.PreviousEntry"

	row := r.db.QueryRowContext(ctx,
		r.q("SELECT "+historyColumns+" FROM price_history WHERE product_id = ? AND checked_at < ? "+
			"ORDER BY checked_at DESC, id LIMIT 1"),
		productID, before.UTC(),
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return entry, nil
}

// ListHistory returns the price history of a product, newest first.
func (r *Repository) ListHistory(ctx context.Context, productID string) ([]models.PriceHistoryEntry, error) {
	const opn = "repository.sqlstore.ListHistory"

	rows, err := r.db.QueryContext(ctx,
		r.q("SELECT "+historyColumns+" FROM price_history WHERE product_id = ? ORDER BY checked_at DESC, id"),
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var entries []models.PriceHistoryEntry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: failed to scan entry: %w", opn, scanErr)
		}
		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return entries, nil
}
