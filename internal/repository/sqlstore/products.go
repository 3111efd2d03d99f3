package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

const productColumns = "id, name, shop_id, current_price, url, category, created_at, updated_at"

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p        models.Product
		category sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.ShopID, &p.CurrentPrice, &p.URL, &category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = category.String

	return &p, nil
}

// GetProduct returns the product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const opn = "repository.sqlstore.GetProduct"

	return r.queryProduct(ctx, opn, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
}

// FindProductByName returns the oldest product of the shop whose name contains
// fragment, compared case-insensitively.
func (r *Repository) FindProductByName(ctx context.Context, shopID, fragment string) (*models.Product, error) {
	const opn = "repository.sqlstore.FindProductByName"

	return r.queryProduct(ctx, opn,
		"SELECT "+productColumns+" FROM products WHERE shop_id = ? AND LOWER(name) LIKE ? ESCAPE '\\' "+
			"ORDER BY created_at, id LIMIT 1",
		shopID, "%"+escapeLike(strings.ToLower(fragment))+"%",
	)
}

// FindProductByURL returns the oldest product of the shop listed at exactly url.
func (r *Repository) FindProductByURL(ctx context.Context, shopID, url string) (*models.Product, error) {
	const opn = "repository.sqlstore.FindProductByURL"

	return r.queryProduct(ctx, opn,
		"SELECT "+productColumns+" FROM products WHERE shop_id = ? AND url = ? ORDER BY created_at, id LIMIT 1",
		shopID, url,
	)
}

func (r *Repository) queryProduct(ctx context.Context, opn, query string, args ...any) (*models.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, r.q(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", opn, err)
	}

	return product, nil
}

// ListProducts returns all products, most recently updated first.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	const opn = "repository.sqlstore.ListProducts"

	return r.queryProducts(ctx, opn, "SELECT "+productColumns+" FROM products ORDER BY updated_at DESC, id")
}

// ListProductsByShop returns the products of one shop ordered by name.
func (r *Repository) ListProductsByShop(ctx context.Context, shopID string) ([]models.Product, error) {
	const opn = "repository.sqlstore.ListProductsByShop"

	return r.queryProducts(ctx, opn,
		"SELECT "+productColumns+" FROM products WHERE shop_id = ? ORDER BY name, id", shopID)
}

// ListProductsByCategory returns the products tagged with the category slug ordered by price.
func (r *Repository) ListProductsByCategory(ctx context.Context, slug string) ([]models.Product, error) {
	const opn = "repository.sqlstore.ListProductsByCategory"

	return r.queryProducts(ctx, opn,
		"SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY current_price, id", slug)
}

func (r *Repository) queryProducts(ctx context.Context, opn, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, scanErr)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return products, nil
}

// DeleteProduct removes a product together with its history and alerts.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	const opn = "repository.sqlstore.DeleteProduct"

	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return expectAffected(opn, res)
}

func expectAffected(opn string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
