package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

// ListCategories returns all categories ordered by slug.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	const opn = "repository.sqlstore.ListCategories"

	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug FROM product_categories ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("%s: failed to scan category: %w", opn, err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return categories, nil
}

// GetCategoryBySlug returns the category with the given slug.
func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	const opn = "repository.sqlstore.GetCategoryBySlug"

	var c models.Category
	err := r.db.QueryRowContext(ctx, r.q("SELECT id, name, slug FROM product_categories WHERE slug = ?"), slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return &c, nil
}

// GetCategory returns the category by id.
func (r *Repository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	const opn = "repository.sqlstore.GetCategory"

	var c models.Category
	err := r.db.QueryRowContext(ctx, r.q("SELECT id, name, slug FROM product_categories WHERE id = ?"), id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return &c, nil
}
