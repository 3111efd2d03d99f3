package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
)

const alertColumns = "id, user_id, product_id, category_id, threshold, direction, created_at"

// CreateAlert stores a validated alert. ID and CreatedAt are filled in when empty.
func (r *Repository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	const opn = "repository.sqlstore.CreateAlert"

	if alert.ID == "" {
		alert.ID = newID()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		r.q("INSERT INTO alerts ("+alertColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		alert.ID, alert.UserID, nullString(alert.ProductID), nullString(alert.CategoryID),
		alert.Threshold, string(alert.Direction), alert.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// AlertsForProduct returns the alerts targeting one product.
func (r *Repository) AlertsForProduct(ctx context.Context, productID string) ([]models.Alert, error) {
	const opn = "repository.sqlstore.AlertsForProduct"

	return r.queryAlerts(ctx, opn, "SELECT "+alertColumns+" FROM alerts WHERE product_id = ? ORDER BY created_at, id",
		productID)
}

// AlertsForCategory returns the alerts targeting one category.
func (r *Repository) AlertsForCategory(ctx context.Context, categoryID string) ([]models.Alert, error) {
	const opn = "repository.sqlstore.AlertsForCategory"

	return r.queryAlerts(ctx, opn, "SELECT "+alertColumns+" FROM alerts WHERE category_id = ? ORDER BY created_at, id",
		categoryID)
}

// AlertsForUser returns the alerts owned by a user.
func (r *Repository) AlertsForUser(ctx context.Context, userID string) ([]models.Alert, error) {
	const opn = "repository.sqlstore.AlertsForUser"

	return r.queryAlerts(ctx, opn, "SELECT "+alertColumns+" FROM alerts WHERE user_id = ? ORDER BY created_at, id",
		userID)
}

// DeleteAlert removes an alert owned by the user.
func (r *Repository) DeleteAlert(ctx context.Context, userID, id string) error {
	const opn = "repository.sqlstore.DeleteAlert"

	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM alerts WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return expectAffected(opn, res)
}

func (r *Repository) queryAlerts(ctx context.Context, opn, query string, args ...any) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			a                     models.Alert
			productID, categoryID sql.NullString
			direction             string
		)
		err = rows.Scan(&a.ID, &a.UserID, &productID, &categoryID, &a.Threshold, &direction, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan alert: %w", opn, err)
		}
		a.ProductID = productID.String
		a.CategoryID = categoryID.String
		a.Direction = models.Direction(direction)
		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return alerts, nil
}
