package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
)

// ErrUnknownDriver is returned for storage drivers other than sqlite and postgres.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Repository is the relational store of shops, products, price history,
// categories, alerts and chat subscriptions. One implementation serves
// both SQLite and PostgreSQL; queries are written with '?' placeholders
// and rebound for the active dialect.
type Repository struct {
	db      *sql.DB
	log     *slog.Logger
	dialect dialect
}

// NewRepository opens the database for the given driver ("sqlite" or "postgres"),
// checks the connection and applies the schema.
func NewRepository(ctx context.Context, log *slog.Logger, driver, dsn string) (*Repository, error) {
	dia, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	dtb, err := sql.Open(dia.driverName, dia.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if dia.singleWriter {
		// SQLite serialises writers; a single connection avoids "database is locked".
		dtb.SetMaxOpenConns(1)
	}

	if err = dtb.PingContext(ctx); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	if err = initSchema(ctx, dtb, dia); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	return &Repository{db: dtb, log: log, dialect: dia}, nil
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB, dia dialect) error {
	for _, stmt := range strings.Split(dia.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := dtb.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

// SeedCategories inserts the given categories, leaving existing slugs untouched.
func (r *Repository) SeedCategories(ctx context.Context, categories []models.Category) error {
	const opn = "repository.sqlstore.SeedCategories"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx is the usual name for a transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a commit

	query := r.q("INSERT INTO product_categories (id, name, slug) VALUES (?, ?, ?) ON CONFLICT (slug) DO NOTHING")
	for _, c := range categories {
		if c.ID == "" {
			c.ID = newID()
		}
		if _, err = tx.ExecContext(ctx, query, c.ID, c.Name, c.Slug); err != nil {
			return fmt.Errorf("%s: failed to insert category %s: %w", opn, c.Slug, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlstore.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Driver reports the dialect the repository was opened with.
func (r *Repository) Driver() string {
	return r.dialect.name
}

// q rebinds a query for the active dialect.
func (r *Repository) q(query string) string {
	return r.dialect.rebind(query)
}
