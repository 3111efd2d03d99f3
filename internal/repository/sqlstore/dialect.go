package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteDriverName is go-sqlite3 with a Unicode-aware LOWER. The built-in one folds ASCII only,
// so "Écran" would never match its own lowercased fragment.
const sqliteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type dialect struct {
	name         string
	driverName   string
	schema       string
	numbered     bool // $1, $2 ... placeholders
	singleWriter bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite, "sqlite3":
		return dialect{
			name:         DriverSQLite,
			driverName:   sqliteDriverName,
			schema:       sqliteSchema,
			singleWriter: true,
		}, nil
	case DriverPostgres, "pgx":
		return dialect{
			name:       DriverPostgres,
			driverName: "pgx",
			schema:     postgresSchema,
			numbered:   true,
		}, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// dsn turns on foreign keys for SQLite paths; postgres DSNs pass through.
func (d dialect) dsn(raw string) string {
	if d.name != DriverSQLite || strings.Contains(raw, "_foreign_keys") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}

	return raw + sep + "_foreign_keys=on"
}

// rebind replaces '?' placeholders with $n when the dialect needs it.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func newID() string {
	return uuid.NewString()
}

// isUniqueViolation reports whether err is a unique constraint failure of either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return false
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS shops (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	base_url TEXT NOT NULL DEFAULT '',
	user_id TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS product_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
	current_price NUMERIC NOT NULL CHECK (current_price >= 0),
	url TEXT NOT NULL,
	category TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_shop ON products (shop_id);

CREATE TABLE IF NOT EXISTS price_history (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	price NUMERIC NOT NULL CHECK (price >= 0),
	checked_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history (product_id, checked_at);
CREATE INDEX IF NOT EXISTS idx_price_history_checked ON price_history (checked_at);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT REFERENCES products(id) ON DELETE CASCADE,
	category_id TEXT REFERENCES product_categories(id) ON DELETE CASCADE,
	threshold NUMERIC NOT NULL CHECK (threshold >= 0),
	direction TEXT NOT NULL CHECK (direction IN ('up', 'down')),
	created_at TIMESTAMP NOT NULL,
	CHECK ((product_id IS NULL) <> (category_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts (user_id);

CREATE TABLE IF NOT EXISTS chat_subscriptions (
	chat_id INTEGER NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (chat_id, user_id)
);

CREATE TABLE IF NOT EXISTS chat_link_codes (
	code TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS shops (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	base_url TEXT NOT NULL DEFAULT '',
	user_id TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS product_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
	current_price NUMERIC NOT NULL CHECK (current_price >= 0),
	url TEXT NOT NULL,
	category TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_shop ON products (shop_id);

CREATE TABLE IF NOT EXISTS price_history (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	price NUMERIC NOT NULL CHECK (price >= 0),
	checked_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history (product_id, checked_at);
CREATE INDEX IF NOT EXISTS idx_price_history_checked ON price_history (checked_at);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT REFERENCES products(id) ON DELETE CASCADE,
	category_id TEXT REFERENCES product_categories(id) ON DELETE CASCADE,
	threshold NUMERIC NOT NULL CHECK (threshold >= 0),
	direction TEXT NOT NULL CHECK (direction IN ('up', 'down')),
	created_at TIMESTAMPTZ NOT NULL,
	CHECK ((product_id IS NULL) <> (category_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts (user_id);

CREATE TABLE IF NOT EXISTS chat_subscriptions (
	chat_id BIGINT NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (chat_id, user_id)
);

CREATE TABLE IF NOT EXISTS chat_link_codes (
	code TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
`
