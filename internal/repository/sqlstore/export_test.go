package sqlstore

import (
	"database/sql"
	"io"
	"log/slog"
)

// NewForTest wraps an existing handle, typically a sqlmock one.
func NewForTest(db *sql.DB, driver string) *Repository {
	dia, err := dialectFor(driver)
	if err != nil {
		panic(err)
	}

	return &Repository{db: db, log: slog.New(slog.NewTextHandler(io.Discard, nil)), dialect: dia}
}

// Rebind exposes placeholder rebinding.
func Rebind(driver, query string) string {
	dia, err := dialectFor(driver)
	if err != nil {
		panic(err)
	}

	return dia.rebind(query)
}
