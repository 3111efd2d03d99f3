package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryEntry is one observed price. Entries are append-only.
type PriceHistoryEntry struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	CheckedAt time.Time       `json:"checked_at"`
}

// RecentChange is a history entry joined with the current state of its product.
type RecentChange struct {
	Entry   PriceHistoryEntry
	Product Product
}
