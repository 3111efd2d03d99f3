package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop is a store whose listings are tracked. Name is the natural key used by the scraper.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	OwnerID   string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a tracked item of one shop.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ShopID       string          `json:"shop_id"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	URL          string          `json:"url"`
	Category     string          `json:"category,omitempty"` // Category is a category slug, empty when unknown.
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasCategory reports whether a category slug was assigned.
func (p Product) HasCategory() bool {
	return p.Category != ""
}

// Category groups products by a stable slug.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Candidate is a product extracted from markup before it is reconciled.
type Candidate struct {
	Name  string
	Price decimal.Decimal
	URL   string
}
