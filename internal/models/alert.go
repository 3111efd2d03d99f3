package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAlertTarget       = errors.New("must specify either a product_id or category_id, but not both")
	ErrInvalidDirection  = errors.New("direction must be either 'up' or 'down'")
	ErrInvalidThreshold  = errors.New("threshold must be a non-negative amount")
	ErrMissingAlertOwner = errors.New("user must be authenticated to create an alert")
)

// Direction tells which side of the threshold fires an alert.
type Direction string

const (
	DirectionDown Direction = "down" // fire when observed price <= threshold
	DirectionUp   Direction = "up"   // fire when observed price >= threshold
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionDown || d == DirectionUp
}

// Alert is a user-owned price rule targeting exactly one product or one category.
type Alert struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ProductID  string          `json:"product_id,omitempty"`
	CategoryID string          `json:"category_id,omitempty"`
	Threshold  decimal.Decimal `json:"threshold"`
	Direction  Direction       `json:"direction"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Validate checks the creation invariants of an alert.
func (a Alert) Validate() error {
	if a.UserID == "" {
		return ErrMissingAlertOwner
	}
	if (a.ProductID == "") == (a.CategoryID == "") {
		return ErrAlertTarget
	}
	if !a.Direction.Valid() {
		return ErrInvalidDirection
	}
	if a.Threshold.IsNegative() {
		return ErrInvalidThreshold
	}

	return nil
}

// FiresOnDrop reports whether a down alert fires for the observed price.
func (a Alert) FiresOnDrop(observed decimal.Decimal) bool {
	return a.Direction == DirectionDown && observed.LessThanOrEqual(a.Threshold)
}
