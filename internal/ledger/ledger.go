// Package ledger is the owner-scoped persistent record of inventory
// quantities and sales transactions.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one ledger row. Items are keyed case-insensitively by name
// within an owner, created on first add and merged thereafter; they are
// never hard-deleted. Quantity never goes below zero.
type Item struct {
	OwnerID    string          `json:"owner_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   float64         `json:"quantity"`
	Unit       string          `json:"unit"`
	Category   string          `json:"category"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Sale is one immutable sales transaction.
type Sale struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	ItemName  string          `json:"item_name"`
	Quantity  float64         `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	SaleDate  time.Time       `json:"sale_date"`
}

// MergeResult reports what AddOrMerge did.
type MergeResult struct {
	Created  bool
	Quantity float64
}

// ErrItemNotFound reports a sale against an item the ledger has never
// seen.
var ErrItemNotFound = errors.New("item not found")

// InsufficientStockError reports a sale that would drive the quantity
// negative. The ledger is left unchanged.
type InsufficientStockError struct {
	ItemName  string
	Available float64
	Requested float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %g, want %g", e.ItemName, e.Available, e.Requested)
}

// itemKey is the case-insensitive identity of an item within an owner.
func itemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validateItem checks an incoming record before it touches the ledger.
// A failure rejects only this record.
func validateItem(name string, price decimal.Decimal, quantity float64) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("item name is required")
	}
	if !price.IsPositive() {
		return errors.New("price must be positive")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return errors.New("quantity must be a non-negative number")
	}
	return nil
}

func validateSale(name string, quantity float64, unitPrice decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("item name is required")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return errors.New("quantity must be a positive number")
	}
	if !unitPrice.IsPositive() {
		return errors.New("unit price must be positive")
	}
	return nil
}
