package extract

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind selects which record shape a line or guess is parsed into.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindSales     Kind = "sales"
)

// InventoryCandidate is a stock-list entry awaiting confirmation.
type InventoryCandidate struct {
	Name     string
	Quantity float64
	Unit     string
	Price    decimal.Decimal
	Category string
}

// SaleCandidate is a sales-list entry awaiting confirmation.
type SaleCandidate struct {
	ItemName  string
	Quantity  float64
	UnitPrice decimal.Decimal
}

// Candidate is a parsed-but-unconfirmed record. Exactly one of Inventory
// or Sale is set, matching Kind.
type Candidate struct {
	Kind      Kind
	Inventory *InventoryCandidate
	Sale      *SaleCandidate
}

// Describe renders a candidate as a single display line.
func (c Candidate) Describe() string {
	switch c.Kind {
	case KindInventory:
		inv := c.Inventory
		return fmt.Sprintf("%s - %s %s @ %s (%s)",
			inv.Name, trimFloat(inv.Quantity), inv.Unit, inv.Price.StringFixed(2), inv.Category)
	case KindSales:
		s := c.Sale
		total := s.UnitPrice.Mul(decimal.NewFromFloat(s.Quantity))
		return fmt.Sprintf("%s - %s sold @ %s = %s",
			s.ItemName, trimFloat(s.Quantity), s.UnitPrice.StringFixed(2), total.StringFixed(2))
	}
	return ""
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// ItemGuess is one inventory entry of a structured vision guess. Quantity
// and Price are loosely typed because models return numbers and strings
// interchangeably.
type ItemGuess struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity"`
	Unit     string `json:"unit"`
	Price    any    `json:"price"`
	Category string `json:"category"`
}

// SaleGuess is one sales entry of a structured vision guess.
type SaleGuess struct {
	Item     string `json:"item"`
	Quantity any    `json:"quantity"`
	Price    any    `json:"price"`
}

// RawResult is the boundary payload returned by the vision capability:
// a best-effort structured guess, the raw recognized text, or both.
type RawResult struct {
	Items        []ItemGuess `json:"items"`
	Transactions []SaleGuess `json:"transactions"`
	RawText      string      `json:"raw_text"`
	Confidence   float64     `json:"confidence"`
}
