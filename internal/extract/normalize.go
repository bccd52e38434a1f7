package extract

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize turns a raw vision result into an ordered candidate list of
// the given kind plus a count of discarded malformed entries. It prefers
// the structured guess when one is present and falls back to parsing the
// raw text line by line. It never fails; all trouble shows up as a
// shorter list and a larger dropped count.
func Normalize(raw RawResult, kind Kind) ([]Candidate, int) {
	switch kind {
	case KindSales:
		if len(raw.Transactions) > 0 {
			return normalizeSaleGuesses(raw.Transactions)
		}
	default:
		if len(raw.Items) > 0 {
			return normalizeItemGuesses(raw.Items)
		}
	}
	return normalizeText(raw.RawText, kind)
}

func normalizeItemGuesses(guesses []ItemGuess) ([]Candidate, int) {
	candidates := make([]Candidate, 0, len(guesses))
	dropped := 0
	for _, g := range guesses {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			dropped++
			continue
		}
		price := decimalValue(g.Price)
		if !price.IsPositive() {
			dropped++
			continue
		}

		qty, ok := floatValue(g.Quantity)
		if !ok {
			qty = 1
		}
		unit := strings.TrimSpace(g.Unit)
		if unit == "" {
			unit = DefaultUnit
		}
		category := strings.TrimSpace(strings.ToLower(g.Category))
		if category == "" {
			category = InferCategory(name)
		}

		candidates = append(candidates, Candidate{
			Kind: KindInventory,
			Inventory: &InventoryCandidate{
				Name:     name,
				Quantity: qty,
				Unit:     unit,
				Price:    price,
				Category: category,
			},
		})
	}
	return candidates, dropped
}

func normalizeSaleGuesses(guesses []SaleGuess) ([]Candidate, int) {
	candidates := make([]Candidate, 0, len(guesses))
	dropped := 0
	for _, g := range guesses {
		name := strings.TrimSpace(g.Item)
		if name == "" {
			dropped++
			continue
		}
		price := decimalValue(g.Price)
		if !price.IsPositive() {
			dropped++
			continue
		}

		qty, ok := floatValue(g.Quantity)
		if !ok {
			qty = 1
		}

		candidates = append(candidates, Candidate{
			Kind: KindSales,
			Sale: &SaleCandidate{
				ItemName:  name,
				Quantity:  qty,
				UnitPrice: price,
			},
		})
	}
	return candidates, dropped
}

func normalizeText(text string, kind Kind) ([]Candidate, int) {
	var candidates []Candidate
	dropped := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cand, ok := ParseLine(line, kind)
		if !ok {
			dropped++
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, dropped
}

// floatValue coerces a loosely typed guess field to a number. Models
// return numbers, numeric strings, or garbage.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// decimalValue coerces a loosely typed guess field to a decimal,
// falling back to zero.
func decimalValue(v any) decimal.Decimal {
	f, ok := floatValue(v)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
