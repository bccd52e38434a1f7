package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Currency markers are stripped before any numeric matching. A bare
	// "P" only counts when glued to a digit ("P45"); the digit is captured
	// and restored by the replacement since RE2 has no lookahead.
	currencyPattern  = regexp.MustCompile(`(?i)(?:₱|php\s*|\$|\bp(\d))`)
	thousandsPattern = regexp.MustCompile(`(\d),(\d{3})\b`)

	// Indicator words on sales lines; stripped so they never leak into
	// the captured item name.
	soldPattern = regexp.MustCompile(`(?i)\b(?:sold|sales|sale|nabenta|naibenta|benta)\b[:\s]*`)

	spacePattern = regexp.MustCompile(`\s+`)
)

// Inventory patterns, tried in order; first match wins.
//
// The primary form is the one taught to users: "Rice 45 20kg" means
// name, price, quantity+unit. The fallback tolerates @ x - = separators
// with the alternate order "name quantity+unit <sep> price".
var inventoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)\s*[A-Za-z]*$`),
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*[A-Za-z]*\s*[@xX=-]\s*(\d+(?:\.\d+)?)$`),
}

// Sales patterns capture name, quantity(+unit) and a single numeric
// value that may be either a unit price or a line total.
var salesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*[A-Za-z]*\s+(\d+(?:\.\d+)?)$`),
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*[A-Za-z]*\s*[@xX=-]\s*(\d+(?:\.\d+)?)$`),
}

// ParseLine converts one text line into a candidate of the given kind.
// It reports false for lines no pattern accepts.
func ParseLine(line string, kind Kind) (Candidate, bool) {
	cleaned := cleanLine(line, kind)
	if cleaned == "" {
		return Candidate{}, false
	}

	switch kind {
	case KindSales:
		return parseSalesLine(cleaned)
	default:
		return parseInventoryLine(cleaned, line)
	}
}

// cleanLine strips currency markers, digit-group commas and, for sales
// lines, the sold-indicator keywords.
func cleanLine(line string, kind Kind) string {
	s := currencyPattern.ReplaceAllString(line, "$1")
	s = thousandsPattern.ReplaceAllString(s, "$1$2")
	if kind == KindSales {
		s = soldPattern.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func parseInventoryLine(cleaned, raw string) (Candidate, bool) {
	for i, pattern := range inventoryPatterns {
		m := pattern.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		var priceStr, qtyStr string
		if i == 0 {
			priceStr, qtyStr = m[2], m[3]
		} else {
			qtyStr, priceStr = m[2], m[3]
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil || name == "" || !price.IsPositive() {
			continue
		}
		qty, err := strconv.ParseFloat(qtyStr, 64)
		if err != nil {
			continue
		}

		unit := InferUnit(raw)
		return Candidate{
			Kind: KindInventory,
			Inventory: &InventoryCandidate{
				Name:     name,
				Quantity: qty,
				Unit:     unit,
				Price:    price,
				Category: InferCategory(name),
			},
		}, true
	}
	return Candidate{}, false
}

func parseSalesLine(cleaned string) (Candidate, bool) {
	for _, pattern := range salesPatterns {
		m := pattern.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		value, err := decimal.NewFromString(m[3])
		if err != nil || name == "" || !value.IsPositive() {
			continue
		}
		qty, err := strconv.ParseFloat(m[2], 64)
		if err != nil || qty <= 0 {
			continue
		}

		return Candidate{
			Kind: KindSales,
			Sale: &SaleCandidate{
				ItemName:  name,
				Quantity:  qty,
				UnitPrice: resolveUnitPrice(qty, value),
			},
		}, true
	}
	return Candidate{}, false
}

// resolveUnitPrice disambiguates the captured numeric value on a sales
// line: a value exceeding quantity*100 is a line total, so the unit
// price is recovered as value/quantity. Otherwise the value already is
// the unit price.
func resolveUnitPrice(qty float64, value decimal.Decimal) decimal.Decimal {
	qtyDec := decimal.NewFromFloat(qty)
	if value.GreaterThan(qtyDec.Mul(decimal.NewFromInt(100))) {
		return value.Div(qtyDec)
	}
	return value
}
