// Package vision wraps the external OCR capability that turns a photo
// of a handwritten or printed stock/sales list into text or a
// best-effort structured guess. The core never depends on which backend
// produced the result.
package vision

import (
	"context"

	"github.com/kitakits/stock-ledger/internal/extract"
)

// Extractor defines the consumed vision/OCR capability.
type Extractor interface {
	// Extract analyzes a photo and returns a structured guess, the raw
	// recognized text, or both. No retries happen here.
	Extract(ctx context.Context, image []byte, contentType string, kind extract.Kind) (extract.RawResult, error)
	// Close releases backend resources.
	Close() error
}

// inventoryPrompt asks for the stock-list schema the normalizer
// understands.
const inventoryPrompt = `You are reading a photo of a handwritten or printed stock list from a small store. Carefully read every line and extract the items.

Return ONLY valid JSON in this exact format:
{
  "items": [
    {"name": "Rice", "quantity": 20, "unit": "kg", "price": 45.00, "category": "staples"}
  ],
  "raw_text": "the full text you recognized, one item per line",
  "confidence": 0.9
}

Important:
- quantity and price must be numbers, not strings
- unit is one of: kg, g, L, ml, pcs, bottle, can, pack, unit; use "pcs" when unsure
- category is one of: staples, beverages, snacks, household, dairy, fresh, processed, general
- confidence is your overall reading confidence between 0.0 and 1.0
- If you cannot identify structured items, return an empty items array and put everything you can read into raw_text
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// salesPrompt asks for the sales-list schema.
const salesPrompt = `You are reading a photo of a handwritten or printed sales list from a small store. Each line records something that was sold: the item, how many, and a price or line total.

Return ONLY valid JSON in this exact format:
{
  "transactions": [
    {"item": "Rice", "quantity": 3, "price": 45.00}
  ],
  "raw_text": "the full text you recognized, one sale per line",
  "confidence": 0.9
}

Important:
- quantity and price must be numbers, not strings
- price is the unit price when you can tell, otherwise the line total
- confidence is your overall reading confidence between 0.0 and 1.0
- If you cannot identify structured transactions, return an empty transactions array and put everything you can read into raw_text
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

func promptFor(kind extract.Kind) string {
	if kind == extract.KindSales {
		return salesPrompt
	}
	return inventoryPrompt
}
