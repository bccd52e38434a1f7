package vision

import (
	"encoding/json"
	"strings"

	"github.com/kitakits/stock-ledger/internal/extract"
)

// defaultConfidence is assumed when the model omits its own estimate.
const defaultConfidence = 0.5

// parseExtraction turns a model response into a RawResult. A response
// that is not the expected JSON is not an error: the whole text becomes
// RawText and the line parser takes over downstream.
func parseExtraction(text string) extract.RawResult {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	fallback := extract.RawResult{
		RawText:    cleaned,
		Confidence: defaultConfidence,
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return fallback
	}

	var result extract.RawResult
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err != nil {
		return fallback
	}

	if result.Confidence <= 0 {
		result.Confidence = defaultConfidence
	}
	return result
}
