package extract

import (
	"regexp"
	"strings"
)

const (
	DefaultUnit     = "pcs"
	DefaultCategory = "general"
)

type unitRule struct {
	pattern   *regexp.Regexp
	canonical string
}

// Unit vocabulary, scanned in order against the raw line; first match
// wins. A unit token counts when it follows a digit, whitespace or the
// start of the line, so "sugar" never matches "g".
var unitRules = []unitRule{
	{regexp.MustCompile(`(?i)(?:^|[\s\d])kgs?\b`), "kg"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])g\b`), "g"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])l\b`), "L"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])ml\b`), "ml"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])(?:pcs?|pieces?)\b`), "pcs"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])bottles?\b`), "bottle"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])cans?\b`), "can"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])packs?\b`), "pack"},
	{regexp.MustCompile(`(?i)(?:^|[\s\d])units?\b`), "unit"},
}

type categoryRule struct {
	name     string
	keywords []string
}

// Category table, scanned in order against the item name; the first
// category with a matching keyword wins, so table order decides
// tie-breaks. Keywords cover both English and Tagalog spellings.
var categoryRules = []categoryRule{
	{"staples", []string{"rice", "bigas", "sugar", "asukal", "flour", "harina", "salt", "asin", "oil", "mantika", "noodle", "pasta", "bread", "tinapay"}},
	{"beverages", []string{"water", "tubig", "juice", "soda", "softdrink", "coke", "sprite", "royal", "coffee", "kape", "tea", "beer"}},
	{"snacks", []string{"chips", "biscuit", "cookie", "candy", "chocolate", "chichirya", "cracker"}},
	{"household", []string{"soap", "sabon", "shampoo", "detergent", "bleach", "zonrox", "toothpaste", "tissue", "alcohol", "candle", "battery", "matches"}},
	{"dairy", []string{"milk", "gatas", "cheese", "keso", "butter", "yogurt"}},
	{"fresh", []string{"egg", "itlog", "vegetable", "gulay", "fruit", "prutas", "fish", "isda", "meat", "karne", "chicken", "manok", "onion", "sibuyas", "garlic", "bawang", "tomato", "kamatis"}},
	{"processed", []string{"sardines", "corned beef", "spam", "tocino", "hotdog", "longganisa", "canned"}},
}

// InferUnit scans a raw line for a unit token and returns its canonical
// form, defaulting to "pcs".
func InferUnit(line string) string {
	for _, rule := range unitRules {
		if rule.pattern.MatchString(line) {
			return rule.canonical
		}
	}
	return DefaultUnit
}

// InferCategory maps an item name to a category keyword table entry,
// defaulting to "general".
func InferCategory(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return DefaultCategory
}
