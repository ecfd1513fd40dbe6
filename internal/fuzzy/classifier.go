// Package fuzzy assigns free-text stock item and group names to categories by
// keyword containment and, failing that, edit-distance similarity.
package fuzzy

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/cleared-dev/notewise/internal/rules"
)

// DefaultThreshold is the minimum similarity accepted by MatchCategory.
const DefaultThreshold = 0.6

// ContainsKeyword reports whether text contains any keyword, ignoring case.
func ContainsKeyword(text string, keywords rules.Keywords) bool {
	return keywords.Contains(text)
}

// Similarity returns 1 - editDistance/max(len(a), len(b)) over case-folded
// runes. Equal strings score 1; an empty string scores 0.
func Similarity(a, b string) float64 {
	a, b = rules.Fold(a), rules.Fold(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// Match is the outcome of MatchCategory.
type Match struct {
	Category string
	Keyword  string
	Score    float64 // 1 for containment hits
	Fuzzy    bool
}

// MatchCategory tries keyword containment across categories in order, then
// falls back to the best similarity between text and any keyword. ok is false
// when nothing reaches threshold.
func MatchCategory(text string, categories []rules.Category, threshold float64) (Match, bool) {
	for _, c := range categories {
		if kw, ok := c.Keywords.Find(text); ok {
			return Match{Category: c.Name, Keyword: kw, Score: 1}, true
		}
	}

	var best Match
	found := false
	for _, c := range categories {
		for _, kw := range c.Keywords {
			score := Similarity(text, kw)
			if score < threshold {
				continue
			}
			// Strictly greater keeps the earliest category on ties.
			if !found || score > best.Score {
				best = Match{Category: c.Name, Keyword: kw, Score: score, Fuzzy: true}
				found = true
			}
		}
	}
	return best, found
}

// Classifier classifies stock items against an injected table.
type Classifier struct {
	trading       string
	manufacturing []rules.Category
	threshold     float64
}

// NewClassifier copies table. A non-positive threshold selects DefaultThreshold.
func NewClassifier(table rules.StockTable, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		trading:       table.TradingCategory,
		manufacturing: rules.CloneCategories(table.Manufacturing),
		threshold:     threshold,
	}
}

// MatchCategory runs the package-level MatchCategory with the classifier's threshold.
func (c *Classifier) MatchCategory(text string, categories []rules.Category) (Match, bool) {
	return MatchCategory(text, categories, c.threshold)
}

// ClassifyStockItem returns the inventory category for an item. Trading
// businesses always get the trading category. Manufacturing businesses try the
// stock group first, then the item name. Anything else is Unclassified so it
// surfaces for manual review.
func (c *Classifier) ClassifyStockItem(itemName, stockGroup, businessType string) string {
	switch businessType {
	case rules.Trading:
		return c.trading
	case rules.Manufacturing:
		for _, text := range []string{stockGroup, itemName} {
			if text == "" {
				continue
			}
			if m, ok := c.MatchCategory(text, c.manufacturing); ok {
				return m.Category
			}
		}
		return rules.Unclassified
	default:
		return rules.Unclassified
	}
}
