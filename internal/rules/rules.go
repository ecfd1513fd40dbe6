// Package rules holds the keyword and category tables that drive
// classification. Tables are plain values: components copy what they need at
// construction and never consult package state.
package rules

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/cleared-dev/notewise/internal/model"
)

// Keywords is an ordered keyword list. Matching is case-insensitive.
type Keywords []string

// shortWord is the longest keyword that must match a whole word; "od" should
// hit "Bank OD A/c" but not "Goods".
const shortWord = 3

// Fold case-folds s for comparison.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Find returns the first keyword contained in text.
func (k Keywords) Find(text string) (string, bool) {
	folded := Fold(text)
	if folded == "" {
		return "", false
	}
	for _, kw := range k {
		if containsFolded(folded, Fold(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Contains reports whether any keyword is contained in text.
func (k Keywords) Contains(text string) bool {
	_, ok := k.Find(text)
	return ok
}

func containsFolded(text, kw string) bool {
	if kw == "" {
		return false
	}
	if utf8.RuneCountInString(kw) > shortWord || !isWord(kw) {
		return strings.Contains(text, kw)
	}
	for i := 0; ; {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(kw)
		if boundary(text, start-1, true) && boundary(text, end, false) {
			return true
		}
		i = start + 1
	}
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// boundary reports whether the rune adjacent to position i is a non-word rune
// (or i is outside text).
func boundary(text string, i int, before bool) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(text[:i+1])
	} else {
		r, _ = utf8.DecodeRuneInString(text[i:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// SignTable drives natural-side inference.
type SignTable struct {
	DrFace  Keywords `yaml:"dr_face"`
	CrFace  Keywords `yaml:"cr_face"`
	DrGroup Keywords `yaml:"dr_group"`
	CrGroup Keywords `yaml:"cr_group"`
}

// Category is a named keyword bucket.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords Keywords `yaml:"keywords"`
}

// StockTable classifies inventory items by business type.
type StockTable struct {
	TradingCategory string     `yaml:"trading_category"`
	Manufacturing   []Category `yaml:"manufacturing"`
}

// SignCondition gates a reclassification rule on the raw balance sign.
type SignCondition string

const (
	WhenPositive SignCondition = "positive"
	WhenNegative SignCondition = "negative"
)

// ReclassRule moves a ledger to another area when its group text matches
// Include (and not Exclude) and its balance satisfies When.
type ReclassRule struct {
	Name    string        `yaml:"name"`
	Include Keywords      `yaml:"include"`
	Exclude Keywords      `yaml:"exclude,omitempty"`
	When    SignCondition `yaml:"when"`
	Area    string        `yaml:"area"`
	AILE    model.AILE    `yaml:"aile"`
	Face    string        `yaml:"face"`
	Reason  string        `yaml:"reason"`
}

// NoteMapping routes a ledger to a note key. Label matches the hierarchy
// label at Level; NameKeywords match the ledger name. When both are set both
// must match.
type NoteMapping struct {
	Note         string      `yaml:"note"`
	Level        model.Level `yaml:"level,omitempty"`
	Label        string      `yaml:"label,omitempty"`
	NameKeywords Keywords    `yaml:"name_keywords,omitempty"`
}

// NoteVocabulary splits a note into ordered categories by ledger name.
type NoteVocabulary struct {
	Note       string     `yaml:"note"`
	Categories []Category `yaml:"categories"`
}

// Set bundles every table.
type Set struct {
	Signs      SignTable        `yaml:"signs"`
	Stock      StockTable       `yaml:"stock"`
	Reclass    []ReclassRule    `yaml:"reclass"`
	Notes      []NoteMapping    `yaml:"notes"`
	Vocabulary []NoteVocabulary `yaml:"vocabulary"`
}

// Clone returns a deep copy so callers can hold tables that nobody else can
// mutate.
func (s Set) Clone() Set {
	out := Set{
		Signs: SignTable{
			DrFace:  slices.Clone(s.Signs.DrFace),
			CrFace:  slices.Clone(s.Signs.CrFace),
			DrGroup: slices.Clone(s.Signs.DrGroup),
			CrGroup: slices.Clone(s.Signs.CrGroup),
		},
		Stock: StockTable{
			TradingCategory: s.Stock.TradingCategory,
			Manufacturing:   CloneCategories(s.Stock.Manufacturing),
		},
		Reclass: CloneReclass(s.Reclass),
		Notes:   make([]NoteMapping, len(s.Notes)),
	}
	for i, m := range s.Notes {
		m.NameKeywords = slices.Clone(m.NameKeywords)
		out.Notes[i] = m
	}
	out.Vocabulary = make([]NoteVocabulary, len(s.Vocabulary))
	for i, v := range s.Vocabulary {
		out.Vocabulary[i] = NoteVocabulary{Note: v.Note, Categories: CloneCategories(v.Categories)}
	}
	return out
}

// CloneCategories deep-copies a category list.
func CloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Name: c.Name, Keywords: slices.Clone(c.Keywords)}
	}
	return out
}

// CloneReclass deep-copies a rule list.
func CloneReclass(rs []ReclassRule) []ReclassRule {
	out := make([]ReclassRule, len(rs))
	for i, r := range rs {
		r.Include = slices.Clone(r.Include)
		r.Exclude = slices.Clone(r.Exclude)
		out[i] = r
	}
	return out
}
