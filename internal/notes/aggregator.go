// Package notes rolls classified ledgers up into financial-statement notes.
package notes

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/notewise/internal/model"
	"github.com/cleared-dev/notewise/internal/rules"
)

// LedgerItem is one contributing ledger in a note's drill-down.
type LedgerItem struct {
	Ledger   string
	Group    string
	Opening  decimal.Decimal
	Closing  decimal.Decimal
	Trail    string
	Category string // empty when the note has no vocabulary
}

// Result holds note totals and their drill-down. A note key is present in
// Values only if it has at least one ledger in Ledgers; the same holds for
// each category in Categories.
type Result struct {
	Values     map[string]decimal.Decimal
	Ledgers    map[string][]LedgerItem
	Categories map[string]map[string]decimal.Decimal
}

// Keys returns the note keys in sorted order.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Aggregator assigns ledgers to notes and sums them.
type Aggregator struct {
	mappings []rules.NoteMapping
	vocab    map[string][]rules.Category
	fallback model.Level
}

// NewAggregator copies the mapping and vocabulary tables. Ledgers matching no
// mapping use their label at fallback (H3 when zero) as the note key.
func NewAggregator(mappings []rules.NoteMapping, vocabulary []rules.NoteVocabulary, fallback model.Level) *Aggregator {
	if fallback == 0 {
		fallback = model.H3
	}
	a := &Aggregator{
		mappings: make([]rules.NoteMapping, len(mappings)),
		vocab:    make(map[string][]rules.Category, len(vocabulary)),
		fallback: fallback,
	}
	for i, m := range mappings {
		m.NameKeywords = slices.Clone(m.NameKeywords)
		a.mappings[i] = m
	}
	for _, v := range vocabulary {
		a.vocab[rules.Fold(v.Note)] = rules.CloneCategories(v.Categories)
	}
	return a
}

// NoteFor returns the note key for row. The first matching mapping wins.
func (a *Aggregator) NoteFor(row model.LedgerRow) string {
	for _, m := range a.mappings {
		if matches(m, row) {
			return m.Note
		}
	}
	if label := strings.TrimSpace(row.Hierarchy.At(a.fallback)); label != "" {
		return label
	}
	return rules.NotMapped
}

func matches(m rules.NoteMapping, row model.LedgerRow) bool {
	if m.Label != "" && rules.Fold(row.Hierarchy.At(m.Level)) != rules.Fold(m.Label) {
		return false
	}
	if len(m.NameKeywords) > 0 && !m.NameKeywords.Contains(row.Name) {
		return false
	}
	return m.Label != "" || len(m.NameKeywords) > 0
}

// CategoryFor splits a ledger within note by ordered name matching. Ledgers
// matching no category fall into rules.Other. Notes without a vocabulary
// return "".
func (a *Aggregator) CategoryFor(note, ledgerName string) string {
	cats, ok := a.vocab[rules.Fold(note)]
	if !ok {
		return ""
	}
	for _, c := range cats {
		if c.Keywords.Contains(ledgerName) {
			return c.Name
		}
	}
	return rules.Other
}

// Aggregate sums |closing| per note. Rows failing LedgerRow.Validate are
// ignored; run ledger.FilterClassified first to see and log them.
func (a *Aggregator) Aggregate(rows []model.LedgerRow) Result {
	res := Result{
		Values:     map[string]decimal.Decimal{},
		Ledgers:    map[string][]LedgerItem{},
		Categories: map[string]map[string]decimal.Decimal{},
	}
	for _, row := range rows {
		if row.Validate() != nil {
			continue
		}
		note := a.NoteFor(row)
		item := LedgerItem{
			Ledger:   row.Name,
			Group:    row.ParentGroup,
			Opening:  row.Opening,
			Closing:  row.Closing,
			Trail:    row.Hierarchy.Trail(),
			Category: a.CategoryFor(note, row.Name),
		}
		if item.Group == "" {
			item.Group = row.PrimaryGroup
		}
		amount := row.Closing.Abs()

		res.Ledgers[note] = append(res.Ledgers[note], item)
		res.Values[note] = res.Values[note].Add(amount)
		if item.Category != "" {
			cats := res.Categories[note]
			if cats == nil {
				cats = map[string]decimal.Decimal{}
				res.Categories[note] = cats
			}
			cats[item.Category] = cats[item.Category].Add(amount)
		}
	}
	return res
}
