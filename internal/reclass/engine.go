// Package reclass moves ledgers whose balance sign contradicts their nominal
// category into the area they should be presented under.
package reclass

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/notewise/internal/model"
	"github.com/cleared-dev/notewise/internal/rules"
)

// Result describes one ledger's before/after decision. It never aliases the
// source row.
type Result struct {
	Ledger       string
	OriginalArea string
	NewArea      string
	OriginalAILE model.AILE
	NewAILE      model.AILE
	NewFace      string
	Reclassified bool
	Rule         string
	Reason       string
	// Fired lists every rule whose keyword and sign conditions held, in
	// table order. More than one entry means the table has overlapping rules.
	Fired []string
}

// Line is one row of the reclassification disclosure.
type Line struct {
	Ledger   string
	Original string
	New      string
	Reason   string
	Amount   decimal.Decimal
}

// Engine applies an ordered rule table.
type Engine struct {
	rules []rules.ReclassRule
}

// NewEngine builds an Engine over its own copy of rs.
func NewEngine(rs []rules.ReclassRule) *Engine {
	return &Engine{rules: rules.CloneReclass(rs)}
}

// Evaluate checks every rule against row. The first rule that fires decides
// the result; when none fires the original area is returned unchanged.
func (e *Engine) Evaluate(row model.LedgerRow) Result {
	res := Result{
		Ledger:       row.Name,
		OriginalArea: row.FSArea(),
		NewArea:      row.FSArea(),
		OriginalAILE: row.AILE(),
		NewAILE:      row.AILE(),
		NewFace:      row.Hierarchy.H2,
	}
	group := row.GroupText()
	balance := row.Closing
	for _, r := range e.rules {
		if !fires(r, group, balance) {
			continue
		}
		res.Fired = append(res.Fired, r.Name)
		if res.Reclassified {
			continue
		}
		res.Reclassified = true
		res.Rule = r.Name
		res.Reason = r.Reason
		res.NewArea = r.Area
		res.NewAILE = r.AILE
		res.NewFace = r.Face
	}
	return res
}

func fires(r rules.ReclassRule, group string, balance decimal.Decimal) bool {
	switch r.When {
	case rules.WhenPositive:
		if !balance.IsPositive() {
			return false
		}
	case rules.WhenNegative:
		if !balance.IsNegative() {
			return false
		}
	default:
		return false
	}
	return r.Include.Contains(group) && !r.Exclude.Contains(group)
}

// View returns a copy of row re-pointed at the result's area. Rows whose
// result did not fire come back unchanged.
func View(row model.LedgerRow, res Result) model.LedgerRow {
	if !res.Reclassified {
		return row
	}
	out := row
	out.Hierarchy.H2 = res.NewFace
	out.Hierarchy.H3 = res.NewArea
	out.Hierarchy.H4 = ""
	out.Hierarchy.H5 = ""
	return out
}

// Apply returns a new slice where only reclassified rows are re-pointed, plus
// the per-row results in input order. rows is not modified.
func (e *Engine) Apply(rows []model.LedgerRow) ([]model.LedgerRow, []Result) {
	out := make([]model.LedgerRow, len(rows))
	results := make([]Result, len(rows))
	for i, row := range rows {
		res := e.Evaluate(row)
		out[i] = View(row, res)
		results[i] = res
	}
	return out, results
}

// Summarize collects a disclosure line for every reclassified row.
func (e *Engine) Summarize(rows []model.LedgerRow) []Line {
	var lines []Line
	for _, row := range rows {
		res := e.Evaluate(row)
		if !res.Reclassified {
			continue
		}
		lines = append(lines, LineFor(row, res))
	}
	return lines
}

// LineFor builds the disclosure line for a reclassified row.
func LineFor(row model.LedgerRow, res Result) Line {
	return Line{
		Ledger:   row.Name,
		Original: res.OriginalArea,
		New:      res.NewArea,
		Reason:   res.Reason,
		Amount:   row.Closing.Abs(),
	}
}
