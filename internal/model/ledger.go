package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the classification state of a ledger row.
type Status string

const (
	StatusMapped       Status = "Mapped"
	StatusUnclassified Status = "Unclassified"
)

// Level identifies one rung of the classification hierarchy.
type Level int

const (
	H1 Level = iota + 1 // statement
	H2                  // face category
	H3                  // note
	H4                  // sub-note
	H5                  // detail
)

// Hierarchy is the H1..H5 classification trail of a ledger.
type Hierarchy struct {
	H1 string `yaml:"h1"`
	H2 string `yaml:"h2"`
	H3 string `yaml:"h3"`
	H4 string `yaml:"h4,omitempty"`
	H5 string `yaml:"h5,omitempty"`
}

// At returns the label at level l, or "" for an unknown level.
func (h Hierarchy) At(l Level) string {
	switch l {
	case H1:
		return h.H1
	case H2:
		return h.H2
	case H3:
		return h.H3
	case H4:
		return h.H4
	case H5:
		return h.H5
	default:
		return ""
	}
}

// Trail joins the non-empty levels with " > ".
func (h Hierarchy) Trail() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{h.H1, h.H2, h.H3, h.H4, h.H5} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " > ")
}

// LedgerRow is one account line of a classified trial balance.
type LedgerRow struct {
	Name         string
	ParentGroup  string
	PrimaryGroup string
	Hierarchy    Hierarchy
	Opening      decimal.Decimal
	Closing      decimal.Decimal
	IsRevenue    *bool // nil when the source carries no revenue flag
	Status       Status
}

// Errors reported by LedgerRow.Validate.
var (
	ErrNotMapped     = errors.New("row is not mapped")
	ErrMissingLevels = errors.New("mapped row is missing H1, H2 or H3")
)

// Validate reports whether the row may contribute to aggregates: it must be
// Mapped and carry non-empty H1..H3.
func (r LedgerRow) Validate() error {
	if r.Status != StatusMapped {
		return ErrNotMapped
	}
	h := r.Hierarchy
	if strings.TrimSpace(h.H1) == "" || strings.TrimSpace(h.H2) == "" || strings.TrimSpace(h.H3) == "" {
		return ErrMissingLevels
	}
	return nil
}

// Balance returns the closing balance, or the opening balance when closing is zero.
func (r LedgerRow) Balance() decimal.Decimal {
	if r.Closing.IsZero() {
		return r.Opening
	}
	return r.Closing
}

// GroupText is the parent and primary group text used for keyword rules.
func (r LedgerRow) GroupText() string {
	switch {
	case r.ParentGroup == "":
		return r.PrimaryGroup
	case r.PrimaryGroup == "" || strings.EqualFold(r.ParentGroup, r.PrimaryGroup):
		return r.ParentGroup
	default:
		return r.ParentGroup + " " + r.PrimaryGroup
	}
}

// FSArea is the financial-statement area the row reports under (its note, H3).
func (r LedgerRow) FSArea() string {
	return r.Hierarchy.H3
}

// AILE is the Asset/Income/Liability/Expense tag derived from H2.
func (r LedgerRow) AILE() AILE {
	return AILEOf(r.Hierarchy.H2)
}

// Bool returns a pointer to b, for populating IsRevenue.
func Bool(b bool) *bool {
	return &b
}
