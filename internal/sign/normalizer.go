// Package sign infers the natural debit/credit side of a ledger and derives a
// uniformly signed amount from it.
package sign

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/notewise/internal/model"
	"github.com/cleared-dev/notewise/internal/rules"
)

// Normalizer resolves natural and actual balance sides.
type Normalizer struct {
	table    rules.SignTable
	fallback model.BalanceSign
}

// NewNormalizer builds a Normalizer over its own copy of table. fallback is the
// side used when no face label, group keyword or revenue flag gives a signal;
// an empty fallback means Dr.
func NewNormalizer(table rules.SignTable, fallback model.BalanceSign) *Normalizer {
	if fallback == "" {
		fallback = model.Dr
	}
	return &Normalizer{
		table: rules.SignTable{
			DrFace:  slices.Clone(table.DrFace),
			CrFace:  slices.Clone(table.CrFace),
			DrGroup: slices.Clone(table.DrGroup),
			CrGroup: slices.Clone(table.CrGroup),
		},
		fallback: fallback,
	}
}

// Fallback returns the configured default side.
func (n *Normalizer) Fallback() model.BalanceSign {
	return n.fallback
}

// NaturalSign returns the side a ledger is expected to carry. The first
// signal wins: H2 label, then group keywords (Dr list before Cr list), then
// the revenue flag, then the fallback.
func (n *Normalizer) NaturalSign(h2, groupText string, isRevenue *bool) model.BalanceSign {
	if n.table.DrFace.Contains(h2) {
		return model.Dr
	}
	if n.table.CrFace.Contains(h2) {
		return model.Cr
	}
	if n.table.DrGroup.Contains(groupText) {
		return model.Dr
	}
	if n.table.CrGroup.Contains(groupText) {
		return model.Cr
	}
	if isRevenue != nil {
		if *isRevenue {
			return model.Cr
		}
		return model.Dr
	}
	return n.fallback
}

// RowNaturalSign is NaturalSign over a ledger row.
func (n *Normalizer) RowNaturalSign(row model.LedgerRow) model.BalanceSign {
	return n.NaturalSign(row.Hierarchy.H2, row.GroupText(), row.IsRevenue)
}

// ActualSign reads the side from the row's balance (closing, or opening when
// closing is zero). Negative balances are debits and positive balances are
// credits; a zero balance takes the natural side.
func (n *Normalizer) ActualSign(row model.LedgerRow) model.BalanceSign {
	bal := row.Balance()
	switch bal.Sign() {
	case -1:
		return model.Dr
	case 1:
		return model.Cr
	default:
		return n.RowNaturalSign(row)
	}
}

// NormalizedSignedAmount returns +|amount| for Cr and -|amount| for Dr.
func NormalizedSignedAmount(amount decimal.Decimal, side model.BalanceSign) decimal.Decimal {
	if side == model.Cr {
		return amount.Abs()
	}
	return amount.Abs().Neg()
}

// Contra reports whether the row's actual side disagrees with its natural side.
func (n *Normalizer) Contra(row model.LedgerRow) bool {
	return n.ActualSign(row) != n.RowNaturalSign(row)
}
