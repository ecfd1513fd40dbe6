package model

import "strings"

// BalanceSign is the debit/credit side of a balance. It is always derived,
// never stored.
type BalanceSign string

const (
	Dr BalanceSign = "Dr"
	Cr BalanceSign = "Cr"
)

// Opposite returns the other side.
func (s BalanceSign) Opposite() BalanceSign {
	if s == Dr {
		return Cr
	}
	return Dr
}

// ParseSign accepts "Dr"/"Cr" in any case. ok is false for anything else.
func ParseSign(s string) (BalanceSign, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dr", "debit":
		return Dr, true
	case "cr", "credit":
		return Cr, true
	default:
		return "", false
	}
}

// AILE tags a ledger as Asset, Income, Liability or Expense.
type AILE string

const (
	AILEAsset     AILE = "Asset"
	AILEIncome    AILE = "Income"
	AILELiability AILE = "Liability"
	AILEExpense   AILE = "Expense"
	AILEUnknown   AILE = ""
)

// AILEOf derives the tag from a face-category label such as "Current Assets"
// or "Shareholders' Funds". Equity rolls up under Liability.
func AILEOf(h2 string) AILE {
	s := strings.ToLower(h2)
	switch {
	case strings.Contains(s, "asset"):
		return AILEAsset
	case strings.Contains(s, "liabil"), strings.Contains(s, "equity"), strings.Contains(s, "shareholder"):
		return AILELiability
	case strings.Contains(s, "income"), strings.Contains(s, "revenue"):
		return AILEIncome
	case strings.Contains(s, "expense"):
		return AILEExpense
	default:
		return AILEUnknown
	}
}
