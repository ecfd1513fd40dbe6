package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	full := Hierarchy{H1: "Balance Sheet", H2: "Current Assets", H3: "Cash and Cash Equivalents"}
	tests := []struct {
		name string
		row  LedgerRow
		want error
	}{
		{"mapped complete", LedgerRow{Status: StatusMapped, Hierarchy: full}, nil},
		{"unclassified", LedgerRow{Status: StatusUnclassified, Hierarchy: full}, ErrNotMapped},
		{"empty status", LedgerRow{Hierarchy: full}, ErrNotMapped},
		{"missing H3", LedgerRow{Status: StatusMapped, Hierarchy: Hierarchy{H1: "BS", H2: "Current Assets"}}, ErrMissingLevels},
		{"blank H1", LedgerRow{Status: StatusMapped, Hierarchy: Hierarchy{H1: "  ", H2: "x", H3: "y"}}, ErrMissingLevels},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.row.Validate(), tt.want, tt.name)
		if tt.want == nil {
			assert.NoError(t, tt.row.Validate(), tt.name)
		}
	}
}

func TestBalanceFallsBackToOpening(t *testing.T) {
	r := LedgerRow{Opening: decimal.NewFromInt(-40), Closing: decimal.Zero}
	assert.True(t, r.Balance().Equal(decimal.NewFromInt(-40)))

	r.Closing = decimal.NewFromInt(15)
	assert.True(t, r.Balance().Equal(decimal.NewFromInt(15)))
}

func TestTrail(t *testing.T) {
	h := Hierarchy{H1: "Balance Sheet", H2: "Current Liabilities", H3: "Trade Payables", H5: "MSME"}
	assert.Equal(t, "Balance Sheet > Current Liabilities > Trade Payables > MSME", h.Trail())
	assert.Equal(t, "", Hierarchy{}.Trail())
}

func TestGroupText(t *testing.T) {
	assert.Equal(t, "Bank OCC A/c", LedgerRow{PrimaryGroup: "Bank OCC A/c"}.GroupText())
	assert.Equal(t, "Sundry Debtors", LedgerRow{ParentGroup: "Sundry Debtors", PrimaryGroup: "sundry debtors"}.GroupText())
	assert.Equal(t, "Branch A Sundry Debtors", LedgerRow{ParentGroup: "Branch A", PrimaryGroup: "Sundry Debtors"}.GroupText())
}

func TestAILEOf(t *testing.T) {
	tests := []struct {
		h2   string
		want AILE
	}{
		{"Non-Current Assets", AILEAsset},
		{"Current Liabilities", AILELiability},
		{"Equity", AILELiability},
		{"Shareholders' Funds", AILELiability},
		{"Revenue from Operations", AILEIncome},
		{"Other Income", AILEIncome},
		{"Expenses", AILEExpense},
		{"Misc", AILEUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AILEOf(tt.h2), "AILEOf(%q)", tt.h2)
	}
}

func TestParseSign(t *testing.T) {
	s, ok := ParseSign(" CR ")
	assert.True(t, ok)
	assert.Equal(t, Cr, s)
	assert.Equal(t, Dr, s.Opposite())

	_, ok = ParseSign("both")
	assert.False(t, ok)
}
