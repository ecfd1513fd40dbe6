package reclass

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/notewise/internal/model"
	"github.com/cleared-dev/notewise/internal/rules"
)

func newDefault() *Engine {
	return NewEngine(rules.DefaultReclass())
}

func row(name, group string, closing int64, h2, h3 string) model.LedgerRow {
	return model.LedgerRow{
		Name:         name,
		PrimaryGroup: group,
		Closing:      decimal.NewFromInt(closing),
		Status:       model.StatusMapped,
		Hierarchy:    model.Hierarchy{H1: "Balance Sheet", H2: h2, H3: h3, H4: "detail"},
	}
}

func TestBankODWithDebitBalanceMovesToCash(t *testing.T) {
	r := model.LedgerRow{Name: "Bank OD A/c", PrimaryGroup: "Bank OCC A/c", Closing: decimal.NewFromInt(50000)}
	res := newDefault().Evaluate(r)

	assert.True(t, res.Reclassified)
	assert.Equal(t, "Cash", res.NewArea)
	assert.Equal(t, model.AILEAsset, res.NewAILE)
	assert.Equal(t, []string{"overdraft-debit"}, res.Fired)
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		row      model.LedgerRow
		wantRule string
		wantArea string
		wantAILE model.AILE
	}{
		{"bank in credit", row("HDFC Current", "Bank Accounts", -1200, "Current Assets", "Cash and Cash Equivalents"),
			"bank-credit", "Short Term Borrowings", model.AILELiability},
		{"debtor in credit", row("Acme Ltd", "Sundry Debtors", -800, "Current Assets", "Trade Receivables"),
			"receivable-credit", "Other Current Liabilities", model.AILELiability},
		{"creditor in debit", row("Steel Supplier", "Sundry Creditors", 950, "Current Liabilities", "Trade Payables"),
			"payable-debit", "Other Current Assets", model.AILEAsset},
		{"overdraft in debit", row("SBI OD", "Bank OD A/c", 10, "Current Liabilities", "Short Term Borrowings"),
			"overdraft-debit", "Cash", model.AILEAsset},
	}
	e := newDefault()
	for _, tt := range tests {
		res := e.Evaluate(tt.row)
		require.True(t, res.Reclassified, tt.name)
		assert.Equal(t, tt.wantRule, res.Rule, tt.name)
		assert.Equal(t, tt.wantArea, res.NewArea, tt.name)
		assert.Equal(t, tt.wantAILE, res.NewAILE, tt.name)
		assert.Equal(t, tt.row.FSArea(), res.OriginalArea, tt.name)
		assert.NotEmpty(t, res.Reason, tt.name)
	}
}

func TestNoRuleFiresKeepsOriginal(t *testing.T) {
	e := newDefault()
	rows := []model.LedgerRow{
		row("HDFC Current", "Bank Accounts", 1200, "Current Assets", "Cash and Cash Equivalents"),
		row("SBI OD", "Bank OD A/c", -5000, "Current Liabilities", "Short Term Borrowings"),
		row("Acme Ltd", "Sundry Debtors", 800, "Current Assets", "Trade Receivables"),
		row("Steel Supplier", "Sundry Creditors", -950, "Current Liabilities", "Trade Payables"),
		row("Rent", "Indirect Expenses", 100, "Expenses", "Other Expenses"),
		row("Zero Bank", "Bank Accounts", 0, "Current Assets", "Cash and Cash Equivalents"),
	}
	for _, r := range rows {
		res := e.Evaluate(r)
		assert.False(t, res.Reclassified, r.Name)
		assert.Empty(t, res.Fired, r.Name)
		assert.Equal(t, r.FSArea(), res.NewArea, r.Name)
		assert.Equal(t, r.AILE(), res.NewAILE, r.Name)
	}
}

func TestDefaultRulesAreMutuallyExclusive(t *testing.T) {
	e := newDefault()
	groups := []string{"Bank Accounts", "Bank OD A/c", "Bank OCC A/c", "Sundry Debtors", "Sundry Creditors", "Trade Receivables", "Trade Payables", "Cash Credit"}
	for _, g := range groups {
		for _, bal := range []int64{-100, 100} {
			res := e.Evaluate(model.LedgerRow{Name: g, PrimaryGroup: g, Closing: decimal.NewFromInt(bal)})
			assert.LessOrEqual(t, len(res.Fired), 1, "%s %d fired %v", g, bal, res.Fired)
		}
	}
}

func TestOverlappingRulesFirstWins(t *testing.T) {
	e := NewEngine([]rules.ReclassRule{
		{Name: "a", Include: rules.Keywords{"bank"}, When: rules.WhenPositive, Area: "A"},
		{Name: "b", Include: rules.Keywords{"bank"}, When: rules.WhenPositive, Area: "B"},
	})
	res := e.Evaluate(model.LedgerRow{PrimaryGroup: "Bank", Closing: decimal.NewFromInt(1)})
	assert.Equal(t, "A", res.NewArea)
	assert.Equal(t, []string{"a", "b"}, res.Fired)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := newDefault()
	in := []model.LedgerRow{
		row("Acme Ltd", "Sundry Debtors", -800, "Current Assets", "Trade Receivables"),
		row("Rent", "Indirect Expenses", 100, "Expenses", "Other Expenses"),
	}
	out, results := e.Apply(in)
	require.Len(t, out, 2)
	require.Len(t, results, 2)

	assert.Equal(t, "Trade Receivables", in[0].Hierarchy.H3)
	assert.Equal(t, "detail", in[0].Hierarchy.H4)

	assert.Equal(t, "Other Current Liabilities", out[0].Hierarchy.H3)
	assert.Equal(t, "Current Liabilities", out[0].Hierarchy.H2)
	assert.Equal(t, "Balance Sheet", out[0].Hierarchy.H1)
	assert.Empty(t, out[0].Hierarchy.H4)
	assert.Equal(t, in[1], out[1])
}

func TestSummarize(t *testing.T) {
	e := newDefault()
	in := []model.LedgerRow{
		row("Acme Ltd", "Sundry Debtors", -800, "Current Assets", "Trade Receivables"),
		row("Rent", "Indirect Expenses", 100, "Expenses", "Other Expenses"),
		row("Steel Supplier", "Sundry Creditors", 950, "Current Liabilities", "Trade Payables"),
	}
	lines := e.Summarize(in)
	require.Len(t, lines, 2)

	assert.Equal(t, "Acme Ltd", lines[0].Ledger)
	assert.Equal(t, "Trade Receivables", lines[0].Original)
	assert.Equal(t, "Other Current Liabilities", lines[0].New)
	assert.Equal(t, "Advance from customer", lines[0].Reason)
	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(800)))

	assert.Equal(t, "Steel Supplier", lines[1].Ledger)
	assert.True(t, lines[1].Amount.Equal(decimal.NewFromInt(950)))
}

func TestEngineCopiesRules(t *testing.T) {
	rs := rules.DefaultReclass()
	e := NewEngine(rs)
	rs[0].Area = "mutated"
	res := e.Evaluate(model.LedgerRow{PrimaryGroup: "Bank OD A/c", Closing: decimal.NewFromInt(1)})
	assert.Equal(t, "Cash", res.NewArea)
}
