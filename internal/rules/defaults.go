package rules

import "github.com/cleared-dev/notewise/internal/model"

// Sentinel categories returned when nothing matches.
const (
	Unclassified = "Unclassified"
	NotMapped    = "NOT MAPPED"
	Other        = "Other"
)

// Business types understood by the stock classifier.
const (
	Trading       = "Trading"
	Manufacturing = "Manufacturing"
)

// Default returns the built-in rule set.
func Default() Set {
	return Set{
		Signs:      DefaultSigns(),
		Stock:      DefaultStock(),
		Reclass:    DefaultReclass(),
		Notes:      DefaultNotes(),
		Vocabulary: DefaultVocabulary(),
	}
}

// DefaultSigns returns the natural-side keyword lists. Dr group keywords are
// checked before Cr group keywords.
func DefaultSigns() SignTable {
	return SignTable{
		DrFace: Keywords{"asset", "expense"},
		CrFace: Keywords{"liabil", "equity", "income", "revenue"},
		DrGroup: Keywords{
			"debtor", "receivable", "asset", "bank", "cash", "advance",
			"loan & advance", "stock", "inventory", "expense", "purchase",
		},
		CrGroup: Keywords{
			"creditor", "payable", "liabil", "equity", "capital", "reserve",
			"surplus", "overdraft", "od", "occ", "loan", "borrowing",
			"income", "revenue", "sales",
		},
	}
}

// DefaultStock returns the inventory tables.
func DefaultStock() StockTable {
	return StockTable{
		TradingCategory: "Stock-in-Trade",
		Manufacturing: []Category{
			{Name: "Raw Materials", Keywords: Keywords{"raw material", "raw", "rm"}},
			{Name: "Work-in-Progress", Keywords: Keywords{"work in progress", "work-in-progress", "wip", "semi finished", "semi-finished"}},
			{Name: "Finished Goods", Keywords: Keywords{"finished goods", "finished", "fg"}},
			{Name: "Packing Materials", Keywords: Keywords{"packing", "packaging"}},
			{Name: "Consumables", Keywords: Keywords{"consumable"}},
			{Name: "Stores and Spares", Keywords: Keywords{"spare", "stores"}},
		},
	}
}

func overdraftKeywords() Keywords {
	return Keywords{"overdraft", "od", "occ", "cash credit", "cc"}
}

// DefaultReclass returns the four balance-sign rules. Positive raw balances
// are debits in this table.
func DefaultReclass() []ReclassRule {
	return []ReclassRule{
		{
			Name:    "overdraft-debit",
			Include: overdraftKeywords(),
			When:    WhenPositive,
			Area:    "Cash",
			AILE:    model.AILEAsset,
			Face:    "Current Assets",
			Reason:  "Overdraft account with debit balance shown under cash and cash equivalents",
		},
		{
			Name:    "bank-credit",
			Include: Keywords{"bank"},
			Exclude: overdraftKeywords(),
			When:    WhenNegative,
			Area:    "Short Term Borrowings",
			AILE:    model.AILELiability,
			Face:    "Current Liabilities",
			Reason:  "Bank account with credit balance shown as short term borrowing",
		},
		{
			Name:    "receivable-credit",
			Include: Keywords{"debtor", "receivable"},
			When:    WhenNegative,
			Area:    "Other Current Liabilities",
			AILE:    model.AILELiability,
			Face:    "Current Liabilities",
			Reason:  "Advance from customer",
		},
		{
			Name:    "payable-debit",
			Include: Keywords{"creditor", "payable"},
			When:    WhenPositive,
			Area:    "Other Current Assets",
			AILE:    model.AILEAsset,
			Face:    "Current Assets",
			Reason:  "Advance to supplier",
		},
	}
}

// DefaultNotes routes common group labels to their note keys. Ledgers that
// match none of these use their H3 label as the note key.
func DefaultNotes() []NoteMapping {
	return []NoteMapping{
		{Note: "Cash and Cash Equivalents", Level: model.H3, Label: "Cash"},
		{Note: "Cash and Cash Equivalents", Level: model.H3, Label: "Bank Accounts"},
		{Note: "Trade Receivables", Level: model.H3, Label: "Sundry Debtors"},
		{Note: "Trade Payables", Level: model.H3, Label: "Sundry Creditors"},
		{Note: "Reserves and Surplus", Level: model.H3, Label: "Reserves & Surplus"},
		{Note: "Revenue from Operations", Level: model.H2, Label: "Sales Accounts"},
	}
}

// DefaultVocabulary returns the per-note category splits. Order matters:
// "unsecured" must be tried before "secured".
func DefaultVocabulary() []NoteVocabulary {
	return []NoteVocabulary{
		{
			Note: "Reserves and Surplus",
			Categories: []Category{
				{Name: "Capital Reserve", Keywords: Keywords{"capital reserve"}},
				{Name: "Securities Premium", Keywords: Keywords{"securities premium", "share premium"}},
				{Name: "Revaluation Reserve", Keywords: Keywords{"revaluation"}},
				{Name: "General Reserve", Keywords: Keywords{"general reserve"}},
				{Name: "Surplus", Keywords: Keywords{"profit and loss", "profit & loss", "p&l", "surplus", "retained"}},
			},
		},
		{
			Note: "Short Term Borrowings",
			Categories: []Category{
				{Name: "Loans Repayable on Demand", Keywords: overdraftKeywords()},
				{Name: "Unsecured Loans", Keywords: Keywords{"unsecured"}},
				{Name: "Secured Loans", Keywords: Keywords{"secured"}},
			},
		},
		{
			Note: "Cash and Cash Equivalents",
			Categories: []Category{
				{Name: "Balances with Banks", Keywords: Keywords{"bank", "overdraft", "od", "occ", "cash credit"}},
				{Name: "Cheques on Hand", Keywords: Keywords{"cheque", "check"}},
				{Name: "Cash on Hand", Keywords: Keywords{"cash"}},
			},
		},
		{
			Note: "Trade Payables",
			Categories: []Category{
				{Name: "MSME", Keywords: Keywords{"msme", "micro", "small enterprise"}},
			},
		},
	}
}
