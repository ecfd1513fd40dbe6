package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/notewise/internal/model"
)

func TestKeywordsFind(t *testing.T) {
	tests := []struct {
		kws  Keywords
		text string
		want string
		ok   bool
	}{
		{Keywords{"bank"}, "HDFC BANK Current A/c", "bank", true},
		{Keywords{"od"}, "Bank OD A/c", "od", true},
		{Keywords{"od"}, "Purchase of Goods", "", false},
		{Keywords{"occ"}, "Bank OCC A/c", "occ", true},
		{Keywords{"cc"}, "Accrued charges", "", false},
		{Keywords{"cc"}, "SBI CC-1234", "cc", true},
		{Keywords{"liabil"}, "Current Liabilities", "liabil", true},
		{Keywords{"loan & advance"}, "Loans & Advances (Asset)", "", false},
		{Keywords{"loan & advance"}, "Staff loan & advance", "loan & advance", true},
		{Keywords{"x"}, "", "", false},
		{Keywords{""}, "anything", "", false},
	}
	for _, tt := range tests {
		got, ok := tt.kws.Find(tt.text)
		assert.Equal(t, tt.ok, ok, "%v in %q", tt.kws, tt.text)
		assert.Equal(t, tt.want, got, "%v in %q", tt.kws, tt.text)
	}
}

func TestKeywordsFindRepeatedShortWord(t *testing.T) {
	// First "od" occurrence is inside a word; the second is standalone.
	assert.True(t, Keywords{"od"}.Contains("Goods OD"))
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Len(t, Default().Reclass, 4)
	assert.Equal(t, "Stock-in-Trade", Default().Stock.TradingCategory)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Default()
	c := orig.Clone()
	c.Reclass[0].Include[0] = "mutated"
	c.Stock.Manufacturing[0].Keywords[0] = "mutated"
	c.Vocabulary[0].Categories[0].Name = "mutated"

	assert.Equal(t, "overdraft", orig.Reclass[0].Include[0])
	assert.Equal(t, "raw material", orig.Stock.Manufacturing[0].Keywords[0])
	assert.Equal(t, "Capital Reserve", orig.Vocabulary[0].Categories[0].Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, Save(path, Default()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
stock:
  trading_category: Traded Goods
  manufacturing:
    - name: Castings
      keywords: [casting]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Traded Goods", got.Stock.TradingCategory)
	require.Len(t, got.Stock.Manufacturing, 1)
	assert.Equal(t, DefaultReclass(), got.Reclass)
}

func TestLoadRejectsBadRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
reclass:
  - name: broken
    include: [bank]
    when: sometimes
    area: Cash
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestValidateNoteMapping(t *testing.T) {
	s := Set{Notes: []NoteMapping{{Note: "Provisions", Level: model.Level(9), Label: "x"}}}
	assert.Error(t, s.Validate())

	s.Notes[0].Level = model.H3
	assert.NoError(t, s.Validate())

	s.Notes = []NoteMapping{{Note: "Provisions"}}
	assert.Error(t, s.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
