package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/notewise/internal/formula"
)

// Template describes the computed rows of a statement: formulas keyed by
// row ID, the display order SUM_RANGE walks, parent/child groupings for
// SUM_CHILDREN, and named variables.
type Template struct {
	Rows      []string                    `yaml:"rows"`
	Children  map[string][]string         `yaml:"children,omitempty"`
	Formulas  map[string]string           `yaml:"formulas"`
	Variables map[string]formula.Variable `yaml:"variables,omitempty"`
}

// LoadTemplate reads a template YAML file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &t, nil
}

// SaveTemplate writes a template YAML file.
func SaveTemplate(path string, t *Template) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

// Structure returns the row order and groupings the cycle planner needs.
func (t *Template) Structure() formula.Structure {
	return formula.Structure{Rows: t.Rows, Children: t.Children}
}

// Context builds an evaluation context over values. The context owns its
// Values map; the template's slices and maps are shared read-only.
func (t *Template) Context(values map[string]decimal.Decimal) *formula.Context {
	vals := make(map[string]decimal.Decimal, len(values)+len(t.Formulas))
	for k, v := range values {
		vals[k] = v
	}
	return &formula.Context{
		Values:   vals,
		Order:    t.Rows,
		Children: t.Children,
		Vars:     t.Variables,
	}
}

// DefaultTemplate is the example written by `notewise init`. Its row IDs
// are the note keys produced by the default rule tables.
func DefaultTemplate() *Template {
	return &Template{
		Rows: []string{
			"Cash and Cash Equivalents",
			"Trade Receivables",
			"Other Current Assets",
			"Total Current Assets",
			"Trade Payables",
			"Short Term Borrowings",
			"Other Current Liabilities",
			"Total Current Liabilities",
			"Net Working Capital",
			"Current Ratio",
			"Revenue from Operations",
			"GST on Revenue",
		},
		Children: map[string][]string{
			"Current Liabilities": {"Trade Payables", "Short Term Borrowings", "Other Current Liabilities"},
		},
		Formulas: map[string]string{
			"Total Current Assets":      "SUM_RANGE('Cash and Cash Equivalents', 'Other Current Assets')",
			"Total Current Liabilities": "SUM_CHILDREN('Current Liabilities')",
			"Net Working Capital":       "DIFF(ROW('Total Current Assets'), ROW('Total Current Liabilities'))",
			"Current Ratio":             "IF(ROW('Total Current Liabilities') > 0, ROW('Total Current Assets') / ROW('Total Current Liabilities'), 0)",
			"GST on Revenue":            "ROW('Revenue from Operations') * VAR('gst_rate')",
		},
		Variables: map[string]formula.Variable{
			"gst_rate": {Type: formula.VarPercent, Value: "18"},
		},
	}
}
