package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/notewise/internal/model"
)

// Header is the trial-balance CSV header.
var Header = []string{
	"ledger_name", "parent_group", "primary_group",
	"h1", "h2", "h3", "h4", "h5",
	"opening_balance", "closing_balance", "is_revenue", "status",
}

const (
	numFields  = 12
	colName    = 0
	colParent  = 1
	colPrimary = 2
	colH1      = 3
	colH2      = 4
	colH3      = 5
	colH4      = 6
	colH5      = 7
	colOpening = 8
	colClosing = 9
	colRevenue = 10
	colStatus  = 11
)

// ReadRows reads a trial-balance CSV. The first record is the header.
func ReadRows(r io.Reader) ([]model.LedgerRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading trial balance CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]model.LedgerRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows writes rows as a trial-balance CSV.
func WriteRows(w io.Writer, rows []model.LedgerRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a LedgerRow to a CSV record.
func MarshalRow(row model.LedgerRow) []string {
	rec := make([]string, numFields)
	rec[colName] = row.Name
	rec[colParent] = row.ParentGroup
	rec[colPrimary] = row.PrimaryGroup
	rec[colH1] = row.Hierarchy.H1
	rec[colH2] = row.Hierarchy.H2
	rec[colH3] = row.Hierarchy.H3
	rec[colH4] = row.Hierarchy.H4
	rec[colH5] = row.Hierarchy.H5
	rec[colOpening] = row.Opening.String()
	rec[colClosing] = row.Closing.String()
	if row.IsRevenue != nil {
		rec[colRevenue] = strconv.FormatBool(*row.IsRevenue)
	}
	rec[colStatus] = string(row.Status)
	return rec
}

// UnmarshalRow converts a CSV record to a LedgerRow. Amounts may carry
// thousands separators; an empty amount is zero. An empty status means
// Unclassified.
func UnmarshalRow(rec []string) (model.LedgerRow, error) {
	if len(rec) != numFields {
		return model.LedgerRow{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	opening, err := parseAmount(rec[colOpening])
	if err != nil {
		return model.LedgerRow{}, fmt.Errorf("parsing opening_balance %q: %w", rec[colOpening], err)
	}
	closing, err := parseAmount(rec[colClosing])
	if err != nil {
		return model.LedgerRow{}, fmt.Errorf("parsing closing_balance %q: %w", rec[colClosing], err)
	}

	var revenue *bool
	if s := strings.TrimSpace(rec[colRevenue]); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return model.LedgerRow{}, fmt.Errorf("parsing is_revenue %q: %w", s, err)
		}
		revenue = &b
	}

	status, err := parseStatus(rec[colStatus])
	if err != nil {
		return model.LedgerRow{}, err
	}

	return model.LedgerRow{
		Name:         strings.TrimSpace(rec[colName]),
		ParentGroup:  strings.TrimSpace(rec[colParent]),
		PrimaryGroup: strings.TrimSpace(rec[colPrimary]),
		Hierarchy: model.Hierarchy{
			H1: strings.TrimSpace(rec[colH1]),
			H2: strings.TrimSpace(rec[colH2]),
			H3: strings.TrimSpace(rec[colH3]),
			H4: strings.TrimSpace(rec[colH4]),
			H5: strings.TrimSpace(rec[colH5]),
		},
		Opening:   opening,
		Closing:   closing,
		IsRevenue: revenue,
		Status:    status,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mapped":
		return model.StatusMapped, nil
	case "unclassified", "":
		return model.StatusUnclassified, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}
