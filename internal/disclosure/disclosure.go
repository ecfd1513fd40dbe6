// Package disclosure writes the reclassification summary as the CSV table
// auditors attach to the financial statements.
package disclosure

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/notewise/internal/reclass"
)

// Header is the CSV header for the disclosure table.
const Header = "ledger,original_area,new_area,reason,amount"

const (
	numFields   = 5
	colLedger   = 0
	colOriginal = 1
	colNew      = 2
	colReason   = 3
	colAmount   = 4
)

// MarshalLine converts a disclosure line to a CSV row. Amounts are fixed
// to two places.
func MarshalLine(l reclass.Line) []string {
	row := make([]string, numFields)
	row[colLedger] = l.Ledger
	row[colOriginal] = l.Original
	row[colNew] = l.New
	row[colReason] = l.Reason
	row[colAmount] = l.Amount.StringFixed(2)
	return row
}

// UnmarshalLine converts a CSV row to a disclosure line.
func UnmarshalLine(record []string) (reclass.Line, error) {
	if len(record) != numFields {
		return reclass.Line{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return reclass.Line{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return reclass.Line{
		Ledger:   record[colLedger],
		Original: record[colOriginal],
		New:      record[colNew],
		Reason:   record[colReason],
		Amount:   amount,
	}, nil
}

// Write emits the header followed by one row per line.
func Write(w io.Writer, lines []reclass.Line) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, l := range lines {
		if err := cw.Write(MarshalLine(l)); err != nil {
			return fmt.Errorf("writing line %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating parent directories.
func WriteFile(path string, lines []reclass.Line) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating disclosure dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating disclosure file: %w", err)
	}
	if err := Write(f, lines); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses a disclosure table written by Write.
func Read(r io.Reader) ([]reclass.Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading disclosure CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var lines []reclass.Line
	for i, rec := range records[1:] {
		l, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
