// Package ledger validates classified trial-balance rows and reads and
// writes them as CSV.
package ledger

import (
	"context"
	"fmt"

	"github.com/cleared-dev/notewise/internal/logger"
	"github.com/cleared-dev/notewise/internal/model"
)

// RowError describes why a single row cannot contribute to aggregates.
type RowError struct {
	Index  int // position in the input slice
	Ledger string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d [%s]: %v", e.Index, e.Ledger, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Rejection pairs a dropped row with the reason it was dropped.
type Rejection struct {
	Row model.LedgerRow
	Err *RowError
}

// ValidateRows checks every row and returns one error per invalid row.
func ValidateRows(rows []model.LedgerRow) []*RowError {
	var errs []*RowError
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			errs = append(errs, &RowError{Index: i, Ledger: r.Name, Err: err})
		}
	}
	return errs
}

// FilterClassified keeps the rows that are Mapped with H1..H3 present and
// returns the rest as rejections, logging each at warn level.
func FilterClassified(ctx context.Context, rows []model.LedgerRow) ([]model.LedgerRow, []Rejection) {
	log := logger.FromContext(ctx)
	kept := make([]model.LedgerRow, 0, len(rows))
	var rejected []Rejection
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			re := &RowError{Index: i, Ledger: r.Name, Err: err}
			rejected = append(rejected, Rejection{Row: r, Err: re})
			log.Warn("ledger row rejected", "ledger", r.Name, "index", i, "status", string(r.Status), "reason", err.Error())
			continue
		}
		kept = append(kept, r)
	}
	return kept, rejected
}
