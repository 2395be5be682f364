package sheetstore

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps transport or backend failures that survived
// the retry budget.
var ErrStoreUnavailable = errors.New("sheet store unavailable")

// Row is one data row of a sheet, keyed by the sheet's header row.
// Index is the 1-based sheet row the values came from (the header row
// is row 1, so data rows start at 2). Headers preserves the sheet's
// column order so callers can address cells by header position.
type Row struct {
	Index   int
	Headers []string
	Values  map[string]string
}

// Column returns the 1-based column of a header, or 0 if absent.
func (r Row) Column(header string) int {
	for i, h := range r.Headers {
		if h == header {
			return i + 1
		}
	}
	return 0
}

// Tabular is the record-store surface the pipeline needs. All writes are
// synchronous: when WriteCell or AppendRow returns nil the value is
// durably in the sheet.
//
// NextEmptyRow is one past the last row with a non-empty first column.
// The first column is filled monotonically by the upstream form, so the
// result is deterministic. Callers appending rows should prefer AppendRow,
// which holds the sheet's write lock across the next-empty-row read and
// the cell writes.
type Tabular interface {
	ReadAll(ctx context.Context, sheetID string) ([]Row, error)
	NextEmptyRow(ctx context.Context, sheetID string) (int, error)
	WriteCell(ctx context.Context, sheetID string, row, col int, value string) error
	AppendRow(ctx context.Context, sheetID string, values []string) (int, error)
}
