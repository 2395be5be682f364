package fanout

import (
	"context"
	"fmt"

	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/dsar"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

// Entry is one fan-out unit: a single case reference plus the subject
// identifiers downstream systems join on.
type Entry struct {
	Reference  string
	Email      string
	IdentityID string
}

// EntryFromCase projects a case request into its fan-out entry.
func EntryFromCase(req dsar.CaseRequest) Entry {
	return Entry{
		Reference:  req.Reference(),
		Email:      req.SubjectEmail,
		IdentityID: req.IdentityID,
	}
}

func (e Entry) value(f Field) string {
	switch f {
	case FieldReference:
		return e.Reference
	case FieldEmail:
		return e.Email
	case FieldIdentityID:
		return e.IdentityID
	}
	return ""
}

// TargetError records a failure for one target. Target failures are
// isolated: rows for the other targets are still written.
type TargetError struct {
	Target string
	Err    error
}

func (e TargetError) Error() string {
	return fmt.Sprintf("fan-out to %s: %v", e.Target, e.Err)
}

func (e TargetError) Unwrap() error {
	return e.Err
}

// Distributor appends per-target rows to the downstream intake sheets.
type Distributor struct {
	sheets sheetstore.Tabular
}

func NewDistributor(sheets sheetstore.Tabular) *Distributor {
	return &Distributor{sheets: sheets}
}

// Distribute writes one row per entry per target, in target order and
// entry order, each at the target sheet's next empty row. A failure on
// one target abandons that target's remaining rows but never blocks the
// other targets.
func (d *Distributor) Distribute(ctx context.Context, targets []Target, entries []Entry) []TargetError {
	var failures []TargetError

	for _, target := range targets {
		mapping, ok := MappingFor(target.MappingClass())
		if !ok {
			failures = append(failures, TargetError{Target: target.Name, Err: fmt.Errorf("unknown mapping class %q", target.MappingClass())})
			continue
		}

		if err := d.distributeOne(ctx, target, mapping, entries); err != nil {
			logger.Log.WithError(err).WithField("target", target.Name).Error("fan-out target failed")
			failures = append(failures, TargetError{Target: target.Name, Err: err})
		}
	}
	return failures
}

func (d *Distributor) distributeOne(ctx context.Context, target Target, mapping Mapping, entries []Entry) error {
	for _, entry := range entries {
		if mapping.RequireField != "" && entry.value(mapping.RequireField) == "" {
			continue
		}

		cells := make([]string, len(mapping.Columns))
		for i, f := range mapping.Columns {
			cells[i] = entry.value(f)
		}

		if _, err := d.sheets.AppendRow(ctx, target.SheetID, cells); err != nil {
			return fmt.Errorf("entry %s: %w", entry.Reference, err)
		}
	}
	return nil
}
