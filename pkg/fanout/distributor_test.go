package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

func init() {
	logger.Init()
}

func bothEntries() []Entry {
	// one Both record: access S5 and deletion D9, same subject, no
	// identity id
	return []Entry{
		{Reference: "S5", Email: "a@x.com", IdentityID: ""},
		{Reference: "D9", Email: "a@x.com", IdentityID: ""},
	}
}

func TestDistributeFormStackColumns(t *testing.T) {
	sheets := sheetstore.NewMemory()
	d := NewDistributor(sheets)

	targets := []Target{{Name: "FormStack", SheetID: "fs"}}
	if failures := d.Distribute(context.Background(), targets, bothEntries()); len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}

	if got := sheets.RowCount("fs"); got != 2 {
		t.Fatalf("expected 2 FormStack rows, got %d", got)
	}
	if sheets.Cell("fs", 1, 1) != "S5" || sheets.Cell("fs", 1, 2) != "a@x.com" {
		t.Fatalf("unexpected first row: %q %q", sheets.Cell("fs", 1, 1), sheets.Cell("fs", 1, 2))
	}
	if sheets.Cell("fs", 2, 1) != "D9" || sheets.Cell("fs", 2, 2) != "a@x.com" {
		t.Fatalf("unexpected second row: %q %q", sheets.Cell("fs", 2, 1), sheets.Cell("fs", 2, 2))
	}
}

func TestDistributeEmailFirstClasses(t *testing.T) {
	for _, name := range []string{"TempPen", "Zuora", "EventBrite"} {
		sheets := sheetstore.NewMemory()
		d := NewDistributor(sheets)

		failures := d.Distribute(context.Background(), []Target{{Name: name, SheetID: "t"}}, bothEntries())
		if len(failures) != 0 {
			t.Fatalf("%s: unexpected failures: %v", name, failures)
		}
		if sheets.Cell("t", 1, 1) != "a@x.com" || sheets.Cell("t", 1, 2) != "S5" {
			t.Fatalf("%s: expected email then reference, got %q %q", name, sheets.Cell("t", 1, 1), sheets.Cell("t", 1, 2))
		}
	}
}

func TestDistributeIdentityClassesSkipEmptyIdentity(t *testing.T) {
	for _, name := range []string{"BigQuery", "DataLake", "OneOff"} {
		sheets := sheetstore.NewMemory()
		d := NewDistributor(sheets)

		failures := d.Distribute(context.Background(), []Target{{Name: name, SheetID: "t"}}, bothEntries())
		if len(failures) != 0 {
			t.Fatalf("%s: unexpected failures: %v", name, failures)
		}
		if got := sheets.RowCount("t"); got != 0 {
			t.Fatalf("%s: expected 0 rows for empty identity id, got %d", name, got)
		}
	}

	// with an identity id the row is written
	sheets := sheetstore.NewMemory()
	d := NewDistributor(sheets)
	entries := []Entry{{Reference: "S5", Email: "a@x.com", IdentityID: "id-1"}}
	if failures := d.Distribute(context.Background(), []Target{{Name: "BigQuery", SheetID: "t"}}, entries); len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if sheets.Cell("t", 1, 1) != "S5" || sheets.Cell("t", 1, 2) != "id-1" {
		t.Fatalf("unexpected row: %q %q", sheets.Cell("t", 1, 1), sheets.Cell("t", 1, 2))
	}
}

func TestDistributeBrazeKeepsEmailColumn(t *testing.T) {
	sheets := sheetstore.NewMemory()
	d := NewDistributor(sheets)

	failures := d.Distribute(context.Background(), []Target{{Name: "Braze", SheetID: "b"}}, bothEntries())
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	// identity id is empty but email still lands in column 3
	if sheets.Cell("b", 1, 1) != "S5" || sheets.Cell("b", 1, 2) != "" || sheets.Cell("b", 1, 3) != "a@x.com" {
		t.Fatalf("unexpected Braze row: %q %q %q", sheets.Cell("b", 1, 1), sheets.Cell("b", 1, 2), sheets.Cell("b", 1, 3))
	}
}

type failingSheet struct {
	*sheetstore.Memory
	failSheet string
}

func (f *failingSheet) AppendRow(ctx context.Context, sheetID string, cells []string) (int, error) {
	if sheetID == f.failSheet {
		return 0, errors.New("backend unavailable")
	}
	return f.Memory.AppendRow(ctx, sheetID, cells)
}

func TestDistributeIsolatesTargetFailures(t *testing.T) {
	mem := sheetstore.NewMemory()
	d := NewDistributor(&failingSheet{Memory: mem, failSheet: "tp"})

	targets := []Target{
		{Name: "TempPen", SheetID: "tp"},
		{Name: "FormStack", SheetID: "fs"},
	}
	failures := d.Distribute(context.Background(), targets, bothEntries())
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Target != "TempPen" {
		t.Fatalf("expected TempPen failure, got %s", failures[0].Target)
	}
	// the healthy target still received its rows
	if got := mem.RowCount("fs"); got != 2 {
		t.Fatalf("expected FormStack rows despite TempPen failure, got %d", got)
	}
}

func TestDistributeUnknownClassIsFailure(t *testing.T) {
	d := NewDistributor(sheetstore.NewMemory())
	failures := d.Distribute(context.Background(), []Target{{Name: "Mystery", SheetID: "m"}}, bothEntries())
	if len(failures) != 1 {
		t.Fatalf("expected failure for unknown class, got %v", failures)
	}
}
