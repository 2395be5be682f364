package fanout

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTargetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing targets file: %v", err)
	}
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeTargetsFile(t, `
targets:
  - name: FormStack
    sheet_id: fs-1
  - name: BigQuery-EU
    sheet_id: bq-1
    class: BigQuery
`)
	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[1].MappingClass() != "BigQuery" {
		t.Fatalf("expected class override, got %s", targets[1].MappingClass())
	}
}

func TestLoadTargetsRejectsUnknownClass(t *testing.T) {
	path := writeTargetsFile(t, `
targets:
  - name: Mystery
    sheet_id: m-1
`)
	if _, err := LoadTargets(path); err == nil {
		t.Fatal("expected error for unknown mapping class")
	}
}

func TestLoadTargetsRejectsEmptyList(t *testing.T) {
	path := writeTargetsFile(t, "targets: []\n")
	if _, err := LoadTargets(path); err == nil {
		t.Fatal("expected error for empty target list")
	}
}
