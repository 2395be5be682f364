package sheetstore

import (
	"context"
	"testing"
)

func TestMemoryReadAllKeysByHeader(t *testing.T) {
	m := NewMemory()
	m.Seed("s1", [][]string{
		{"Name", "Email"},
		{"Ada", "ada@example.com"},
		{"Grace"},
	})

	rows, err := m.ReadAll(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Index != 2 {
		t.Fatalf("expected first data row at sheet row 2, got %d", rows[0].Index)
	}
	if rows[0].Values["Email"] != "ada@example.com" {
		t.Fatalf("unexpected email: %q", rows[0].Values["Email"])
	}
	if rows[1].Values["Email"] != "" {
		t.Fatalf("short row should read as empty cell, got %q", rows[1].Values["Email"])
	}
	if col := rows[0].Column("Email"); col != 2 {
		t.Fatalf("expected Email at column 2, got %d", col)
	}
}

func TestMemoryNextEmptyRow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	row, err := m.NextEmptyRow(ctx, "empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != 1 {
		t.Fatalf("empty sheet should start at row 1, got %d", row)
	}

	m.Seed("s1", [][]string{
		{"ts", "v"},
		{"t1", "a"},
		{"t2", "b"},
	})
	row, err = m.NextEmptyRow(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != 4 {
		t.Fatalf("expected next empty row 4, got %d", row)
	}
}

func TestMemoryAppendRowAdvances(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Seed("s1", [][]string{{"ts", "v"}})

	r1, err := m.AppendRow(ctx, "s1", []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := m.AppendRow(ctx, "s1", []string{"c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1 != 2 || r2 != 3 {
		t.Fatalf("expected appends at rows 2 and 3, got %d and %d", r1, r2)
	}
	if m.Cell("s1", 3, 2) != "d" {
		t.Fatalf("unexpected cell value: %q", m.Cell("s1", 3, 2))
	}
	if m.MutationCount() != 4 {
		t.Fatalf("expected 4 cell writes, got %d", m.MutationCount())
	}
}
