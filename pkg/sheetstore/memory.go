package sheetstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Tabular used by tests and local development.
// Grids grow on write; row 1 is the header row.
type Memory struct {
	mu        sync.Mutex
	sheets    map[string][][]string
	mutations int
}

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

// Seed replaces a sheet's full grid, header row included.
func (m *Memory) Seed(sheetID string, grid [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]string, len(grid))
	for i, row := range grid {
		cp[i] = append([]string(nil), row...)
	}
	m.sheets[sheetID] = cp
}

func (m *Memory) ReadAll(ctx context.Context, sheetID string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid := m.sheets[sheetID]
	if len(grid) == 0 {
		return nil, nil
	}

	headers := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for i, raw := range grid[1:] {
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				values[h] = raw[j]
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, Row{Index: i + 2, Headers: headers, Values: values})
	}
	return rows, nil
}

func (m *Memory) NextEmptyRow(ctx context.Context, sheetID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextEmptyRowLocked(sheetID), nil
}

func (m *Memory) nextEmptyRowLocked(sheetID string) int {
	filled := 0
	for _, row := range m.sheets[sheetID] {
		if len(row) > 0 && row[0] != "" {
			filled++
		}
	}
	return filled + 1
}

func (m *Memory) WriteCell(ctx context.Context, sheetID string, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("cell (%d,%d) out of range", row, col)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCellLocked(sheetID, row, col, value)
	return nil
}

func (m *Memory) writeCellLocked(sheetID string, row, col int, value string) {
	grid := m.sheets[sheetID]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	r := grid[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	grid[row-1] = r
	m.sheets[sheetID] = grid
	m.mutations++
}

func (m *Memory) AppendRow(ctx context.Context, sheetID string, cells []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.nextEmptyRowLocked(sheetID)
	for i, v := range cells {
		m.writeCellLocked(sheetID, row, i+1, v)
	}
	return row, nil
}

// MutationCount reports how many cell writes have been applied, across
// all sheets.
func (m *Memory) MutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutations
}

// Cell reads one cell; empty string if it was never written.
func (m *Memory) Cell(sheetID string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.sheets[sheetID]
	if row < 1 || row > len(grid) {
		return ""
	}
	r := grid[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// RowCount reports rows with a non-empty first column.
func (m *Memory) RowCount(sheetID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextEmptyRowLocked(sheetID) - 1
}
