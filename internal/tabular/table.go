package tabular

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a simple row-column view over a loaded dataset. All cells are
// kept as strings; numeric coercion happens at the point of use.
type Table struct {
	Columns []string
	Rows    [][]string
}

// MissingColumnsError reports which required columns a table lacks.
type MissingColumnsError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns [%s] in %s", strings.Join(e.Columns, ", "), e.Path)
}

func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Get returns the cell at (row, column name), or "" when the row is short
// or the column does not exist.
func (t *Table) Get(row int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// RequireColumns validates that every named column is present, returning a
// MissingColumnsError naming the gaps.
func RequireColumns(t *Table, path string, names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingColumnsError{Path: path, Columns: missing}
	}
	return nil
}
