// Package table provides the tabular metadata model used throughout the
// grouping pipeline: an ordered set of named string columns aligned by row
// index (one row per sequencing run), together with the normalization and
// candidate-selection passes that prepare a table for grouping analysis.
package table

import (
	"fmt"
	"strings"
)

// NA is the uniform placeholder for unknown, unassigned, or unavailable
// values across the whole data model.
const NA = "NA"

// Table is an ordered set of named columns sharing one row count.
// Derived tables returned by the normalization passes share cell slices
// with their source; columns are never mutated after construction.
type Table struct {
	cols  map[string][]string
	names []string
	rows  int
}

// New creates an empty table.
func New() *Table {
	return &Table{cols: make(map[string][]string)}
}

// AddColumn appends a named column. Empty cells are coerced to the NA
// sentinel so that downstream comparisons never see missing values.
// The first column fixes the table's row count.
func (t *Table) AddColumn(name string, cells []string) error {
	if _, exists := t.cols[name]; exists {
		return fmt.Errorf("duplicate column name: %s", name)
	}

	if len(t.names) > 0 && len(cells) != t.rows {
		return fmt.Errorf("column %s has %d rows, table has %d", name, len(cells), t.rows)
	}

	coerced := make([]string, len(cells))
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			coerced[i] = NA
		} else {
			coerced[i] = c
		}
	}

	if len(t.names) == 0 {
		t.rows = len(cells)
	}

	t.names = append(t.names, name)
	t.cols[name] = coerced

	return nil
}

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)

	return out
}

// Column returns the cells of a named column.
func (t *Table) Column(name string) ([]string, bool) {
	cells, ok := t.cols[name]
	return cells, ok
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.rows
}

// Cols returns the number of columns.
func (t *Table) Cols() int {
	return len(t.names)
}

// DistinctCount returns the number of distinct values in a column,
// counting the NA sentinel as a value. Returns 0 for unknown columns.
func (t *Table) DistinctCount(name string) int {
	cells, ok := t.cols[name]
	if !ok {
		return 0
	}

	seen := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		seen[c] = struct{}{}
	}

	return len(seen)
}

// DistinctValues returns up to limit distinct values of a column in
// first-appearance order. A limit <= 0 means no cap.
func (t *Table) DistinctValues(name string, limit int) []string {
	cells, ok := t.cols[name]
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, len(cells))

	var out []string

	for _, c := range cells {
		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}
		out = append(out, c)

		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}

// FirstNonNA returns the first cell of a column that is not the NA
// sentinel, or NA when the column is missing or entirely unassigned.
func (t *Table) FirstNonNA(name string) string {
	cells, ok := t.cols[name]
	if !ok {
		return NA
	}

	for _, c := range cells {
		if c != NA {
			return c
		}
	}

	return NA
}

// IsStudyLevel reports whether a column holds exactly one distinct value
// across all rows (a project-wide field rather than a per-sample one).
func (t *Table) IsStudyLevel(name string) bool {
	return t.DistinctCount(name) == 1
}

// Select returns a derived table containing the named columns, in the
// given order, skipping names the table does not have.
func (t *Table) Select(names []string) *Table {
	out := New()
	out.rows = t.rows

	for _, name := range names {
		cells, ok := t.cols[name]
		if !ok {
			continue
		}

		out.names = append(out.names, name)
		out.cols[name] = cells
	}

	return out
}
