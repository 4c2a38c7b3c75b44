// Package table defines the in-memory tabular model shared by readers, writers
// and the cleaning pipeline.
package table

import (
	"strconv"
	"strings"
)

// Row holds one value per header, in header order
type Row []string

// Equal reports whether two rows match field for field
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a collision-free string key for the row, suitable for map lookups.
// Each field is length-prefixed so that ("a,b") and ("a","b") never collide.
func (r Row) Key() string {
	var b strings.Builder
	for _, v := range r {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// Table is an ordered header list plus rows of the same width
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// New builds a table, normalizing every row to the header width.
// Short rows are padded with empty values; extra values are dropped.
func New(name string, headers []string, rows []Row) Table {
	h := make([]string, len(headers))
	copy(h, headers)

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		normalized[i] = fit(row, len(h))
	}

	return Table{Name: name, Headers: h, Rows: normalized}
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns
func (t Table) Width() int {
	return len(t.Headers)
}

// IsEmpty reports whether the table has no rows
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// HasData reports whether the table holds at least one cell. A table whose
// columns were all pruned can still carry rows but has nothing to store.
func (t Table) HasData() bool {
	return len(t.Rows) > 0 && len(t.Headers) > 0
}

// ColumnIndex returns the position of the named column, or -1
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of all values of the column at index i
func (t Table) Column(i int) []string {
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		values[r] = row[i]
	}
	return values
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	return New(t.Name, t.Headers, t.Rows)
}

// WithRows returns a table sharing this table's name and headers with the given rows
func (t Table) WithRows(rows []Row) Table {
	h := make([]string, len(t.Headers))
	copy(h, t.Headers)
	return Table{Name: t.Name, Headers: h, Rows: rows}
}

// Project returns a new table containing only the columns at the given indices,
// in the order given
func (t Table) Project(indices []int) Table {
	headers := make([]string, len(indices))
	for i, idx := range indices {
		headers[i] = t.Headers[idx]
	}

	rows := make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		projected := make(Row, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		rows[r] = projected
	}

	return Table{Name: t.Name, Headers: headers, Rows: rows}
}

// Equal reports whether two tables have the same headers and rows in the same order
func (t Table) Equal(other Table) bool {
	if len(t.Headers) != len(other.Headers) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Headers {
		if t.Headers[i] != other.Headers[i] {
			return false
		}
	}
	for i := range t.Rows {
		if !t.Rows[i].Equal(other.Rows[i]) {
			return false
		}
	}
	return true
}

func fit(row Row, width int) Row {
	out := make(Row, width)
	copy(out, row)
	return out
}
