// File path: internal/catalog/table.go
package catalog

import "strings"

// Column names KiCad resolves specially when placing a part.
const (
	ColumnPartID    = "part_id"
	ColumnValue     = "value"
	ColumnSymbol    = "symbol"
	ColumnFootprint = "footprint"
)

// RequiredColumns must be present in every category header. part_id must
// additionally be the first column, since it becomes the table's primary key.
var RequiredColumns = []string{ColumnPartID, ColumnValue, ColumnSymbol, ColumnFootprint}

// Row is one part record, values ordered to match the table's columns.
type Row []string

// Table holds one category of parts parsed from a single CSV file.
type Table struct {
	// Name is the sanitized SQL table name derived from the filename.
	Name string
	// DisplayName is the human-readable category name shown in the chooser.
	DisplayName string
	// Source is the CSV file the table was parsed from.
	Source string
	// Columns are the sanitized header columns, in file order.
	Columns []string
	// Rows are the data rows, in file order, padded to the column count.
	Rows []Row
}

// Column reports the index of the named column, or -1. Matching is
// case-insensitive because humans hand-edit the headers.
func (t *Table) Column(name string) int {
	for i, col := range t.Columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of the named column in the given row.
func (t *Table) Get(row Row, name string) string {
	idx := t.Column(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
