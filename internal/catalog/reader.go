// File path: internal/catalog/reader.go
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inolabs/partsdb/internal/common"
)

// ReadDir parses every CSV file in dir into a category table. Files are
// processed in sorted name order so repeated runs see the same sequence. A
// file whose sanitized name collides with an earlier file's is a hard error:
// on a case-insensitive filesystem both would silently fight over one table.
func ReadDir(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	logger := common.Logger()
	tables := make([]*Table, 0, len(names))
	sources := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		table, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if table == nil {
			logger.Warn("catalog: skipping empty file", "file", name)
			continue
		}
		key := strings.ToLower(table.Name)
		if prev, ok := sources[key]; ok {
			return nil, fmt.Errorf("category %q defined by both %s and %s", table.Name, prev, name)
		}
		sources[key] = name
		tables = append(tables, table)
	}
	return tables, nil
}

// ReadFile parses a single category CSV. It returns (nil, nil) for a file
// with no header row at all; a header with zero data rows is a valid empty
// category. The header must contain every required column, with part_id
// first, and part_id values must be unique within the file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	file := filepath.Base(path)
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rawHeader, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", file, err)
	}
	rawHeader[0] = strings.TrimPrefix(rawHeader[0], "\ufeff")

	columns := make([]string, len(rawHeader))
	seen := make(map[string]struct{}, len(rawHeader))
	for i, raw := range rawHeader {
		col := SanitizeName(strings.TrimSpace(raw))
		if col == "" {
			return nil, fmt.Errorf("%s: header column %d is empty after sanitization (%q)", file, i+1, raw)
		}
		key := strings.ToLower(col)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s: duplicate header column %q", file, col)
		}
		seen[key] = struct{}{}
		columns[i] = col
	}

	baseName := strings.TrimSuffix(file, filepath.Ext(file))
	table := &Table{
		Name:        SanitizeName(baseName),
		DisplayName: CategoryDisplayName(baseName),
		Source:      file,
		Columns:     columns,
	}
	if err := checkRequired(table); err != nil {
		return nil, err
	}

	ids := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		line++
		// Pad short rows and truncate long ones to the header width.
		if len(record) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, record)
			record = padded
		}
		record = record[:len(columns)]

		id := record[0]
		if prev, ok := ids[id]; ok {
			return nil, fmt.Errorf("%s: duplicate part_id %q on line %d (first seen on line %d)", file, id, line, prev)
		}
		ids[id] = line
		table.Rows = append(table.Rows, Row(record))
	}
	return table, nil
}

func checkRequired(t *Table) error {
	var missing []string
	for _, required := range RequiredColumns {
		if t.Column(required) < 0 {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required column(s) %s", t.Source, strings.Join(missing, ", "))
	}
	if !strings.EqualFold(t.Columns[0], ColumnPartID) {
		return fmt.Errorf("%s: first column must be %s, got %q", t.Source, ColumnPartID, t.Columns[0])
	}
	return nil
}
