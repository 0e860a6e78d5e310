// File path: internal/dbl/descriptor.go

// Package dbl builds the .kicad_dbl descriptor that tells KiCad how to read
// the compiled parts database: which table backs each library section, which
// columns resolve the symbol and footprint, and which columns the chooser
// dialog displays.
package dbl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inolabs/partsdb/internal/catalog"
)

// Meta carries the descriptor format version.
type Meta struct {
	Version int `json:"version"`
}

// Source describes the ODBC connection KiCad opens to reach the database.
type Source struct {
	Type             string `json:"type"`
	DSN              string `json:"dsn"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	ConnectionString string `json:"connection_string"`
}

// Field is one metadata column surfaced in the chooser dialog.
type Field struct {
	Column           string `json:"column"`
	Name             string `json:"name"`
	VisibleOnAdd     bool   `json:"visible_on_add"`
	VisibleInChooser bool   `json:"visible_in_chooser"`
}

// Library maps one category table to a browsable library section.
type Library struct {
	Name       string            `json:"name"`
	Table      string            `json:"table"`
	Key        string            `json:"key"`
	Symbols    string            `json:"symbols"`
	Footprints string            `json:"footprints"`
	Fields     []Field           `json:"fields"`
	Properties map[string]string `json:"properties"`
}

// Descriptor is the full .kicad_dbl document.
type Descriptor struct {
	Meta        Meta      `json:"meta"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Source      Source    `json:"source"`
	Libraries   []Library `json:"libraries"`
}

// Options configures descriptor generation.
type Options struct {
	// Name and Description label the library in KiCad's configuration.
	Name        string
	Description string
	// DatabaseFile is the path of the compiled database; only its base name
	// lands in the connection string, resolved against ${CWD}.
	DatabaseFile string
	// TimeoutSeconds is the ODBC connection timeout.
	TimeoutSeconds int
	// VisibleColumns are shown on the placed symbol, not just the chooser.
	VisibleColumns []string
}

// Build assembles a descriptor for the given category tables. Tables are
// assumed to have passed catalog validation, so the required columns exist.
func Build(tables []*catalog.Table, opts Options) *Descriptor {
	timeout := opts.TimeoutSeconds
	if timeout <= 0 {
		timeout = 2
	}
	doc := &Descriptor{
		Meta:        Meta{Version: 0},
		Name:        opts.Name,
		Description: opts.Description,
		Source: Source{
			Type:           "odbc",
			TimeoutSeconds: timeout,
			ConnectionString: fmt.Sprintf("Driver={SQLite3 ODBC Driver};Database=${CWD}/%s;",
				filepath.Base(opts.DatabaseFile)),
		},
		Libraries: []Library{},
	}

	visible := make(map[string]struct{}, len(opts.VisibleColumns))
	for _, col := range opts.VisibleColumns {
		visible[strings.ToLower(col)] = struct{}{}
	}

	for _, table := range tables {
		doc.Libraries = append(doc.Libraries, buildLibrary(table, visible))
	}
	return doc
}

func buildLibrary(table *catalog.Table, visible map[string]struct{}) Library {
	lib := Library{
		Name:       table.DisplayName,
		Table:      table.Name,
		Key:        table.Columns[0],
		Symbols:    table.Columns[table.Column(catalog.ColumnSymbol)],
		Footprints: table.Columns[table.Column(catalog.ColumnFootprint)],
		Fields:     []Field{},
		Properties: make(map[string]string, len(table.Columns)),
	}
	for _, col := range table.Columns {
		// KiCad capitalizes the Value property name.
		if strings.EqualFold(col, catalog.ColumnValue) {
			lib.Properties["Value"] = col
		} else {
			lib.Properties[col] = col
		}
		if isSystemColumn(col) {
			continue
		}
		_, onAdd := visible[strings.ToLower(col)]
		lib.Fields = append(lib.Fields, Field{
			Column:           col,
			Name:             catalog.DisplayName(col),
			VisibleOnAdd:     onAdd,
			VisibleInChooser: true,
		})
	}
	return lib
}

// isSystemColumn reports whether the column is consumed by KiCad's
// symbol/footprint resolution rather than shown as a chooser field.
func isSystemColumn(col string) bool {
	switch strings.ToLower(col) {
	case catalog.ColumnPartID, catalog.ColumnSymbol, catalog.ColumnFootprint:
		return true
	}
	return false
}

// WriteFile writes the descriptor as indented JSON, using a temp file and
// rename so a half-written descriptor is never observable.
func (d *Descriptor) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create descriptor temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close descriptor temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace descriptor %s: %w", path, err)
	}
	return nil
}
