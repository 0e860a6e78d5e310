// File path: internal/dbl/descriptor_test.go
package dbl

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inolabs/partsdb/internal/catalog"
)

func testTable() *catalog.Table {
	return &catalog.Table{
		Name:        "resistors",
		DisplayName: "Resistors",
		Source:      "resistors.csv",
		Columns:     []string{"part_id", "value", "symbol", "footprint", "tolerance", "mpn"},
		Rows: []catalog.Row{
			{"R0603-1K", "1k", "Resistor_SMD:R_0603", "Resistor_0603", "±1%", "RC0603FR-071KL"},
		},
	}
}

func TestBuild(t *testing.T) {
	doc := Build([]*catalog.Table{testTable()}, Options{
		Name:           "Master Library",
		Description:    "Component database",
		DatabaseFile:   filepath.Join("some", "dir", "components.db"),
		VisibleColumns: []string{"value", "rating"},
	})

	if doc.Meta.Version != 0 {
		t.Fatalf("unexpected meta version: %d", doc.Meta.Version)
	}
	if doc.Source.Type != "odbc" {
		t.Fatalf("unexpected source type: %q", doc.Source.Type)
	}
	if doc.Source.TimeoutSeconds != 2 {
		t.Fatalf("expected default timeout 2, got %d", doc.Source.TimeoutSeconds)
	}
	want := "Driver={SQLite3 ODBC Driver};Database=${CWD}/components.db;"
	if doc.Source.ConnectionString != want {
		t.Fatalf("unexpected connection string: %q", doc.Source.ConnectionString)
	}
	if len(doc.Libraries) != 1 {
		t.Fatalf("expected 1 library, got %d", len(doc.Libraries))
	}

	lib := doc.Libraries[0]
	if lib.Name != "Resistors" || lib.Table != "resistors" {
		t.Fatalf("unexpected library identity: %+v", lib)
	}
	if lib.Key != "part_id" || lib.Symbols != "symbol" || lib.Footprints != "footprint" {
		t.Fatalf("unexpected system column mapping: %+v", lib)
	}

	// part_id, symbol, footprint stay out of the chooser fields.
	for _, field := range lib.Fields {
		switch field.Column {
		case "part_id", "symbol", "footprint":
			t.Fatalf("system column %q leaked into fields", field.Column)
		}
	}
	if len(lib.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(lib.Fields))
	}

	fields := map[string]Field{}
	for _, field := range lib.Fields {
		fields[field.Column] = field
	}
	if !fields["value"].VisibleOnAdd {
		t.Fatal("value should be visible on add")
	}
	if fields["tolerance"].VisibleOnAdd {
		t.Fatal("tolerance should not be visible on add")
	}
	if !fields["tolerance"].VisibleInChooser {
		t.Fatal("tolerance should be visible in chooser")
	}
	if fields["mpn"].Name != "MPN" {
		t.Fatalf("unexpected field display name: %q", fields["mpn"].Name)
	}

	if lib.Properties["Value"] != "value" {
		t.Fatalf("value column should map to the Value property: %v", lib.Properties)
	}
	if _, ok := lib.Properties["value"]; ok {
		t.Fatal("lowercase value key should not appear in properties")
	}
	if lib.Properties["tolerance"] != "tolerance" {
		t.Fatalf("metadata column missing from properties: %v", lib.Properties)
	}
}

func TestBuildEmpty(t *testing.T) {
	doc := Build(nil, Options{Name: "Empty", DatabaseFile: "components.db"})
	if doc.Libraries == nil || len(doc.Libraries) != 0 {
		t.Fatalf("expected empty (non-nil) libraries, got %#v", doc.Libraries)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "components.kicad_dbl")
	doc := Build([]*catalog.Table{testTable()}, Options{
		Name:         "Master Library",
		DatabaseFile: "components.db",
	})

	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	var decoded Descriptor
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("descriptor is not valid JSON: %v", err)
	}
	if decoded.Name != "Master Library" {
		t.Fatalf("unexpected decoded name: %q", decoded.Name)
	}
	if !strings.Contains(string(first), "    \"meta\"") {
		t.Fatal("descriptor should be indented with four spaces")
	}

	// A second write of the same document is byte-identical.
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("descriptor output is not deterministic")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the descriptor in %s, found %d entries", dir, len(entries))
	}
}
