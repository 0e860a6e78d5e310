// File path: internal/sqlite/store_test.go
package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inolabs/partsdb/internal/catalog"
)

func testTables() []*catalog.Table {
	return []*catalog.Table{
		{
			Name:    "capacitors",
			Columns: []string{"part_id", "value", "symbol", "footprint"},
			Rows: []catalog.Row{
				{"C1", "100n", "Device:C", "C_0603"},
			},
		},
		{
			Name:    "resistors",
			Columns: []string{"part_id", "value", "symbol", "footprint", "tolerance"},
			Rows: []catalog.Row{
				{"R1", "1k", "Device:R", "R_0603", "±1%"},
				{"R2", "10k", "Device:R", "R_0603", "±5%"},
			},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "parts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRebuildAndQuery(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Rebuild(ctx, testTables()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	categories, err := store.Categories(ctx)
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Table != "capacitors" || categories[0].PartCount != 1 {
		t.Fatalf("unexpected first category: %+v", categories[0])
	}
	if categories[1].Table != "resistors" || categories[1].PartCount != 2 {
		t.Fatalf("unexpected second category: %+v", categories[1])
	}

	parts, err := store.Parts(ctx, "resistors")
	if err != nil {
		t.Fatalf("parts failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0]["part_id"] != "R1" || parts[0]["tolerance"] != "±1%" {
		t.Fatalf("unexpected part row: %v", parts[0])
	}
}

func TestRebuildReplacesTables(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Rebuild(ctx, testTables()); err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	// Second build drops the capacitors category and shrinks resistors.
	next := []*catalog.Table{
		{
			Name:    "resistors",
			Columns: []string{"part_id", "value", "symbol", "footprint"},
			Rows:    []catalog.Row{{"R9", "9k", "Device:R", "R_0603"}},
		},
	}
	if err := store.Rebuild(ctx, next); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}

	parts, err := store.Parts(ctx, "resistors")
	if err != nil {
		t.Fatalf("parts failed: %v", err)
	}
	if len(parts) != 1 || parts[0]["part_id"] != "R9" {
		t.Fatalf("rebuild did not replace rows: %v", parts)
	}
	// The old capacitors table still exists: a rebuild only replaces the
	// tables it is given. Dropping stale categories is the compiler's job,
	// done by building into a fresh file.
}

func TestRebuildEmpty(t *testing.T) {
	store := openTestStore(t)
	if err := store.Rebuild(context.Background(), nil); err != nil {
		t.Fatalf("empty rebuild failed: %v", err)
	}
	categories, err := store.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected no categories, got %v", categories)
	}
}

func TestRebuildKeywordTableName(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	tables := []*catalog.Table{{
		Name:    "select",
		Columns: []string{"part_id", "value", "symbol", "footprint"},
		Rows:    []catalog.Row{{"S1", "x", "Device:R", "R_0603"}},
	}}
	if err := store.Rebuild(ctx, tables); err != nil {
		t.Fatalf("rebuild with keyword table name failed: %v", err)
	}
	parts, err := store.Parts(ctx, "select")
	if err != nil {
		t.Fatalf("parts failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
}

func TestPartsUnknownTable(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Parts(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := OpenWithConfig(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestConfigMergeAndDefaults(t *testing.T) {
	base := Config{}
	base.applyDefaults()
	if base.MaxOpenConns <= 0 || base.BusyTimeout <= 0 {
		t.Fatalf("defaults not applied: %+v", base)
	}
	merged := base.Merge(Config{Path: " parts.db ", MaxOpenConns: 2})
	if merged.Path != "parts.db" {
		t.Fatalf("path not trimmed: %q", merged.Path)
	}
	if merged.MaxOpenConns != 2 {
		t.Fatalf("override not applied: %d", merged.MaxOpenConns)
	}
	if merged.BusyTimeout != base.BusyTimeout {
		t.Fatalf("unset override should keep base value")
	}
}
