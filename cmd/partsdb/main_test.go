// File path: cmd/partsdb/main_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inolabs/partsdb/internal/config"
)

func brokenConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	csvDir := filepath.Join(dir, "Database")
	if err := os.Mkdir(csvDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Missing the footprint column, so the build must fail.
	if err := os.WriteFile(filepath.Join(csvDir, "broken.csv"),
		[]byte("part_id,value,symbol\nX,1,Device:R\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	cfg := config.Default()
	cfg.CSVDir = csvDir
	cfg.Database = filepath.Join(dir, "components.db")
	cfg.Descriptor = filepath.Join(dir, "components.kicad_dbl")
	return cfg
}

func TestInitialBuildFailureIsFatal(t *testing.T) {
	if err := initialBuild(context.Background(), brokenConfig(t), false); err == nil {
		t.Fatal("expected error without watch mode")
	}
}

func TestInitialBuildFailureToleratedInWatchMode(t *testing.T) {
	// Watch mode keeps the process alive: the user fixes the CSV and the
	// watcher rebuilds, so the initial failure must not abort startup.
	if err := initialBuild(context.Background(), brokenConfig(t), true); err != nil {
		t.Fatalf("watch mode should tolerate a failed initial build, got %v", err)
	}
}

func TestInitialBuildSuccess(t *testing.T) {
	cfg := brokenConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.CSVDir, "broken.csv"),
		[]byte("part_id,value,symbol,footprint\nR1,1k,Device:R,R_0603\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := initialBuild(context.Background(), cfg, false); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := os.Stat(cfg.Database); err != nil {
		t.Fatalf("database not written: %v", err)
	}
}
