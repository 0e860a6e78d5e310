// File path: internal/compiler/compiler.go

// Package compiler drives one library build: CSV category tables in, SQLite
// database and .kicad_dbl descriptor out. A build is a pure, synchronous,
// full rebuild; both artifacts are replaced atomically, so a failed run
// leaves whatever was there before.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inolabs/partsdb/internal/catalog"
	"github.com/inolabs/partsdb/internal/common"
	"github.com/inolabs/partsdb/internal/config"
	"github.com/inolabs/partsdb/internal/dbl"
	"github.com/inolabs/partsdb/internal/kicad"
	"github.com/inolabs/partsdb/internal/sqlite"
)

// Result summarises a completed build.
type Result struct {
	Tables   int
	Parts    int
	Problems []kicad.Problem
}

// Compile runs one full build per the configuration. An empty CSV directory
// is valid and produces an empty database and descriptor.
func Compile(ctx context.Context, cfg config.Config) (*Result, error) {
	logger := common.Logger()

	tables, err := catalog.ReadDir(cfg.CSVDir)
	if err != nil {
		return nil, err
	}

	if err := writeDatabase(ctx, cfg.Database, tables); err != nil {
		return nil, err
	}

	doc := dbl.Build(tables, dbl.Options{
		Name:           cfg.Name,
		Description:    cfg.Description,
		DatabaseFile:   cfg.Database,
		TimeoutSeconds: cfg.TimeoutSeconds,
		VisibleColumns: cfg.VisibleColumns,
	})
	if err := doc.WriteFile(cfg.Descriptor); err != nil {
		return nil, err
	}

	result := &Result{Tables: len(tables)}
	for _, table := range tables {
		result.Parts += len(table.Rows)
		logger.Info("compiler: table written", "table", table.Name, "parts", len(table.Rows), "source", table.Source)
	}

	if cfg.CheckReferences {
		libs, err := kicad.LoadLibraries(cfg.Symbols, cfg.Footprints)
		if err != nil {
			// Reference resolution is best effort end to end.
			logger.Warn("compiler: reference check unavailable", "error", err)
		} else {
			result.Problems = libs.Check(tables)
			for _, problem := range result.Problems {
				logger.Warn("compiler: unresolved reference",
					"table", problem.Table, "part_id", problem.PartID,
					"kind", problem.Kind, "ref", problem.Ref)
			}
		}
	}

	logger.Info("compiler: build complete",
		"tables", result.Tables, "parts", result.Parts,
		"database", cfg.Database, "descriptor", cfg.Descriptor)
	return result, nil
}

// writeDatabase builds the database in a temporary file next to the target
// and renames it into place once every table is committed. The rename is the
// only moment the host tool can observe a change.
func writeDatabase(ctx context.Context, path string, tables []*catalog.Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create database temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close database temp file: %w", err)
	}

	store, err := sqlite.Open(tmpName)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := store.Rebuild(ctx, tables); err != nil {
		store.Close()
		os.Remove(tmpName)
		return err
	}
	if err := store.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close database: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace database %s: %w", path, err)
	}
	return nil
}
