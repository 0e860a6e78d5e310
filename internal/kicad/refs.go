// File path: internal/kicad/refs.go

// Package kicad resolves the symbol and footprint references in part tables
// against the libraries on disk. Resolution here is best effort: KiCad is the
// final authority when a part is placed, so every finding is a warning.
package kicad

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inolabs/partsdb/internal/catalog"
)

// symbolName matches the name of a (symbol "...") node in a .kicad_sym
// s-expression. Sub-unit symbols are matched too, which is harmless for a
// membership check.
var symbolName = regexp.MustCompile(`\(\s*symbol\s+"([^"]+)"`)

// Libraries indexes symbol and footprint names by library name.
type Libraries struct {
	// Symbols maps symbol library name to the set of symbols it defines.
	Symbols map[string]map[string]struct{}
	// Footprints maps footprint library name (the .pretty base) to the set
	// of footprints it contains.
	Footprints map[string]map[string]struct{}
}

// Problem is one unresolved reference found in a part table.
type Problem struct {
	Table  string
	PartID string
	Kind   string
	Ref    string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s/%s: unresolved %s %q", p.Table, p.PartID, p.Kind, p.Ref)
}

// LoadLibraries indexes the symbol library at symbolPath (a .kicad_sym file
// or a directory of them) and the footprint libraries under footprintPath
// (a .pretty directory or a directory containing them). Either path may be
// empty, in which case the corresponding check is skipped.
func LoadLibraries(symbolPath, footprintPath string) (*Libraries, error) {
	libs := &Libraries{
		Symbols:    map[string]map[string]struct{}{},
		Footprints: map[string]map[string]struct{}{},
	}
	if symbolPath != "" {
		if err := libs.loadSymbols(symbolPath); err != nil {
			return nil, err
		}
	}
	if footprintPath != "" {
		if err := libs.loadFootprints(footprintPath); err != nil {
			return nil, err
		}
	}
	return libs, nil
}

func (l *Libraries) loadSymbols(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat symbol library %s: %w", path, err)
	}
	if !info.IsDir() {
		return l.loadSymbolFile(path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read symbol library directory %s: %w", path, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".kicad_sym") {
			continue
		}
		if err := l.loadSymbolFile(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (l *Libraries) loadSymbolFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read symbol library %s: %w", path, err)
	}
	libName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	names := l.Symbols[libName]
	if names == nil {
		names = map[string]struct{}{}
		l.Symbols[libName] = names
	}
	for _, match := range symbolName.FindAllStringSubmatch(string(data), -1) {
		names[match[1]] = struct{}{}
	}
	return nil
}

func (l *Libraries) loadFootprints(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".pretty") {
		return l.loadPretty(path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read footprint directory %s: %w", path, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pretty") {
			continue
		}
		if err := l.loadPretty(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (l *Libraries) loadPretty(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read footprint library %s: %w", path, err)
	}
	libName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	names := l.Footprints[libName]
	if names == nil {
		names = map[string]struct{}{}
		l.Footprints[libName] = names
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".kicad_mod") {
			continue
		}
		names[strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))] = struct{}{}
	}
	return nil
}

// Check scans every row of every table for symbol and footprint references
// that do not resolve against the loaded libraries. References into library
// names that were not loaded (e.g. KiCad's stock libraries) are left alone;
// only references we can actually test are reported.
func (l *Libraries) Check(tables []*catalog.Table) []Problem {
	var problems []Problem
	for _, table := range tables {
		for _, row := range table.Rows {
			id := table.Get(row, catalog.ColumnPartID)
			if ref := table.Get(row, catalog.ColumnSymbol); !l.resolves(l.Symbols, ref) {
				problems = append(problems, Problem{Table: table.Name, PartID: id, Kind: "symbol", Ref: ref})
			}
			if ref := table.Get(row, catalog.ColumnFootprint); !l.resolves(l.Footprints, ref) {
				problems = append(problems, Problem{Table: table.Name, PartID: id, Kind: "footprint", Ref: ref})
			}
		}
	}
	return problems
}

// resolves reports whether ref is either untestable (empty index, or a
// library we did not load) or actually present. A bare name with no LIB:
// prefix is searched across every loaded library.
func (l *Libraries) resolves(index map[string]map[string]struct{}, ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if len(index) == 0 {
		return true
	}
	lib, name, found := strings.Cut(ref, ":")
	if !found {
		for _, names := range index {
			if _, ok := names[ref]; ok {
				return true
			}
		}
		return false
	}
	names, ok := index[lib]
	if !ok {
		return true
	}
	_, ok = names[name]
	return ok
}
