// File path: internal/sqlite/queries.go
package sqlite

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTable indicates a category table that does not exist in the
// compiled database.
var ErrUnknownTable = errors.New("unknown category table")

// CategoryInfo summarises one compiled category table.
type CategoryInfo struct {
	Table     string `db:"name" json:"table"`
	PartCount int    `db:"-" json:"part_count"`
}

// Categories lists the compiled category tables with their part counts.
func (s *Store) Categories(ctx context.Context) ([]CategoryInfo, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	infos := []CategoryInfo{}
	if err := s.db.SelectContext(ctx, &infos,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select tables: %w", err)
	}
	for i := range infos {
		var count int
		if err := s.db.GetContext(ctx, &count,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(infos[i].Table))); err != nil {
			return nil, fmt.Errorf("count rows of %s: %w", infos[i].Table, err)
		}
		infos[i].PartCount = count
	}
	return infos, nil
}

// HasTable reports whether the named category table exists.
func (s *Store) HasTable(ctx context.Context, table string) (bool, error) {
	if err := s.ensureReady(); err != nil {
		return false, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return count > 0, nil
}

// Parts returns every row of a category table as column->value maps, in
// primary key order. All values are TEXT by construction.
func (s *Store) Parts(ctx context.Context, table string) ([]map[string]string, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ok, err := s.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTable, table)
	}
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY 1", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("select parts of %s: %w", table, err)
	}
	defer rows.Close()

	parts := []map[string]string{}
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan part row of %s: %w", table, err)
		}
		part := make(map[string]string, len(raw))
		for col, val := range raw {
			switch v := val.(type) {
			case nil:
				part[col] = ""
			case []byte:
				part[col] = string(v)
			case string:
				part[col] = v
			default:
				part[col] = fmt.Sprint(v)
			}
		}
		parts = append(parts, part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts of %s: %w", table, err)
	}
	return parts, nil
}
