package store

import (
	"context"
	"fmt"

	"github.com/roach88/cmdtrack/internal/ir"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetAll returns every record ordered by record_id ascending.
//
// Returns an empty slice (not nil) when the store holds no records.
func (s *Store) GetAll(ctx context.Context) ([]ir.InvocationRecord, error) {
	db, err := s.acquire("get all")
	if err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	rows, err := db.QueryContext(ctx, `
		SELECT record_id, command_id, day, hotkey_count, palette_count
		FROM commands
		ORDER BY record_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []ir.InvocationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.acquire("count")
	if err != nil {
		return 0, err
	}
	defer s.mu.RUnlock()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commands`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// FindByDayAndCommand returns the record for (day, commandID), if any.
//
// The lookup scans the day index and filters on command_id, so it stays
// correct even on a database that predates the compound index.
func (s *Store) FindByDayAndCommand(ctx context.Context, day ir.Day, commandID string) (ir.InvocationRecord, bool, error) {
	db, err := s.acquire("find by day and command")
	if err != nil {
		return ir.InvocationRecord{}, false, err
	}
	defer s.mu.RUnlock()

	rows, err := db.QueryContext(ctx, `
		SELECT record_id, command_id, day, hotkey_count, palette_count
		FROM commands
		WHERE day = ?
		ORDER BY record_id ASC
	`, int64(day))
	if err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("query day %d: %w", int64(day), err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return ir.InvocationRecord{}, false, err
		}
		if rec.CommandID == commandID {
			return rec, true, nil
		}
	}

	if err := rows.Err(); err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("iterate day %d: %w", int64(day), err)
	}
	return ir.InvocationRecord{}, false, nil
}

// scanRecord reads one commands row.
func scanRecord(row rowScanner) (ir.InvocationRecord, error) {
	var (
		rec ir.InvocationRecord
		day int64
	)
	if err := row.Scan(&rec.RecordID, &rec.CommandID, &day, &rec.HotkeyCount, &rec.PaletteCount); err != nil {
		return ir.InvocationRecord{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Day = ir.Day(day)
	return rec, nil
}
