package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/cmdtrack/internal/ir"
)

// Insert adds a new record and returns its assigned record_id.
// rec.RecordID is ignored. Inserting a second record for an existing
// (command_id, day) pair fails on the UNIQUE index; ingestion uses Upsert.
func (s *Store) Insert(ctx context.Context, rec ir.InvocationRecord) (int64, error) {
	if err := validateRecord(rec); err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	db, err := s.acquire("insert record")
	if err != nil {
		return 0, err
	}
	defer s.mu.RUnlock()

	result, err := db.ExecContext(ctx, `
		INSERT INTO commands (command_id, day, hotkey_count, palette_count)
		VALUES (?, ?, ?, ?)
	`,
		rec.CommandID,
		int64(rec.Day),
		rec.HotkeyCount,
		rec.PaletteCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert record: last insert id: %w", err)
	}
	return id, nil
}

// UpdateCounters adds delta to the counters of an existing record. Only the
// counters named by delta change. A record_id that no longer exists (evicted
// between lookup and write) is silently ignored.
func (s *Store) UpdateCounters(ctx context.Context, recordID int64, delta ir.Counters) error {
	if delta.IsZero() {
		return nil
	}

	db, err := s.acquire("update counters")
	if err != nil {
		return err
	}
	defer s.mu.RUnlock()

	_, err = db.ExecContext(ctx, `
		UPDATE commands
		SET hotkey_count = MAX(hotkey_count + ?, 0),
		    palette_count = MAX(palette_count + ?, 0)
		WHERE record_id = ?
	`,
		delta.Hotkey,
		delta.Palette,
		recordID,
	)
	if err != nil {
		return fmt.Errorf("update counters %d: %w", recordID, err)
	}
	return nil
}

// Upsert finds or creates the record for (commandID, day) and applies delta
// in one transaction. Returns the stored record and whether it was created.
//
// This is the atomic replacement for the lookup-then-insert-or-update
// sequence: the UNIQUE(command_id, day) index claims the slot, so two
// concurrent callers can never both insert.
func (s *Store) Upsert(ctx context.Context, commandID string, day ir.Day, delta ir.Counters) (rec ir.InvocationRecord, created bool, err error) {
	if err := validateRecord(ir.InvocationRecord{
		CommandID:    commandID,
		Day:          day,
		HotkeyCount:  delta.Hotkey,
		PaletteCount: delta.Palette,
	}); err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: %w", err)
	}

	db, err := s.acquire("upsert record")
	if err != nil {
		return ir.InvocationRecord{}, false, err
	}
	defer s.mu.RUnlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO commands (command_id, day, hotkey_count, palette_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(command_id, day) DO NOTHING
	`,
		commandID,
		int64(day),
		delta.Hotkey,
		delta.Palette,
	)
	if err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: last insert id: %w", err)
		}
		rec = ir.InvocationRecord{
			RecordID:     id,
			CommandID:    commandID,
			Day:          day,
			HotkeyCount:  delta.Hotkey,
			PaletteCount: delta.Palette,
		}
		created = true
	} else {
		// Conflict - the slot exists, increment it in place
		row := tx.QueryRowContext(ctx, `
			UPDATE commands
			SET hotkey_count = hotkey_count + ?,
			    palette_count = palette_count + ?
			WHERE command_id = ? AND day = ?
			RETURNING record_id, command_id, day, hotkey_count, palette_count
		`,
			delta.Hotkey,
			delta.Palette,
			commandID,
			int64(day),
		)
		rec, err = scanRecord(row)
		if err != nil {
			return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ir.InvocationRecord{}, false, fmt.Errorf("upsert record: commit: %w", err)
	}
	return rec, created, nil
}

// DeleteBelowRecordID deletes every record whose record_id is strictly
// less than bound. Used for count-based eviction.
func (s *Store) DeleteBelowRecordID(ctx context.Context, bound int64) (int64, error) {
	return s.deleteWhere(ctx, "delete below record id", "record_id < ?", bound)
}

// DeleteThroughDay deletes every record whose day is less than or equal to
// bound. Used for age-based eviction.
func (s *Store) DeleteThroughDay(ctx context.Context, bound ir.Day) (int64, error) {
	return s.deleteWhere(ctx, "delete through day", "day <= ?", int64(bound))
}

// ClearAll deletes every record. record_id values keep increasing afterwards.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	return s.deleteWhere(ctx, "clear all", "1 = 1")
}

func (s *Store) deleteWhere(ctx context.Context, op, where string, args ...any) (int64, error) {
	db, err := s.acquire(op)
	if err != nil {
		return 0, err
	}
	defer s.mu.RUnlock()

	result, err := db.ExecContext(ctx, "DELETE FROM commands WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}

func validateRecord(rec ir.InvocationRecord) error {
	if strings.TrimSpace(rec.CommandID) == "" {
		return fmt.Errorf("command id is required")
	}
	if !rec.Day.Valid() {
		return fmt.Errorf("invalid day %d", int64(rec.Day))
	}
	if rec.HotkeyCount < 0 || rec.PaletteCount < 0 {
		return fmt.Errorf("counters must be non-negative (hotkey=%d, palette=%d)", rec.HotkeyCount, rec.PaletteCount)
	}
	return nil
}
