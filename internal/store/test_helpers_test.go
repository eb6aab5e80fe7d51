package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/cmdtrack/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record with the given identity and counters.
func createTestRecord(commandID string, day ir.Day, hotkey, palette int64) ir.InvocationRecord {
	return ir.InvocationRecord{
		CommandID:    commandID,
		Day:          day,
		HotkeyCount:  hotkey,
		PaletteCount: palette,
	}
}

// seedRecords inserts n records "cmd-1".."cmd-n" on the same day and returns
// their ids in insertion order.
func seedRecords(t *testing.T, s *Store, n int, day ir.Day) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		id, err := s.Insert(context.Background(), createTestRecord(fmt.Sprintf("cmd-%d", i), day, 1, 0))
		if err != nil {
			t.Fatalf("Insert(cmd-%d) failed: %v", i, err)
		}
		ids = append(ids, id)
	}
	return ids
}
