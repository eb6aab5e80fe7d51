package store

import (
	"context"
	"testing"

	"github.com/roach88/cmdtrack/internal/ir"
)

func TestGetAll_Empty(t *testing.T) {
	s := createTestStore(t)

	records, err := s.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if records == nil {
		t.Error("records is nil, want empty slice")
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestGetAll_OrderedByRecordID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Insert days out of order; result must follow insertion order.
	days := []ir.Day{20240105, 20240101, 20240103}
	for _, day := range days {
		if _, err := s.Insert(ctx, createTestRecord("foo", day, 1, 0)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", day, err)
		}
	}

	records, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	for i, rec := range records {
		if rec.Day != days[i] {
			t.Errorf("records[%d].Day = %d, want %d", i, rec.Day, days[i])
		}
		if i > 0 && rec.RecordID <= records[i-1].RecordID {
			t.Errorf("records not ordered by record_id: %+v", records)
		}
	}
}

func TestCount(t *testing.T) {
	s := createTestStore(t)
	seedRecords(t, s, 7, 20240101)

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 7 {
		t.Errorf("Count() = %d, want 7", n)
	}
}

func TestFindByDayAndCommand(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	s.Insert(ctx, createTestRecord("foo", 20240101, 1, 0))
	s.Insert(ctx, createTestRecord("bar", 20240101, 0, 2))
	s.Insert(ctx, createTestRecord("bar", 20240102, 5, 0))

	rec, found, err := s.FindByDayAndCommand(ctx, 20240101, "bar")
	if err != nil {
		t.Fatalf("FindByDayAndCommand() failed: %v", err)
	}
	if !found {
		t.Fatal("expected record for (20240101, bar)")
	}
	if rec.CommandID != "bar" || rec.Day != 20240101 || rec.PaletteCount != 2 {
		t.Errorf("found = %+v", rec)
	}
}

func TestFindByDayAndCommand_Missing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	s.Insert(ctx, createTestRecord("foo", 20240101, 1, 0))

	tests := []struct {
		name    string
		day     ir.Day
		command string
	}{
		{"other command same day", 20240101, "bar"},
		{"same command other day", 20240102, "foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found, err := s.FindByDayAndCommand(ctx, tt.day, tt.command)
			if err != nil {
				t.Fatalf("FindByDayAndCommand() failed: %v", err)
			}
			if found {
				t.Error("expected no record")
			}
		})
	}
}
