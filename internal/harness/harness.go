package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
	"github.com/roach88/cmdtrack/internal/retention"
	"github.com/roach88/cmdtrack/internal/store"
	"github.com/roach88/cmdtrack/internal/testutil"
	"github.com/roach88/cmdtrack/internal/tracker"
)

// Harness is the test execution engine.
// It runs scenarios against a real store and tracker with a fixed clock.
type Harness struct {
	store   *store.Store
	tracker *tracker.Tracker
	clock   *testutil.FixedClock
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and fixed clock
// 2. Insert seed records
// 3. Execute flow steps through the tracker
// 4. Snapshot records and build projections
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	today, err := ir.ParseDay(scenario.Today)
	if err != nil {
		return nil, fmt.Errorf("invalid today: %w", err)
	}
	clock := testutil.NewFixedClockOnDay(today.Year(), today.Month(), today.Date())

	policy := retention.DefaultPolicy()
	if scenario.Policy != nil {
		policy = retention.Policy{
			MaxRecords:    scenario.Policy.MaxRecords,
			RetentionDays: scenario.Policy.RetentionDays,
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	h := &Harness{
		store: st,
		tracker: tracker.New(st,
			tracker.WithPolicy(policy),
			tracker.WithClock(clock),
			tracker.WithLogger(logger),
		),
		clock:  clock,
		logger: logger,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSeed(ctx, today, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to execute seed: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	records, err := st.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	result.Records = records

	if len(scenario.Catalogue) > 0 {
		for _, kind := range projection.ValidViewKinds {
			rows, err := projection.Build(kind, scenario.Catalogue, records)
			if err != nil {
				return nil, fmt.Errorf("failed to build %s projection: %w", kind, err)
			}
			result.Projections[kind] = rows
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSeed inserts the seed records directly into the store.
func (h *Harness) executeSeed(ctx context.Context, today ir.Day, seeds []SeedRecord) error {
	for i, seed := range seeds {
		day := today.AddDays(-seed.DaysAgo)
		if seed.Day != "" {
			d, err := ir.ParseDay(seed.Day)
			if err != nil {
				return fmt.Errorf("seed[%d]: %w", i, err)
			}
			day = d
		}

		if seed.Generate == 0 {
			rec := ir.InvocationRecord{
				CommandID:    seed.CommandID,
				Day:          day,
				HotkeyCount:  seed.HotkeyCount,
				PaletteCount: seed.PaletteCount,
			}
			if _, err := h.store.Insert(ctx, rec); err != nil {
				return fmt.Errorf("seed[%d]: %w", i, err)
			}
			continue
		}

		hotkey, palette := seed.HotkeyCount, seed.PaletteCount
		if hotkey == 0 && palette == 0 {
			hotkey = 1
		}
		for n := 1; n <= seed.Generate; n++ {
			rec := ir.InvocationRecord{
				CommandID:    fmt.Sprintf("%s-%04d", seed.CommandID, n),
				Day:          day,
				HotkeyCount:  hotkey,
				PaletteCount: palette,
			}
			if _, err := h.store.Insert(ctx, rec); err != nil {
				return fmt.Errorf("seed[%d] #%d: %w", i, n, err)
			}
		}
	}
	return nil
}

// executeFlow runs each step and records its effect in the trace.
func (h *Harness) executeFlow(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		switch {
		case step.Invoke != "":
			channel := ir.ChannelHotkey
			if step.Channel != "" {
				ch, err := ir.ParseChannel(step.Channel)
				if err != nil {
					return fmt.Errorf("flow[%d]: %w", i, err)
				}
				channel = ch
			}
			repeat := step.Repeat
			if repeat == 0 {
				repeat = 1
			}
			for n := 0; n < repeat; n++ {
				res, err := h.tracker.Record(ctx, step.Invoke, channel)
				if err != nil {
					return fmt.Errorf("flow[%d]: %w", i, err)
				}
				result.addTrace(TraceEvent{
					Type:         EventInvoke,
					Command:      step.Invoke,
					Channel:      string(channel),
					Day:          res.Record.Day,
					RecordID:     res.Record.RecordID,
					Created:      res.Created,
					HotkeyCount:  res.Record.HotkeyCount,
					PaletteCount: res.Record.PaletteCount,
					Evicted:      res.Retention.Evicted(),
				})
			}

		case step.AdvanceDays > 0:
			h.clock.AdvanceDays(step.AdvanceDays)
			result.addTrace(TraceEvent{
				Type: EventAdvance,
				Day:  h.tracker.Today(),
			})

		case step.Clear:
			n, err := h.store.ClearAll(ctx)
			if err != nil {
				return fmt.Errorf("flow[%d]: %w", i, err)
			}
			result.addTrace(TraceEvent{
				Type:    EventClear,
				Day:     h.tracker.Today(),
				Deleted: n,
			})
		}
	}
	return nil
}
