package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/retention"
)

// Store is the subset of store.Store that ingestion needs.
type Store interface {
	retention.Store
	Upsert(ctx context.Context, commandID string, day ir.Day, delta ir.Counters) (ir.InvocationRecord, bool, error)
}

// Tracker records command invocations into a Store.
//
// Thread-safety: Record and OnInvocation are safe from any goroutine.
// The retention-then-upsert sequence is serialized by an internal mutex.
type Tracker struct {
	store   Store
	policy  retention.Policy
	clock   Clock
	enabled func() bool
	logger  *slog.Logger

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy sets the retention policy.
//
// Default: retention.DefaultPolicy() (2000 records, 60 days)
func WithPolicy(p retention.Policy) Option {
	return func(t *Tracker) {
		t.policy = p
	}
}

// WithClock sets the clock used to compute today.
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithEnabled sets the tracking gate. It is consulted on every invocation,
// so a settings change takes effect without rebuilding the tracker.
func WithEnabled(fn func() bool) Option {
	return func(t *Tracker) {
		t.enabled = fn
	}
}

// New creates a Tracker writing to st.
func New(st Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   st,
		policy:  retention.DefaultPolicy(),
		clock:   SystemClock{},
		enabled: func() bool { return true },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Result describes the effect of one Record call.
type Result struct {
	// Skipped is true when tracking was disabled and nothing was written.
	Skipped bool

	// Created is true when the invocation started a new (command, day) record.
	Created bool

	// Record is the stored record after the increment.
	Record ir.InvocationRecord

	// Retention reports what the policy evicted before the write.
	Retention retention.Result
}

// Enabled reports whether tracking is currently on.
func (t *Tracker) Enabled() bool {
	return t.enabled()
}

// Today returns the current day from the tracker's clock.
func (t *Tracker) Today() ir.Day {
	return ir.DayOf(t.clock.Now())
}

// Record ingests one invocation of commandID on channel.
//
// Store failures are returned wrapped, never retried.
func (t *Tracker) Record(ctx context.Context, commandID string, channel ir.Channel) (Result, error) {
	if !t.enabled() {
		t.logger.Debug("tracking disabled, invocation ignored", "command", commandID)
		return Result{Skipped: true}, nil
	}
	if strings.TrimSpace(commandID) == "" {
		return Result{}, fmt.Errorf("record: command id is required")
	}
	if !channel.Valid() {
		return Result{}, fmt.Errorf("record %s: invalid channel %q", commandID, channel)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.Today()

	evicted, err := t.policy.Enforce(ctx, t.store, today)
	if err != nil {
		return Result{}, fmt.Errorf("record %s: %w", commandID, err)
	}
	if evicted.Evicted() > 0 {
		t.logger.Info("retention evicted records",
			"count_evicted", evicted.CountEvicted,
			"count_cutoff", evicted.CountCutoff,
			"age_evicted", evicted.AgeEvicted,
			"age_cutoff", int64(evicted.AgeCutoff),
		)
	}

	rec, created, err := t.store.Upsert(ctx, commandID, today, ir.CountersFor(channel))
	if err != nil {
		return Result{}, fmt.Errorf("record %s: %w", commandID, err)
	}

	t.logger.Debug("invocation recorded",
		"command", commandID,
		"channel", string(channel),
		"day", int64(today),
		"record_id", rec.RecordID,
		"created", created,
	)

	return Result{
		Created:   created,
		Record:    rec,
		Retention: evicted,
	}, nil
}

// OnInvocation is the host callback boundary. It records the invocation and
// logs, rather than returns, any failure.
func (t *Tracker) OnInvocation(ctx context.Context, commandID string, channel ir.Channel) {
	if _, err := t.Record(ctx, commandID, channel); err != nil {
		t.logger.Warn("failed to record invocation",
			"command", commandID,
			"channel", string(channel),
			"error", err,
		)
	}
}

// Hook adapts t to a plain callback for hosts that register
// func(commandID, channel) observers.
func Hook(t *Tracker) func(commandID string, channel ir.Channel) {
	return func(commandID string, channel ir.Channel) {
		t.OnInvocation(context.Background(), commandID, channel)
	}
}
