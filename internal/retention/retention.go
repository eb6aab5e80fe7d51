// Package retention keeps the record store bounded in size and age.
//
// The policy is evaluated on every ingestion, before the new invocation is
// written, never on a background timer. Two independent bounds apply, count
// first:
//
//   - Count bound: once the store holds MaxRecords or more records, the
//     oldest records (by record_id) are evicted until MaxRecords-1 remain,
//     leaving room for the write that follows.
//   - Age bound: records whose day is on or before today-RetentionDays are
//     evicted.
//
// Both evaluations are O(n) in the record count, which the count bound caps.
package retention

import (
	"context"
	"fmt"

	"github.com/roach88/cmdtrack/internal/ir"
)

const (
	// DefaultMaxRecords is the count bound.
	DefaultMaxRecords = 2000

	// DefaultRetentionDays is the age bound in calendar days.
	DefaultRetentionDays = 60
)

// Store is the subset of store.Store the policy needs.
type Store interface {
	GetAll(ctx context.Context) ([]ir.InvocationRecord, error)
	DeleteBelowRecordID(ctx context.Context, bound int64) (int64, error)
	DeleteThroughDay(ctx context.Context, bound ir.Day) (int64, error)
}

// Policy holds the two retention thresholds. A non-positive threshold
// disables its bound.
type Policy struct {
	MaxRecords    int
	RetentionDays int
}

// DefaultPolicy returns the 2000 record / 60 day policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRecords:    DefaultMaxRecords,
		RetentionDays: DefaultRetentionDays,
	}
}

// Result reports what one enforcement pass evicted.
type Result struct {
	CountEvicted int64  // records removed by the count bound
	CountCutoff  int64  // record_id bound used (0 when the bound did not trigger)
	AgeEvicted   int64  // records removed by the age bound
	AgeCutoff    ir.Day // inclusive day bound used (0 when disabled)
}

// Evicted returns the total number of records removed.
func (r Result) Evicted() int64 {
	return r.CountEvicted + r.AgeEvicted
}

// CountCutoff returns the record_id below which records must be evicted, and
// whether the count bound triggered at all. records must be ordered by
// record_id ascending, as GetAll returns them.
//
// The cutoff is the id of the first survivor rather than an offset from the
// oldest id, so gaps left by earlier evictions do not skew it.
func (p Policy) CountCutoff(records []ir.InvocationRecord) (int64, bool) {
	n := len(records)
	if p.MaxRecords <= 0 || n < p.MaxRecords {
		return 0, false
	}
	excess := n - p.MaxRecords + 1
	if excess >= n {
		// MaxRecords of 1: nothing survives.
		return records[n-1].RecordID + 1, true
	}
	return records[excess].RecordID, true
}

// AgeCutoff returns the inclusive day bound for age eviction, or zero when
// the age bound is disabled.
func (p Policy) AgeCutoff(today ir.Day) ir.Day {
	if p.RetentionDays <= 0 {
		return 0
	}
	return today.AddDays(-p.RetentionDays)
}

// Enforce applies the count bound and then the age bound against st.
// Store errors are returned unchanged apart from wrapping.
func (p Policy) Enforce(ctx context.Context, st Store, today ir.Day) (Result, error) {
	var result Result

	if p.MaxRecords > 0 {
		records, err := st.GetAll(ctx)
		if err != nil {
			return result, fmt.Errorf("retention: read records: %w", err)
		}
		if cutoff, ok := p.CountCutoff(records); ok {
			n, err := st.DeleteBelowRecordID(ctx, cutoff)
			if err != nil {
				return result, fmt.Errorf("retention: count eviction: %w", err)
			}
			result.CountEvicted = n
			result.CountCutoff = cutoff
		}
	}

	if cutoffDay := p.AgeCutoff(today); !cutoffDay.IsZero() {
		n, err := st.DeleteThroughDay(ctx, cutoffDay)
		if err != nil {
			return result, fmt.Errorf("retention: age eviction: %w", err)
		}
		result.AgeEvicted = n
		result.AgeCutoff = cutoffDay
	}

	return result, nil
}
