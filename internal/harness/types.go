package harness

import (
	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
)

// Trace event types.
const (
	EventInvoke  = "invoke"
	EventAdvance = "advance"
	EventClear   = "clear"
)

// TraceEvent records the effect of one flow step.
type TraceEvent struct {
	Seq          int64  `json:"seq"`
	Type         string `json:"type"` // "invoke", "advance" or "clear"
	Command      string `json:"command,omitempty"`
	Channel      string `json:"channel,omitempty"`
	Day          ir.Day `json:"day"`
	RecordID     int64  `json:"record_id,omitempty"`
	Created      bool   `json:"created,omitempty"`
	HotkeyCount  int64  `json:"hotkey_count,omitempty"`
	PaletteCount int64  `json:"palette_count,omitempty"`
	Evicted      int64  `json:"evicted,omitempty"`
	Deleted      int64  `json:"deleted,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains one event per executed flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the store content after the flow.
	Records []ir.InvocationRecord `json:"records"`

	// Projections holds both views keyed by view kind. Empty when the
	// scenario has no catalogue.
	Projections map[projection.ViewKind][]projection.Row `json:"projections,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		Errors:      []string{},
		Records:     []ir.InvocationRecord{},
		Projections: make(map[projection.ViewKind][]projection.Row),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends ev with the next sequence number.
func (r *Result) addTrace(ev TraceEvent) {
	ev.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, ev)
}
