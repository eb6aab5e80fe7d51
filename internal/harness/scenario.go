package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
)

// Scenario defines an end-to-end tracking scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today is the clock's starting day ("YYYY-MM-DD" or "YYYYMMDD").
	Today string `yaml:"today"`

	// Policy overrides the default retention thresholds.
	Policy *PolicySpec `yaml:"policy,omitempty"`

	// Catalogue lists the commands projections render.
	Catalogue []ir.CommandDescriptor `yaml:"catalogue,omitempty"`

	// Seed records are inserted directly, in order, before the flow. They
	// bypass ingestion and retention.
	Seed []SeedRecord `yaml:"seed,omitempty"`

	// Flow contains the steps to replay.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final store and projections.
	Assertions []Assertion `yaml:"assertions"`
}

// PolicySpec sets retention thresholds. Zero disables a bound.
type PolicySpec struct {
	MaxRecords    int `yaml:"max_records"`
	RetentionDays int `yaml:"retention_days"`
}

// SeedRecord is a record inserted before the flow runs.
type SeedRecord struct {
	CommandID string `yaml:"command_id"`

	// Day is absolute; DaysAgo is relative to Today. Day wins when both
	// are set; neither means Today.
	Day     string `yaml:"day,omitempty"`
	DaysAgo int    `yaml:"days_ago,omitempty"`

	HotkeyCount  int64 `yaml:"hotkey_count,omitempty"`
	PaletteCount int64 `yaml:"palette_count,omitempty"`

	// Generate inserts this many records instead of one, with command ids
	// "<command_id>-0001", "<command_id>-0002", ... and hotkey_count 1
	// unless counters are given.
	Generate int `yaml:"generate,omitempty"`
}

// Step is one flow step. Exactly one of Invoke, AdvanceDays or Clear is set.
type Step struct {
	// Invoke is the command id to ingest.
	Invoke string `yaml:"invoke,omitempty"`

	// Channel is "hotkey" (default) or "palette".
	Channel string `yaml:"channel,omitempty"`

	// Repeat ingests Invoke this many times (default 1).
	Repeat int `yaml:"repeat,omitempty"`

	// AdvanceDays moves the clock forward.
	AdvanceDays int `yaml:"advance_days,omitempty"`

	// Clear deletes every record.
	Clear bool `yaml:"clear,omitempty"`
}

// Assertion validates the final store or a projection.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_count": Count records
	// - "record": Check one (command, day) record and its counters
	// - "no_record": Check a command has no record (on day, when given)
	// - "record_ids": Check the retained id range
	// - "projection": Check a view's rows for one command
	Type string `yaml:"type"`

	// Count is the expected number of records (used by record_count).
	Count *int `yaml:"count,omitempty"`

	// Command is the command id (used by record, no_record, projection).
	Command string `yaml:"command,omitempty"`

	// Day selects the record (used by record, no_record, projection).
	Day string `yaml:"day,omitempty"`

	// HotkeyCount and PaletteCount are the expected counters (used by
	// record and projection). Nil skips the check.
	HotkeyCount  *int64 `yaml:"hotkey_count,omitempty"`
	PaletteCount *int64 `yaml:"palette_count,omitempty"`

	// MinID and MaxID bound the retained ids (used by record_ids).
	MinID int64 `yaml:"min_id,omitempty"`
	MaxID int64 `yaml:"max_id,omitempty"`

	// View selects the projection (used by projection).
	View string `yaml:"view,omitempty"`

	// Rows is the expected number of rows for Command (used by projection).
	Rows *int `yaml:"rows,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount = "record_count"
	AssertRecord      = "record"
	AssertNoRecord    = "no_record"
	AssertRecordIDs   = "record_ids"
	AssertProjection  = "projection"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := ir.ParseDay(s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, seed := range s.Seed {
		if seed.CommandID == "" {
			return fmt.Errorf("seed[%d]: command_id is required", i)
		}
		if seed.Day != "" {
			if _, err := ir.ParseDay(seed.Day); err != nil {
				return fmt.Errorf("seed[%d]: %w", i, err)
			}
		}
		if seed.Generate < 0 || seed.DaysAgo < 0 {
			return fmt.Errorf("seed[%d]: generate and days_ago must be non-negative", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Catalogue) > 0); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	set := 0
	if step.Invoke != "" {
		set++
	}
	if step.AdvanceDays != 0 {
		set++
	}
	if step.Clear {
		set++
	}
	if set != 1 {
		return fmt.Errorf("flow[%d]: exactly one of invoke, advance_days, clear is required", index)
	}

	if step.Invoke != "" && step.Channel != "" {
		if _, err := ir.ParseChannel(step.Channel); err != nil {
			return fmt.Errorf("flow[%d]: %w", index, err)
		}
	}
	if step.Repeat < 0 {
		return fmt.Errorf("flow[%d]: repeat must be non-negative", index)
	}
	if step.AdvanceDays < 0 {
		return fmt.Errorf("flow[%d]: advance_days must be positive", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, hasCatalogue bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Day != "" {
		if _, err := ir.ParseDay(a.Day); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertRecordCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for record_count", index)
		}
	case AssertRecord:
		if a.Command == "" || a.Day == "" {
			return fmt.Errorf("assertions[%d]: command and day are required for record", index)
		}
	case AssertNoRecord:
		if a.Command == "" {
			return fmt.Errorf("assertions[%d]: command is required for no_record", index)
		}
	case AssertRecordIDs:
		if a.MinID <= 0 || a.MaxID < a.MinID {
			return fmt.Errorf("assertions[%d]: 0 < min_id <= max_id is required for record_ids", index)
		}
	case AssertProjection:
		if !hasCatalogue {
			return fmt.Errorf("assertions[%d]: projection assertions need a catalogue", index)
		}
		if _, err := projection.ParseViewKind(a.View); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Command == "" {
			return fmt.Errorf("assertions[%d]: command is required for projection", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
