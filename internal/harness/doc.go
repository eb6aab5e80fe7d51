// Package harness runs end-to-end tracking scenarios against a real store.
//
// A scenario fixes the wall clock, seeds the store, replays a flow of
// invocations, and then checks the stored records and the projections built
// from them.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	today: "2024-01-01"
//	policy:                    # optional, defaults to 2000 records / 60 days
//	  max_records: 2000
//	  retention_days: 60
//	catalogue:
//	  - { id: foo, name: Foo, hotkeys: ["Ctrl+F"] }
//	seed:
//	  - { command_id: old, days_ago: 61, hotkey_count: 1 }
//	  - { command_id: bulk, generate: 2001, day: "2024-01-01" }
//	flow:
//	  - invoke: foo
//	    channel: hotkey
//	  - advance_days: 1
//	  - clear: true
//	assertions:
//	  - type: record_count
//	    count: 1
//	  - type: record
//	    command: foo
//	    day: "2024-01-01"
//	    hotkey_count: 1
//
// # Assertion Types
//
//   - record_count: the store holds exactly count records
//   - record: a record exists for (command, day) with the given counters
//   - no_record: no record exists for command (on day, when given)
//   - record_ids: retained record ids span exactly [min_id, max_id]
//   - projection: the view's rows for command match rows and counters
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite database and a fixed clock set to
// noon UTC on the scenario's today, so traces and golden snapshots are
// identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/two_days.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
