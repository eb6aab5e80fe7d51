// Package tracker implements ingestion: it turns one command invocation into
// one store mutation.
//
// Per invocation of (commandID, channel):
//  1. If tracking is disabled, return without touching the store.
//  2. Enforce the retention policy against the current store state.
//  3. Compute today as a YYYYMMDD day from the tracker's clock.
//  4. Upsert the (commandID, today) record, incrementing exactly the
//     counter selected by channel.
//
// Steps 2-4 run under one mutex, so two invocations from the same process
// (hotkey path and palette path) never interleave. The upsert itself is one
// SQLite transaction keyed by the UNIQUE(command_id, day) index, so separate
// processes cannot create duplicate records either.
//
// Hosts integrate through OnInvocation (or Hook), which logs and swallows
// failures: recording is a side effect of running a command and must never
// stop the command from running.
package tracker
