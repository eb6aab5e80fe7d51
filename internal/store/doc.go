// Package store provides SQLite-backed durable storage for invocation records.
//
// The store holds exactly one record shape, one row per (command, day):
//   - record_id: surrogate key, AUTOINCREMENT, never reused
//   - command_id: stable command identifier (indexed)
//   - day: YYYYMMDD integer (indexed)
//   - hotkey_count / palette_count: non-negative counters
//
// # Critical Patterns
//
// One Record Per (command, day)
//   - UNIQUE(command_id, day) index, added by migration v1
//   - Upsert claims the slot atomically inside one transaction
//
// Insertion Order As Age
//   - GetAll is always ORDER BY record_id ASC
//   - Count-based eviction deletes by record_id range
//
// Explicit Lifecycle
//   - A Store is open, closed or destroyed (see State)
//   - Every data operation on a non-open Store fails with ErrCodeUnavailable
//   - Directory tracks open handles per installation so a destructive
//     delete can force them closed first
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
