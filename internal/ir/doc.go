// Package ir defines the record shape shared by every cmdtrack package.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - One persisted shape: InvocationRecord, one row per (command, day)
//   - Days are YYYYMMDD integers so range deletes need no date parsing
//   - Counters are int64 and never negative
//   - All JSON tags use snake_case
package ir
