// Package store provides the two backends a day's meal records can live in.
//
//   - RecordStore: SQLite-backed durable storage, one table keyed by the
//     canonical "YYYY-MM-DD" date string.
//   - MemoryStore: a process-local map with the same contract, used when the
//     database is unavailable. Nothing survives a restart.
//
// Both implement Backend. Choosing between them is the caller's job; this
// package never falls back on its own.
//
// # Connection lifecycle
//
// A RecordStore moves Unopened → Opening → {Ready, Failed}. Only one open
// attempt runs at a time and concurrent Open callers all observe its result.
// The schema upgrade runs inside that attempt, driven by PRAGMA user_version.
//
// # Write semantics
//
//   - Put replaces the whole record for a date in one transaction. Readers
//     see either the old record or the new one, never a mix.
//   - Delete of a missing date is not an error.
//   - A write that runs out of space (SQLITE_FULL) wraps ErrQuotaExceeded so
//     callers can tell it apart from other failures.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for locks (default 5 seconds)
//   - max_page_count: Optional size cap, applied after the schema upgrade
package store
