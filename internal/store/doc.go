// Package store provides SQLite-backed history of integration runs.
//
// Each executed job appends one row to the runs table. Rows are never
// updated; writing the same run ID twice is a no-op.
//
// # Ordering
//
// All ordering uses the seq column (assigned on insert), never wall-clock
// timestamps. Listing returns the most recent runs first.
//
// # Non-finite values
//
// SQLite cannot store NaN. A NaN integral or error is written as NULL and
// read back as NaN.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: SQLite has one writer at a time
package store
