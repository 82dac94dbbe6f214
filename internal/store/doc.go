// Package store provides SQLite-backed durable storage for recorded event
// logs.
//
// The store holds:
//   - Recordings: imported event streams with their id and name
//   - Events: one row per event, keyed by (recording_id, seq)
//   - Checkpoints: digests of replayed state at a position
//
// Snapshots themselves are never stored; they are always rebuilt by replay.
//
// # Critical Patterns
//
// Deterministic Query Results:
//   - Events are read ORDER BY seq ASC
//   - Listings are ordered by id COLLATE BINARY; UUIDv7 ids sort by import
//     time
//
// Idempotent Checkpoints:
//   - PRIMARY KEY (recording_id, position, digest)
//   - Recording the same digest twice is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
