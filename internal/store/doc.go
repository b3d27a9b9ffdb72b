// Package store persists match documents.
//
// A Repository has three slots:
//   - Current: the single match being played, overwritten on every save
//   - History: finished or archived matches, most recent first, capped
//     (50 by default); saving a match already in history replaces it in
//     place
//   - Settings: user preferences
//
// Two backends implement it. SQLiteStore is the default and keeps one
// document per row, with goose migrations embedded in the binary.
// RedisStore keeps the same slots in a handful of keys for setups that
// share one scorer between devices.
//
// Documents are stored as the JSON produced by encoding/json from
// model.Match, the same shape Export writes. Import accepts that shape
// after checking it against an embedded CUE schema.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
