// Package repositories implements SQLite persistence for parthero's local state.
//
// Key Implementations:
//   - [PreferenceRepository] : namespaced key/value preferences; satisfies table.Store so table page
//     sizes survive restarts
//   - [UploadRepository] : a log of part asset uploads and how each one ended
//
// Upload records carry a sequence number for stable, human-readable ordering (upload #42)
// independent of UUIDs and timestamps. [NextSequence] bumps the counter row seeded by the upload log
// migration in a single UPDATE ... RETURNING statement.
package repositories
