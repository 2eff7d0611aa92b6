// Package tasks runs the long operations behind the CLI with real-time progress reporting.
//
// # Core Operations
//
//  1. [ExportAll] : walk every page of a table.Table and write the rows to a file
//     - Starts from the first page and follows next-page navigation to the last one
//     - Waits on a rate limiter between pages
//     - Stops at the first failed fetch and returns the rows collected so far
//
//  2. [UploadAll] : upload many PDFs to one piece
//     - A bounded worker pool shares a rate limiter
//     - Each file is recorded through an optional [UploadRecorder]
//     - One failed file does not stop the others
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
