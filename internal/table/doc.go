// Package table implements a controller for remote, server-paginated listings.
//
// A [Table] owns the query state for one listing endpoint (page size, offset, search text and sort
// fields), performs the HTTP fetch, materializes rows through per-column [Formatter] functions and
// derives the pagination metadata a renderer needs: current page, total pages, displayed row range
// and a summary line.
//
// # Listing Contract
//
//	GET <url>?limit=<n>&offset=<n>[&search=<text>][&sort=<col>:<asc|desc>]
//	{"total": <int>, "data": [ {...}, ... ]}
//
// Parameter names are configurable through [Args].
//
// # Failure Model
//
// Fetch never returns an error. Failures surface through [Meta]: the status line switches to the
// configured failure message, [Meta.Err] carries the wrapped cause, and the rows from the last
// successful fetch are kept.
//
// # Page Size Persistence
//
// The chosen page size is written to a [Store] under "{KeyPrefix}.limit" and restored by
// [Table.Init]. [MemoryStore] keeps it for the life of the process;
// repositories.PreferenceRepository keeps it in SQLite.
//
// # Ordering
//
// Every fetch carries a sequence number. A response that arrives after a newer one has already
// been applied is dropped, so out-of-order responses never overwrite fresher rows.
package table
