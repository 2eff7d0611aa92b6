// Package server provides HTTP routing, middleware, and a fixture listing server.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so a route registered for GET answers
// other methods with 405.
//
// # Listing Handler
//
// [ListingHandler] serves the remote listing contract a table consumes:
//
//	GET /api/listing?limit=25&offset=50&search=brahms&sort=title:asc,year:desc
//	→ {"total": 112, "data": [{...}, ...]}
//
// Search matches any string field, ignoring case. Sort tokens are applied in order and compare numbers
// numerically and strings without case. Parameter names can be renamed with [ListingParams] to match a
// table's configured arguments.
//
// # Fixture Server
//
// [Server] runs a router on the [shared.FixtureConfig] address until its context is cancelled. It backs
// `parthero fixture serve`, which loads records with [LoadRecords] so the TUI and exports can be tried
// without the real backend.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
