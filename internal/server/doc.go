// Package server provides HTTP routing and middleware for the playlist web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, registering method-qualified patterns
// so path wildcards such as "/playlist/{name}" reach handlers through [http.Request.PathValue].
//
// # Middleware
//
//   - [RequestLogging] tags each request with an ID and logs its outcome
//   - [Recovery] turns panics into 500 responses
//   - [RateLimit] rejects requests above a token-bucket rate with 429
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
