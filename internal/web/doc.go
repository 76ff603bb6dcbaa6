// Package web renders the playlist browser over any [models.Store].
//
// Routes
//
//	GET  /                 → a random track from the whole collection
//	GET  /playlist/{name}  → paginated tracks; query params page, search, sort, direction
//	POST /tracks/{id}/play → increments the play count, then redirects back (303)
//	GET  /healthz          → liveness probe
//
// Unknown playlists and tracks answer 404, malformed query values 400, and store failures 500.
// Templates live in templates/ and are embedded at build time.
package web
