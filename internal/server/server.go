package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the patterns it serves.
type Handler interface {
	http.Handler
	// Routes returns the mux patterns this handler serves, e.g. "GET /playlist/{name}".
	Routes() []string
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	// Use adds middleware to the router's middleware stack.
	Use(middleware ...Middleware)
	// Handle registers a handler for the specified method and path.
	Handle(method, path string, handler http.Handler)
	// Handler registers a custom Handler implementation.
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
