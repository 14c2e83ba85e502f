// Package routes provides hierarchical route registration over the
// standard library mux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Register adds every route in the group (and its children) to the mux,
// prefixing patterns with the accumulated group prefixes.
func Register(mux *http.ServeMux, base string, group Group) {
	prefix := base + group.Prefix

	for _, route := range group.Routes {
		pattern := route.Method + " " + prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}

	for _, child := range group.Children {
		Register(mux, prefix, child)
	}
}
