// Package routes is the route table shared by the terminal and web front ends.
package routes

import "strings"

// Paths
const (
	Login     = "/"
	Register  = "/register"
	Dashboard = "/dashboard"
)

// View identifies the screen rendered for a route
type View string

const (
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewDashboard View = "dashboard"
)

// Route maps a path to a view
type Route struct {
	Path  string
	View  View
	Title string
	// RequiresSession routes render an unauthenticated notice (or redirect,
	// depending on the front end) when nobody is signed in
	RequiresSession bool
}

var table = []Route{
	{Path: Login, View: ViewLogin, Title: "Login"},
	{Path: Register, View: ViewRegister, Title: "Register"},
	{Path: Dashboard, View: ViewDashboard, Title: "Dashboard", RequiresSession: true},
}

// All returns a copy of the route table in declaration order
func All() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// Lookup finds the route for path. Trailing slashes, query strings and
// fragments are ignored; an empty path is the login route.
func Lookup(path string) (Route, bool) {
	normalized := Normalize(path)
	for _, r := range table {
		if r.Path == normalized {
			return r, true
		}
	}
	return Route{}, false
}

// Normalize strips the query, fragment and trailing slashes from path
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
