// Package strings holds the few string and slice helpers wiring code shares
package strings

import std "strings"

// Or returns in unless it is empty
func Or[T any](in, def []T) []T {
	if len(in) > 0 {
		return in
	}
	return def
}

// Required returns s, panicking with what in the message when s is blank
func Required(s, what string) string {
	if std.TrimSpace(s) == "" {
		panic(what + " is required")
	}
	return s
}

// RoutePrefix normalizes a mount point to "/name" form: one leading slash,
// no trailing slash. A blank or root-only prefix panics
func RoutePrefix(s string) string {
	s = std.Trim(std.TrimSpace(s), "/")
	if s == "" {
		panic("route prefix is required")
	}
	return "/" + s
}
