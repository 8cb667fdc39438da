package strings

import (
	"testing"

	kit "immiwatch/internal/platform/testkit"
)

func TestOr(t *testing.T) {
	if got := Or([]string{"GET"}, []string{"POST"}); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("Or kept = %q", got)
	}
	if got := Or(nil, []string{"POST"}); len(got) != 1 || got[0] != "POST" {
		t.Fatalf("Or default = %q", got)
	}
}

func TestRequired(t *testing.T) {
	if Required("monthly", "name") != "monthly" {
		t.Fatal("Required changed its input")
	}
	kit.MustPanic(t, func() { Required(" \t", "name") })
}

func TestRoutePrefix(t *testing.T) {
	cases := map[string]string{
		"monthly":     "/monthly",
		"/monthly":    "/monthly",
		"/monthly/":   "/monthly",
		" drawcheck ": "/drawcheck",
		"//meta//":    "/meta",
		"api/v1":      "/api/v1",
	}
	for in, want := range cases {
		if got := RoutePrefix(in); got != want {
			t.Fatalf("RoutePrefix(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"", " ", "/", "///"} {
		kit.MustPanic(t, func() { RoutePrefix(bad) })
	}
}
