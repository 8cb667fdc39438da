package config

import (
	"testing"
	"time"

	kit "immiwatch/internal/platform/testkit"
)

func TestPrefixKey(t *testing.T) {
	c := New().Prefix("CORE_").Prefix("MONTHLY_")
	if got := c.key("STORE"); got != "CORE_MONTHLY_STORE" {
		t.Fatalf("key() = %q, want %q", got, "CORE_MONTHLY_STORE")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("SERVICE_PGSQL_")
	t.Setenv("SERVICE_PGSQL_URL", "  postgres://localhost/immiwatch ")
	if got := c.MustString("URL"); got != "postgres://localhost/immiwatch" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("X_")
	t.Setenv("X_N", "12")
	t.Setenv("X_BAD", "twelve")
	if got := c.MustInt("N"); got != 12 {
		t.Fatalf("MustInt = %d, want 12", got)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("X_")
	t.Setenv("X_OK", "https://www.canada.ca/feed.json")
	t.Setenv("X_REL", "/relative")
	if got := c.MustURL("OK"); got.Host != "www.canada.ca" {
		t.Fatalf("MustURL host = %q", got.Host)
	}
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
}

func TestMayAccessors(t *testing.T) {
	c := New().Prefix("CORE_MONTHLY_")
	t.Setenv("CORE_MONTHLY_SAVE_RETRIES", "5")
	t.Setenv("CORE_MONTHLY_TRANSITION_HOUR", "six")
	t.Setenv("CORE_MONTHLY_SEQUENCE_GUARD", "false")
	t.Setenv("CORE_MONTHLY_BOGUS_BOOL", "maybe")
	t.Setenv("CORE_MONTHLY_TIMEOUT", "15s")
	t.Setenv("CORE_MONTHLY_BAD_TIMEOUT", "soon")

	if got := c.MayInt("SAVE_RETRIES", 3); got != 5 {
		t.Fatalf("MayInt = %d, want 5", got)
	}
	if got := c.MayInt("TRANSITION_HOUR", 6); got != 6 {
		t.Fatalf("MayInt invalid = %d, want default 6", got)
	}
	if got := c.MayBool("SEQUENCE_GUARD", true); got {
		t.Fatalf("MayBool = true, want false")
	}
	if got := c.MayBool("BOGUS_BOOL", true); !got {
		t.Fatalf("MayBool invalid should return default")
	}
	if got := c.MayDuration("TIMEOUT", time.Second); got != 15*time.Second {
		t.Fatalf("MayDuration = %v, want 15s", got)
	}
	if got := c.MayDuration("BAD_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v, want 1s", got)
	}
	if got := c.MayString("DATA_DIR", "data/monthly_reports"); got != "data/monthly_reports" {
		t.Fatalf("MayString default = %q", got)
	}
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("CORE_MONTHLY_")
	t.Setenv("CORE_MONTHLY_SITE_URL", "https://immiwatch.ca/")
	t.Setenv("CORE_MONTHLY_BAD_URL", "immiwatch.ca")

	if got := c.MayURL("SITE_URL", ""); got != "https://immiwatch.ca" {
		t.Fatalf("MayURL = %q, want trailing slash trimmed", got)
	}
	if got := c.MayURL("BAD_URL", "https://x.test"); got != "https://x.test" {
		t.Fatalf("MayURL invalid = %q, want default", got)
	}
}

func TestMayLocation(t *testing.T) {
	c := New().Prefix("CORE_MONTHLY_")
	t.Setenv("CORE_MONTHLY_LOCATION", "Not/AZone")
	if got := c.MayLocation("LOCATION", "UTC"); got != time.UTC {
		t.Fatalf("MayLocation unknown = %v, want UTC", got)
	}
	if got := c.MayLocation("UNSET", "UTC"); got.String() != "UTC" {
		t.Fatalf("MayLocation default = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("CORE_MONTHLY_")
	t.Setenv("CORE_MONTHLY_STORE", "PG")
	if got := c.MayEnum("STORE", "file", "file", "pg"); got != "pg" {
		t.Fatalf("MayEnum = %q, want pg", got)
	}
	if got := c.MayEnum("UNSET", "file", "file", "pg"); got != "file" {
		t.Fatalf("MayEnum default = %q, want file", got)
	}
	t.Setenv("CORE_MONTHLY_STORE", "s3")
	kit.MustPanic(t, func() { _ = c.MayEnum("STORE", "file", "file", "pg") })
}

func TestMayList(t *testing.T) {
	c := New().Prefix("CORE_API_")
	t.Setenv("CORE_API_CORS_ORIGINS", " https://immiwatch.ca, ,http://localhost:3000 ")
	got := c.MayList("CORS_ORIGINS", []string{"*"})
	if len(got) != 2 || got[0] != "https://immiwatch.ca" || got[1] != "http://localhost:3000" {
		t.Fatalf("MayList = %q", got)
	}
	if got := c.MayList("UNSET", []string{"*"}); len(got) != 1 || got[0] != "*" {
		t.Fatalf("MayList default = %q", got)
	}
	t.Setenv("CORE_API_CORS_ORIGINS", " , ")
	if got := c.MayList("CORS_ORIGINS", []string{"*"}); got[0] != "*" {
		t.Fatalf("blank list should fall back, got %q", got)
	}
}
