package config

import (
	"testing"
	"time"

	kit "flathunt/internal/platform/testkit"
)

func TestKeyComposition(t *testing.T) {
	root := New()
	browse := root.Prefix("BROWSE_")
	if got := browse.key("THEME"); got != "BROWSE_THEME" {
		t.Fatalf("key() = %q, want %q", got, "BROWSE_THEME")
	}
	// prefixes stack
	cache := browse.Prefix("CACHE_")
	if got := cache.key("DIR"); got != "BROWSE_CACHE_DIR" {
		t.Fatalf("nested key() = %q, want %q", got, "BROWSE_CACHE_DIR")
	}
}

func TestMustGetters(t *testing.T) {
	c := New().Prefix("API_")

	t.Run("String trims and panics when missing", func(t *testing.T) {
		t.Setenv("API_SERVICE", "  flathunt-api ")
		if got := c.MustString("SERVICE"); got != "flathunt-api" {
			t.Fatalf("MustString = %q, want %q", got, "flathunt-api")
		}
		kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
	})

	t.Run("Int", func(t *testing.T) {
		t.Setenv("API_MAX_LIMIT", "  96 ")
		if got := c.MustInt("MAX_LIMIT"); got != 96 {
			t.Fatalf("MustInt = %d, want %d", got, 96)
		}
		kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
		t.Setenv("API_BAD_INT", "x")
		kit.MustPanic(t, func() { _ = c.MustInt("BAD_INT") })
	})

	t.Run("Bool", func(t *testing.T) {
		t.Setenv("API_SWAGGER", " true ")
		if !c.MustBool("SWAGGER") {
			t.Fatalf("MustBool true expected")
		}
		kit.MustPanic(t, func() { _ = c.MustBool("MISSING") })
		t.Setenv("API_BAD_BOOL", "notabool")
		kit.MustPanic(t, func() { _ = c.MustBool("BAD_BOOL") })
	})

	t.Run("Duration", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", " 250ms ")
		if got := c.MustDuration("TIMEOUT"); got != 250*time.Millisecond {
			t.Fatalf("MustDuration = %v, want %v", got, 250*time.Millisecond)
		}
		t.Setenv("API_BAD_DUR", "nope")
		kit.MustPanic(t, func() { _ = c.MustDuration("BAD_DUR") })
	})

	t.Run("URL must be absolute", func(t *testing.T) {
		t.Setenv("API_BASE", "http://localhost:4000")
		if u := c.MustURL("BASE"); !u.IsAbs() {
			t.Fatalf("MustURL returned non-absolute URL: %v", u)
		}
		t.Setenv("API_BAD_URL", "://bad")
		kit.MustPanic(t, func() { _ = c.MustURL("BAD_URL") })
		t.Setenv("API_REL_URL", "/relative")
		kit.MustPanic(t, func() { _ = c.MustURL("REL_URL") })
	})

	t.Run("Port normalizes to :n", func(t *testing.T) {
		t.Setenv("API_PORT", "4000")
		if got := c.MustPort("PORT"); got != ":4000" {
			t.Fatalf("MustPort = %q, want %q", got, ":4000")
		}
		t.Setenv("API_BAD_PORT", "abc")
		kit.MustPanic(t, func() { _ = c.MustPort("BAD_PORT") })
		t.Setenv("API_OOB_PORT", "70000")
		kit.MustPanic(t, func() { _ = c.MustPort("OOB_PORT") })
	})
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")

	t.Run("all present", func(t *testing.T) {
		t.Setenv("REQ_A", "x")
		t.Setenv("REQ_B", "y")
		kit.MustNotPanic(t, func() { c.Require("A", "B") })
	})

	t.Run("one missing", func(t *testing.T) {
		t.Setenv("REQ_A", "x")
		kit.MustPanic(t, func() { c.Require("A", "C") })
	})

	t.Run("whitespace counts as missing", func(t *testing.T) {
		t.Setenv("REQ_WS", "   ")
		kit.MustPanic(t, func() { c.Require("WS") })
	})
}

func TestMayGetters(t *testing.T) {
	c := New().Prefix("BROWSE_")

	t.Run("String", func(t *testing.T) {
		if got := c.MayString("MISSING", "dark"); got != "dark" {
			t.Fatalf("MayString default = %q, want %q", got, "dark")
		}
		t.Setenv("BROWSE_THEME", " light ")
		if got := c.MayString("THEME", "dark"); got != "light" {
			t.Fatalf("MayString value = %q, want %q", got, "light")
		}
	})

	t.Run("Int falls back on garbage", func(t *testing.T) {
		if got := c.MayInt("MISSING", 24); got != 24 {
			t.Fatalf("MayInt default = %d, want %d", got, 24)
		}
		t.Setenv("BROWSE_PAGE_SIZE", " 48 ")
		if got := c.MayInt("PAGE_SIZE", 24); got != 48 {
			t.Fatalf("MayInt ok = %d, want %d", got, 48)
		}
		t.Setenv("BROWSE_BAD_INT", "x")
		if got := c.MayInt("BAD_INT", 24); got != 24 {
			t.Fatalf("MayInt bad -> default = %d, want %d", got, 24)
		}
	})

	t.Run("Bool falls back on garbage", func(t *testing.T) {
		if got := c.MayBool("MISSING", true); got != true {
			t.Fatalf("MayBool default true expected")
		}
		t.Setenv("BROWSE_COLOR", "true")
		if got := c.MayBool("COLOR", false); got != true {
			t.Fatalf("MayBool true expected")
		}
		t.Setenv("BROWSE_BAD_BOOL", "nope")
		if got := c.MayBool("BAD_BOOL", false); got != false {
			t.Fatalf("MayBool bad -> default false expected")
		}
	})

	t.Run("Duration falls back on garbage", func(t *testing.T) {
		if got := c.MayDuration("MISSING", 5*time.Second); got != 5*time.Second {
			t.Fatalf("MayDuration default expected")
		}
		t.Setenv("BROWSE_DEBOUNCE", "150ms")
		if got := c.MayDuration("DEBOUNCE", time.Second); got != 150*time.Millisecond {
			t.Fatalf("MayDuration ok = %v, want %v", got, 150*time.Millisecond)
		}
		t.Setenv("BROWSE_BAD_DUR", "nope")
		if got := c.MayDuration("BAD_DUR", time.Minute); got != time.Minute {
			t.Fatalf("MayDuration bad -> default expected")
		}
	})

	t.Run("CSV trims and drops empties", func(t *testing.T) {
		def := []string{"any"}
		if got := c.MayCSV("MISSING", def); len(got) != 1 || got[0] != "any" {
			t.Fatalf("MayCSV default mismatch: %#v", got)
		}

		t.Setenv("BROWSE_TAGS", " studio, loft , ,duplex ,, ")
		got := c.MayCSV("TAGS", nil)
		want := []string{"studio", "loft", "duplex"}
		if len(got) != len(want) {
			t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
			}
		}

		// a value of nothing but separators falls back too
		t.Setenv("BROWSE_EMPTY_TAGS", " , ,  ,")
		if got := c.MayCSV("EMPTY_TAGS", def); len(got) != 1 || got[0] != "any" {
			t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
		}
	})

	t.Run("Enum panics only on a value outside the set", func(t *testing.T) {
		if got := c.MayEnum("MISSING", "json", "json", "console"); got != "json" {
			t.Fatalf("MayEnum default = %q, want %q", got, "json")
		}

		// matching is case-insensitive but the raw value is returned
		t.Setenv("BROWSE_LOG_FORMAT", "Console")
		if got := c.MayEnum("LOG_FORMAT", "json", "json", "console"); got != "Console" {
			t.Fatalf("MayEnum allowed value = %q, want %q", got, "Console")
		}

		// empty default with a missing env stays empty
		if got := c.MayEnum("MISSING", "", "json", "console"); got != "" {
			t.Fatalf("MayEnum empty default = %q, want empty", got)
		}

		t.Setenv("BROWSE_BAD_FMT", "xml")
		kit.MustPanic(t, func() { _ = c.MayEnum("BAD_FMT", "json", "json", "console") })
	})
}
