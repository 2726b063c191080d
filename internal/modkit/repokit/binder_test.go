package repokit

import (
	"testing"

	"flathunt/internal/core/catalog"
)

// fakeSource is a minimal in-memory Source
type fakeSource struct {
	apts []catalog.Apartment
	meta catalog.FilterMetadata
}

func (f *fakeSource) Apartments() []catalog.Apartment { return f.apts }
func (f *fakeSource) Bounds() catalog.FilterMetadata  { return f.meta }
func (f *fakeSource) ByID(id string) (catalog.Apartment, bool) {
	for _, a := range f.apts {
		if a.ID == id {
			return a, true
		}
	}
	return catalog.Apartment{}, false
}

var _ Source = (*fakeSource)(nil)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("%s: expected panic, got none", name)
		}
	}()
	fn()
}

func TestBindFunc_BindCallsFunc(t *testing.T) {
	t.Parallel()

	// create a binder from a function; it should be invoked with the provided Source
	var s Source // nil is fine; BindFunc doesn't use it
	b := BindFunc[string](func(_ Source) string {
		return "ok"
	})

	got := b.Bind(s)
	if got != "ok" {
		t.Fatalf("BindFunc.Bind = %q, want %q", got, "ok")
	}
}

func TestBindFunc_ReceivesSameSource(t *testing.T) {
	t.Parallel()

	src := &fakeSource{apts: []catalog.Apartment{{ID: "apt-001"}}}
	b := BindFunc[Source](func(s Source) Source { return s })

	if got := b.Bind(src); got != Source(src) {
		t.Fatalf("binder did not receive the provided Source")
	}
}

func TestRequireSource_PanicsOnNil(t *testing.T) {
	t.Parallel()

	var s Source // nil interface
	mustPanic(t, "RequireSource(nil)", func() {
		_ = RequireSource(s)
	})
}

func TestMustBind_PanicsOnNilSource(t *testing.T) {
	t.Parallel()

	var s Source // nil interface
	b := BindFunc[int](func(_ Source) int { return 42 })

	mustPanic(t, "MustBind(nil Source)", func() {
		_ = MustBind[int](b, s)
	})
}

func TestRequireSource_ReturnsSame(t *testing.T) {
	t.Parallel()

	var in Source = &fakeSource{} // non-nil
	out := RequireSource(in)

	if out == nil {
		t.Fatalf("RequireSource returned nil for non-nil input")
	}
	if out != in {
		t.Fatalf("RequireSource did not return the same instance")
	}
}
