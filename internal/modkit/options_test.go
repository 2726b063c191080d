package modkit

import (
	"net/http"
	"testing"

	phttp "flathunt/internal/platform/net/http"
)

// tagMW appends tag to log when the middleware runs, so tests can assert order
func tagMW(log *[]string, tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, tag)
			if next != nil {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func TestScalarOptions(t *testing.T) {
	t.Parallel()

	var c buildCfg
	WithName("listings")(&c)
	WithPrefix("/apartments")(&c)
	WithSwagger(true)(&c)

	if c.name != "listings" {
		t.Fatalf("expected name=listings got=%q", c.name)
	}
	if c.prefix != "/apartments" {
		t.Fatalf("expected prefix=/apartments got=%q", c.prefix)
	}
	if !c.swaggerOn {
		t.Fatal("expected swaggerOn=true after option")
	}

	WithSwagger(false)(&c)
	if c.swaggerOn {
		t.Fatal("expected swaggerOn=false after toggle")
	}
}

func TestWithMiddlewares_AccumulatesAndKeepsOrder(t *testing.T) {
	t.Parallel()

	var log []string
	var c buildCfg
	WithMiddlewares(tagMW(&log, "a"), tagMW(&log, "b"))(&c)
	WithMiddlewares(tagMW(&log, "c"))(&c)

	if len(c.mw) != 3 {
		t.Fatalf("expected 3 middlewares got=%d", len(c.mw))
	}

	// chain so the first added runs first
	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	h.ServeHTTP(nil, nil)

	want := []string{"a", "b", "c"}
	if len(log) != len(want) {
		t.Fatalf("unexpected call count got=%d want=%d", len(log), len(want))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("middleware order mismatch at %d: got=%q want=%q", i, log[i], want[i])
		}
	}
}

func TestWithPorts_StoresConcreteType(t *testing.T) {
	t.Parallel()

	type catalogPorts struct {
		Name  string
		Limit int
	}

	var c buildCfg
	WithPorts(catalogPorts{Name: "listings", Limit: 96})(&c)

	ps, ok := c.ports.(catalogPorts)
	if !ok {
		t.Fatalf("expected ports of type catalogPorts got %T", c.ports)
	}
	if ps.Name != "listings" || ps.Limit != 96 {
		t.Fatalf("unexpected ports value: %+v", ps)
	}
}

func TestWithSubrouter_SetsFactory(t *testing.T) {
	t.Parallel()

	called := false
	var got phttp.Router
	factory := func(r phttp.Router) phttp.Router {
		called = true
		got = r
		return r
	}

	var c buildCfg
	WithSubrouter(factory)(&c)
	if c.subrouter == nil {
		t.Fatal("expected subrouter to be set")
	}

	var r phttp.Router
	out := c.subrouter(r)
	if !called {
		t.Fatal("expected subrouter factory to be called")
	}
	if got != r || out != r {
		t.Fatalf("subrouter factory should be identity: got=%v out=%v want=%v", got, out, r)
	}
}

func TestWithRegister_SetsFunc(t *testing.T) {
	t.Parallel()

	called := false
	var got phttp.Router
	fn := func(r phttp.Router) {
		called = true
		got = r
	}

	var c buildCfg
	WithRegister(fn)(&c)
	if c.register == nil {
		t.Fatal("expected register to be set")
	}

	var r phttp.Router
	c.register(r)
	if !called {
		t.Fatal("expected register function to be called")
	}
	if got != r {
		t.Fatalf("expected register to receive the same router value")
	}
}

func TestOptionsCompose(t *testing.T) {
	t.Parallel()

	var log []string
	opts := []Option{
		WithName("meta"),
		WithPrefix("/meta"),
		WithSwagger(true),
		WithMiddlewares(tagMW(&log, "x")),
		WithPorts(map[string]int{"listings": 1}),
	}

	var c buildCfg
	for _, opt := range opts {
		opt(&c)
	}

	if c.name != "meta" || c.prefix != "/meta" || !c.swaggerOn {
		t.Fatalf("unexpected cfg: %+v", c)
	}
	if len(c.mw) != 1 {
		t.Fatalf("expected 1 middleware got=%d", len(c.mw))
	}
	if _, ok := c.ports.(map[string]int); !ok {
		t.Fatalf("expected ports to be map[string]int got %T", c.ports)
	}
}
