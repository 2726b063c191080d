package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type filterIn struct {
	Rooms int `json:"rooms"`
}

func TestSugar_JSONVerbs(t *testing.T) {
	t.Parallel()

	m := chi.NewRouter()
	r := AdaptChi(m)

	// GET: bodyless
	GetJSON(r, "/filters", func(_ *http.Request) (any, error) {
		return map[string]string{"ok": "filters"}, nil
	})

	// POST: double rooms so the bound body is observable
	PostJSON[filterIn](r, "/searches", func(_ *http.Request, in filterIn) (any, error) {
		return map[string]int{"d": in.Rooms * 2}, nil
	})

	// PUT: triple rooms
	PutJSON[filterIn](r, "/prefs", func(_ *http.Request, in filterIn) (any, error) {
		return map[string]int{"t": in.Rooms * 3}, nil
	})

	// PATCH: echo rooms
	PatchJSON[filterIn](r, "/saved", func(_ *http.Request, in filterIn) (any, error) {
		return map[string]int{"rooms": in.Rooms}, nil
	})

	srv := httptest.NewServer(r.Mux())
	defer srv.Close()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, req)
		return rr
	}

	// GET
	rr := do(http.MethodGet, "/filters", `{}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok":"filters"`) {
		t.Fatalf("GET /filters => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// POST
	rr = do(http.MethodPost, "/searches", `{"rooms":7}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"d":14`) {
		t.Fatalf("POST /searches => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// PUT
	rr = do(http.MethodPut, "/prefs", `{"rooms":5}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"t":15`) {
		t.Fatalf("PUT /prefs => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// PATCH
	rr = do(http.MethodPatch, "/saved", `{"rooms":9}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"rooms":9`) {
		t.Fatalf("PATCH /saved => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// also verify bind error propagates via sugar+JSONHandler (bad JSON on POST)
	rr = do(http.MethodPost, "/searches", `{`)
	if rr.Code == http.StatusOK {
		t.Fatalf("POST /searches with bad json should not be 200; got %d", rr.Code)
	}
}
