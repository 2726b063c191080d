package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type searchIn struct {
	Rooms int `json:"rooms"`
}

func TestJSONHandler_Success(t *testing.T) {
	t.Parallel()

	// echoes the bound value so the round trip is observable
	h := JSONHandler[searchIn](func(_ *http.Request, in searchIn) (any, error) {
		return map[string]int{"rooms": in.Rooms}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/searches", bytes.NewBufferString(`{"rooms":3}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"rooms":3`) {
		t.Fatalf("body %q missing bound rooms value", body)
	}
}

func TestJSONHandler_BindError(t *testing.T) {
	t.Parallel()

	h := JSONHandler[searchIn](func(_ *http.Request, _ searchIn) (any, error) {
		t.Fatal("handler should not be called on bind error")
		return nil, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/searches", bytes.NewBufferString(`{`)) // invalid JSON
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h(rr, req)

	if rr.Code == http.StatusOK {
		t.Fatalf("expected non-200 on bind error, got %d", rr.Code)
	}
	if !strings.Contains(strings.ToLower(rr.Body.String()), "error") {
		t.Fatalf("expected error text in body, got %q", rr.Body.String())
	}
}

func TestJSONHandler_HandlerError(t *testing.T) {
	t.Parallel()

	h := JSONHandler[searchIn](func(_ *http.Request, _ searchIn) (any, error) {
		return nil, errors.New("catalog offline")
	})

	req := httptest.NewRequest(http.MethodPost, "/searches", bytes.NewBufferString(`{"rooms":1}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h(rr, req)

	if rr.Code == http.StatusOK {
		t.Fatalf("expected non-200 on handler error, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "catalog offline") {
		t.Fatalf("expected error message in body, got %q", rr.Body.String())
	}
}
