package helpers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDoJSONRetriesThenDecodes(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":"tcs"}` {
			t.Errorf("attempt %d body = %q", calls, body)
		}
		if calls == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), 1, time.Millisecond)
	var out struct{ OK bool }
	if err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, nil, map[string]string{"q": "tcs"}, &out); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if calls != 2 || !out.OK {
		t.Fatalf("calls=%d out=%+v", calls, out)
	}
}

func TestDoJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.Client(), 0, 0).DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusUnauthorized || len(se.Body) != 4096 {
		t.Fatalf("code=%d body len=%d", se.Code, len(se.Body))
	}
}
