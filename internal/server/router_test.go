package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/parthero/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Routing", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || w.Body.String() != "pong" {
			t.Errorf("expected pong, got %d %q", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{}"))
	})

	t.Run("RequestLogger", func(t *testing.T) {
		var buf bytes.Buffer
		h := RequestLogger(shared.NewLogger(&buf))(ok)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/listing?limit=5", nil))
		if id := w.Header().Get(RequestIDHeader); id == "" {
			t.Error("expected a generated request id")
		}
		if out := buf.String(); !strings.Contains(out, "/api/listing") || !strings.Contains(out, "limit=5") {
			t.Errorf("expected path and query in log, got %q", out)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if id := w.Header().Get(RequestIDHeader); id != "abc" {
			t.Errorf("expected request id to be echoed, got %q", id)
		}
	})

	t.Run("RequireJSON", func(t *testing.T) {
		h := RequireJSON(ok)
		for ct, want := range map[string]int{
			"":                                http.StatusOK,
			"application/json":                http.StatusOK,
			"application/json; charset=utf-8": http.StatusOK,
			"text/plain":                      http.StatusUnsupportedMediaType,
			"garbage;;":                       http.StatusUnsupportedMediaType,
		} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if ct != "" {
				req.Header.Set("Content-Type", ct)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != want {
				t.Errorf("Content-Type %q: expected %d, got %d", ct, want, w.Code)
			}
		}
	})
}

func TestServer(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(NewListingHandler("/api/listing", fixtureRecords(), ListingParams{}))
	srv := NewServer(shared.FixtureConfig{Host: "127.0.0.1", Port: 0}, router, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/api/listing?limit=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
