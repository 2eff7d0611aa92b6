package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/shared"
)

var pdf = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func testSession() *shared.Session {
	return &shared.Session{Cookie: "csrftoken=tok; sessionid=abc", CSRFToken: "tok"}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(testSession(), url, WithRetries(0, time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// call records one request seen by a fake API.
type call struct {
	Method string
	Path   string
	Query  string
	CSRF   string
	Cookie string
	Body   map[string]any
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeAPI) record(r *http.Request) call {
	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, CSRF: r.Header.Get(shared.CSRFHeader), Cookie: r.Header.Get("Cookie")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		json.NewDecoder(r.Body).Decode(&c.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return c
}

func (f *fakeAPI) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestNewClient(t *testing.T) {
	t.Run("Missing Session", func(t *testing.T) {
		for name, s := range map[string]*shared.Session{
			"Nil":       nil,
			"No Cookie": {CSRFToken: "tok", BaseURL: "http://x"},
			"No Token":  {Cookie: "a=b", BaseURL: "http://x"},
		} {
			t.Run(name, func(t *testing.T) {
				if _, err := NewClient(s, ""); !errors.Is(err, shared.ErrMissingSession) {
					t.Errorf("expected ErrMissingSession, got %v", err)
				}
			})
		}
	})

	t.Run("Missing Base URL", func(t *testing.T) {
		if _, err := NewClient(testSession(), ""); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Session Base URL", func(t *testing.T) {
		s := testSession()
		s.BaseURL = "http://example.com"
		if _, err := NewClient(s, ""); err != nil {
			t.Errorf("expected session base url to be used, got %v", err)
		}
	})
}

func TestPartAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatePartAsset", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"a1","upload_url":"http://storage/a1","parts":[{"id":4}]}`))
		}))
		defer server.Close()

		asset, err := newTestClient(t, server.URL).CreatePartAsset(ctx, "12", "violin1.pdf", models.AssetClean)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if asset.ID != "a1" || asset.UploadURL != "http://storage/a1" {
			t.Errorf("unexpected asset %+v", asset)
		}

		c := api.last()
		if c.Method != http.MethodPost || c.Path != "/api/pieces/12/asset" {
			t.Errorf("unexpected request %s %s", c.Method, c.Path)
		}
		if c.CSRF != "tok" || c.Cookie != "csrftoken=tok; sessionid=abc" {
			t.Errorf("expected session headers, got csrf=%q cookie=%q", c.CSRF, c.Cookie)
		}
		if c.Body["filename"] != "violin1.pdf" || c.Body["asset_type"] != "Clean" {
			t.Errorf("unexpected body %v", c.Body)
		}
	})

	t.Run("CreatePartAsset Malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"a1"}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL).CreatePartAsset(ctx, "12", "a.pdf", models.AssetClean)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Error Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"CSRF verification failed."}`))
		}))
		defer server.Close()

		err := newTestClient(t, server.URL).DeletePartAsset(ctx, "12", "a1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if want := "CSRF verification failed."; !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	})

	t.Run("UpdatePartAsset", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		asset := &models.PartAsset{ID: "a1", Parts: []models.Part{{ID: 4}, {ID: 9}}}
		if err := newTestClient(t, server.URL).UpdatePartAsset(ctx, "12", asset, models.StatusUploaded); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		c := api.last()
		if c.Method != http.MethodPatch || c.Path != "/api/pieces/12/asset/a1" {
			t.Errorf("unexpected request %s %s", c.Method, c.Path)
		}
		if c.Body["status"] != "Uploaded" {
			t.Errorf("expected Uploaded status, got %v", c.Body["status"])
		}
		ids, _ := c.Body["part_ids"].([]any)
		if len(ids) != 2 || ids[0] != float64(4) {
			t.Errorf("unexpected part ids %v", c.Body["part_ids"])
		}
	})

	t.Run("AssignParts", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"a1","parts":[]}`))
		}))
		defer server.Close()

		asset, err := newTestClient(t, server.URL).AssignParts(ctx, "12", "a1", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if asset.ID != "a1" {
			t.Errorf("unexpected asset %+v", asset)
		}
		if ids, ok := api.last().Body["part_ids"].([]any); !ok || len(ids) != 0 {
			t.Errorf("expected empty part_ids list, got %v", api.last().Body["part_ids"])
		}
	})

	t.Run("ListPartAssets", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"part_assets":[{"id":"a1","filename":"v1.pdf","status":"Uploaded"}],"string_part_options":[{"id":3,"value":"Violin 1"}]}`))
		}))
		defer server.Close()

		list, err := newTestClient(t, server.URL).ListPartAssets(ctx, "12", models.AssetBowing)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(list.PartAssets) != 1 || list.PartAssets[0].Status != models.StatusUploaded {
			t.Errorf("unexpected list %+v", list)
		}
		if len(list.StringPartOptions) != 1 || list.StringPartOptions[0].Value != "Violin 1" {
			t.Errorf("unexpected options %+v", list.StringPartOptions)
		}
		if c := api.last(); c.Path != "/api/pieces/12/assets" || c.Query != "asset_type=Bowing" {
			t.Errorf("unexpected request %s?%s", c.Path, c.Query)
		}
	})

	t.Run("ListPartAssets Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := newTestClient(t, server.URL).ListPartAssets(ctx, "12", models.AssetBowing); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Retries Server Errors", func(t *testing.T) {
		var mu sync.Mutex
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()
			if n < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c, err := NewClient(testSession(), server.URL, WithRetries(3, time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if err := c.DeletePartAsset(ctx, "12", "a1"); err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		mu.Lock()
		defer mu.Unlock()
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("Does Not Retry Create", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		c, err := NewClient(testSession(), server.URL, WithRetries(3, time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := c.CreatePartAsset(ctx, "12", "violin1.pdf", models.AssetClean); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}

		api.mu.Lock()
		defer api.mu.Unlock()
		if len(api.calls) != 1 || api.calls[0].Method != http.MethodPost {
			t.Errorf("expected a single POST, got %+v", api.calls)
		}
	})

	t.Run("Does Not Retry Failed Connections For POST", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		rt := &countingTransport{}
		c, err := NewClient(testSession(), url, WithRetries(3, time.Millisecond), WithHTTPClient(&http.Client{Transport: rt}))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := c.CreatePartAsset(ctx, "12", "violin1.pdf", models.AssetClean); err == nil {
			t.Fatal("expected an error")
		}
		if n := rt.count(); n != 1 {
			t.Errorf("expected 1 attempt, got %d", n)
		}
	})
}

// countingTransport counts round trips before handing them to the default transport.
type countingTransport struct {
	mu sync.Mutex
	n  int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(r)
}

func (c *countingTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// uploadServer fakes both the API and the presigned storage endpoint.
func uploadServer(t *testing.T, api *fakeAPI, putStatus int) (*httptest.Server, *[]byte) {
	t.Helper()
	var stored []byte
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/storage/a1":
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(putStatus)
		case r.Method == http.MethodPost:
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"id": "a1", "upload_url": server.URL + "/storage/a1", "parts": []any{map[string]any{"id": 2}}})
		default:
			api.record(r)
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server, &stored
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		api := &fakeAPI{}
		server, stored := uploadServer(t, api, http.StatusOK)

		result, err := newTestClient(t, server.URL).Upload(ctx, "12", models.AssetClean, "violin1.pdf", pdf)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != models.StatusUploaded {
			t.Errorf("expected Uploaded, got %q", result.Status)
		}
		if string(*stored) != string(pdf) {
			t.Error("expected file bytes to reach storage")
		}

		report := api.last()
		if report.Method != http.MethodPatch || report.Body["status"] != "Uploaded" {
			t.Errorf("expected Uploaded report, got %+v", report)
		}
	})

	t.Run("Storage Rejects", func(t *testing.T) {
		api := &fakeAPI{}
		server, _ := uploadServer(t, api, http.StatusForbidden)

		result, err := newTestClient(t, server.URL).Upload(ctx, "12", models.AssetClean, "violin1.pdf", pdf)
		if !errors.Is(err, shared.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
		if result.Status != models.StatusFailed {
			t.Errorf("expected Failed, got %q", result.Status)
		}
		if api.last().Body["status"] != "Failed" {
			t.Errorf("expected Failed report, got %v", api.last().Body)
		}
	})

	t.Run("Storage Unreachable", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"a1","upload_url":"http://127.0.0.1:1/unreachable"}`))
				return
			}
			api.record(r)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		result, err := newTestClient(t, server.URL).Upload(ctx, "12", models.AssetBowing, "cello.pdf", pdf)
		if !errors.Is(err, shared.ErrUploadAborted) {
			t.Fatalf("expected ErrUploadAborted, got %v", err)
		}
		if result.Status != models.StatusAborted || api.last().Body["status"] != "Aborted" {
			t.Errorf("expected Aborted status and report, got %q %v", result.Status, api.last().Body)
		}
	})

	t.Run("Rejects Non PDF", func(t *testing.T) {
		api := &fakeAPI{}
		server, _ := uploadServer(t, api, http.StatusOK)

		_, err := newTestClient(t, server.URL).Upload(ctx, "12", models.AssetClean, "notes.pdf", []byte("just some text"))
		if !errors.Is(err, shared.ErrUnsupportedFile) {
			t.Fatalf("expected ErrUnsupportedFile, got %v", err)
		}
		if len(api.calls) != 0 {
			t.Errorf("expected no API calls, got %d", len(api.calls))
		}
	})

	t.Run("UploadFile", func(t *testing.T) {
		api := &fakeAPI{}
		server, _ := uploadServer(t, api, http.StatusOK)
		path := filepath.Join(t.TempDir(), "viola.pdf")
		if err := os.WriteFile(path, pdf, 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := newTestClient(t, server.URL).UploadFile(ctx, "12", models.AssetClean, path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if api.calls[0].Body["filename"] != "viola.pdf" {
			t.Errorf("expected base name, got %v", api.calls[0].Body["filename"])
		}

		if _, err := newTestClient(t, server.URL).UploadFile(ctx, "12", models.AssetClean, filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestDetectPDF(t *testing.T) {
	if mime, err := DetectPDF(pdf); err != nil || mime != "application/pdf" {
		t.Errorf("expected application/pdf, got %q %v", mime, err)
	}
	if _, err := DetectPDF([]byte("\x89PNG\r\n\x1a\n")); !errors.Is(err, shared.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}
