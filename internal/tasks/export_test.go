package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
	th "github.com/desertthunder/parthero/internal/testing"
)

// pagedServer serves total pieces; requests for failAt's offset return 500 when failAt >= 0.
func pagedServer(t *testing.T, total, failAt int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if failAt >= 0 && offset == failAt {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		data := []map[string]any{}
		for i := offset; i < min(offset+limit, total); i++ {
			data = append(data, map[string]any{"id": i + 1, "title": "Piece " + strconv.Itoa(i+1)})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"total": total, "data": data})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestExportAll(t *testing.T) {
	ctx := context.Background()

	t.Run("All Pages", func(t *testing.T) {
		srv, calls := pagedServer(t, 23, -1)
		tbl := table.New(table.Config{URL: srv.URL, Limit: 10, KeyPrefix: "pieces", Noun: "pieces"})
		prog := make(chan ProgressUpdate, 10)

		result, err := ExportAll(ctx, tbl, prog, ExportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Pages != 3 {
			t.Errorf("expected 3 pages, got %d", result.Pages)
		}
		if len(result.Export.Rows) != 23 {
			t.Errorf("expected 23 rows, got %d", len(result.Export.Rows))
		}
		if *calls != 3 {
			t.Errorf("expected 3 requests, got %d", *calls)
		}
		if cols := result.Export.Columns; len(cols) != 2 || cols[0] != "id" || cols[1] != "title" {
			t.Errorf("unexpected columns %v", cols)
		}
		if result.Export.Title != "pieces" || result.Export.Summary != "23 pieces exported" {
			t.Errorf("unexpected title/summary %q %q", result.Export.Title, result.Export.Summary)
		}
		if result.Path != "" {
			t.Errorf("expected no file without output, got %s", result.Path)
		}

		close(prog)
		var phases []Phase
		for u := range prog {
			phases = append(phases, u.Phase)
		}
		if len(phases) != 3 || phases[0] != FetchPage {
			t.Errorf("expected 3 fetch updates, got %v", phases)
		}
	})

	t.Run("Starts From First Page", func(t *testing.T) {
		srv, _ := pagedServer(t, 30, -1)
		tbl := table.New(table.Config{URL: srv.URL, Limit: 10})
		tbl.Init(ctx)
		tbl.GoLastPage(ctx)

		result, err := ExportAll(ctx, tbl, nil, ExportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if first := result.Export.Rows[0]["id"]; first != float64(1) {
			t.Errorf("expected export to start at id 1, got %v", first)
		}
	})

	t.Run("Prepared Table Fetches Each Page Once", func(t *testing.T) {
		srv, calls := pagedServer(t, 12, -1)
		store := table.NewMemoryStore()
		store.Set("pieces.limit", "5")
		tbl := table.New(table.Config{URL: srv.URL, KeyPrefix: "pieces", Limit: 10}, table.WithStore(store))
		tbl.Prepare()

		result, err := ExportAll(ctx, tbl, nil, ExportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Pages != 3 || len(result.Export.Rows) != 12 {
			t.Errorf("expected 3 pages of the saved size, got %d pages and %d rows", result.Pages, len(result.Export.Rows))
		}
		if *calls != 3 {
			t.Errorf("expected 3 requests, got %d", *calls)
		}
	})

	t.Run("Max Pages", func(t *testing.T) {
		srv, _ := pagedServer(t, 100, -1)
		tbl := table.New(table.Config{URL: srv.URL, Limit: 10})

		result, err := ExportAll(ctx, tbl, nil, ExportOpts{RateLimit: 1000, MaxPages: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Pages != 2 || len(result.Export.Rows) != 20 {
			t.Errorf("expected 2 pages and 20 rows, got %d and %d", result.Pages, len(result.Export.Rows))
		}
	})

	t.Run("Failed Page Returns Partial Rows", func(t *testing.T) {
		srv, _ := pagedServer(t, 30, 20)
		tbl := table.New(table.Config{URL: srv.URL, Limit: 10})
		out := filepath.Join(t.TempDir(), "pieces.csv")

		result, err := ExportAll(ctx, tbl, nil, ExportOpts{RateLimit: 1000, Output: out})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if len(result.Export.Rows) != 20 {
			t.Errorf("expected 20 rows before the failure, got %d", len(result.Export.Rows))
		}
		if result.Path != "" {
			t.Error("expected no file after a failed export")
		}
	})

	t.Run("Missing Endpoint", func(t *testing.T) {
		_, err := ExportAll(ctx, table.New(table.Config{}), nil, ExportOpts{})
		if !errors.Is(err, shared.ErrMissingEndpoint) {
			t.Errorf("expected ErrMissingEndpoint, got %v", err)
		}
	})

	t.Run("Writes File", func(t *testing.T) {
		srv, _ := pagedServer(t, 5, -1)
		tbl := table.New(table.Config{URL: srv.URL, Columns: []string{"title"}})
		out := filepath.Join(t.TempDir(), "pieces.md")
		prog := make(chan ProgressUpdate, 10)

		result, err := ExportAll(ctx, tbl, prog, ExportOpts{RateLimit: 1000, Output: out, Format: formatter.FormatMarkdown})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Path != out {
			t.Errorf("expected %s, got %s", out, result.Path)
		}
		content := th.MustReadFile(t, out)
		if !strings.Contains(content, "| title |") || !strings.Contains(content, "| Piece 5 |") {
			t.Errorf("unexpected markdown:\n%s", content)
		}

		close(prog)
		var last ProgressUpdate
		for u := range prog {
			last = u
		}
		if last.Phase != WriteFile {
			t.Errorf("expected final WriteFile update, got %v", last.Phase)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		srv, _ := pagedServer(t, 50, -1)
		tbl := table.New(table.Config{URL: srv.URL, Limit: 10})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := ExportAll(cctx, tbl, nil, ExportOpts{}); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{FetchPage: "fetch_page", WriteFile: "write_file", UploadFile: "upload_file", Phase(99): ""} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
