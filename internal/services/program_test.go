package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/parthero/internal/shared"
)

func TestPrograms(t *testing.T) {
	ctx := context.Background()

	t.Run("PatchChecklist", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		if err := c.PatchChecklist(ctx, "7", map[string]any{"bowings_completed": true}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := api.last(); got.Method != http.MethodPatch || got.Path != "/api/programs/7/checklist" || got.Body["bowings_completed"] != true {
			t.Errorf("unexpected request %+v", got)
		}

		if err := c.PatchChecklist(ctx, "7", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("AssignMusician", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"summary":{"assigned":1,"total":4}}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		status, err := c.AssignMusician(ctx, "7", 31, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := status["summary"]; !ok {
			t.Errorf("expected status payload, got %v", status)
		}
		got := api.last()
		if got.Method != http.MethodPatch || got.Path != "/api/programs/7/assignments/part/31" || got.Body["musician_id"] != float64(5) {
			t.Errorf("unexpected request %+v", got)
		}

		if _, err := c.AssignMusician(ctx, "7", 31, 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if v, ok := api.last().Body["musician_id"]; !ok || v != nil {
			t.Errorf("expected musician_id null to clear, got %v", api.last().Body)
		}

		if _, err := c.AssignMusician(ctx, "7", 0, 5); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Program Pieces", func(t *testing.T) {
		api := &fakeAPI{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.record(r)
			w.Header().Set("Content-Type", "application/json")
			if r.Method == http.MethodPut {
				w.Write([]byte(`[{"id":12,"title":"La Mer"}]`))
				return
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		pieces, err := c.AddProgramPiece(ctx, "7", "12")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pieces) != 1 || pieces[0]["title"] != "La Mer" {
			t.Errorf("unexpected pieces %v", pieces)
		}
		if got := api.last(); got.Method != http.MethodPut || got.Path != "/api/programs/7/pieces/12" {
			t.Errorf("unexpected request %+v", got)
		}

		pieces, err = c.RemoveProgramPiece(ctx, "7", "12")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pieces) != 0 {
			t.Errorf("expected no pieces left, got %v", pieces)
		}
		if got := api.last(); got.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", got.Method)
		}

		if _, err := c.AddProgramPiece(ctx, "7", ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Retries Assignment On Gateway Error", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c, err := NewClient(testSession(), server.URL, WithRetries(2, time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := c.AssignMusician(ctx, "7", 31, 5); err != nil {
			t.Fatalf("expected success after retry, got %v", err)
		}
		if attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", attempts)
		}
	})
}
