package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/repositories"
	"github.com/desertthunder/parthero/internal/services"
	"github.com/desertthunder/parthero/internal/shared"
)

// fakeUploader fails files whose name contains "bad".
type fakeUploader struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeUploader) UploadFile(_ context.Context, pieceID string, _ models.AssetType, path string) (*services.UploadResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	name := filepath.Base(path)
	asset := &models.PartAsset{ID: "asset-" + name}
	if strings.Contains(name, "bad") {
		return &services.UploadResult{Asset: asset, Status: models.StatusFailed}, shared.ErrUploadFailed
	}
	return &services.UploadResult{Asset: asset, Status: models.StatusUploaded}, nil
}

func TestUploadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Mixed Results", func(t *testing.T) {
		up := &fakeUploader{}
		prog := make(chan ProgressUpdate, 20)
		paths := []string{"/tmp/v1.pdf", "/tmp/v2.pdf", "/tmp/bad.pdf", "/tmp/vc.pdf"}

		result, err := UploadAll(ctx, up, prog, paths, UploadOpts{PieceID: "12", NumWorkers: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Total != 4 || result.Succeeded != 3 || result.Failed != 1 {
			t.Errorf("unexpected summary %+v", result)
		}
		if len(up.paths) != 4 {
			t.Errorf("expected every file to be attempted, got %d", len(up.paths))
		}
		for _, r := range result.Results {
			if r.Filename == "bad.pdf" && (r.Status != models.StatusFailed || !errors.Is(r.Err, shared.ErrUploadFailed)) {
				t.Errorf("unexpected failed result %+v", r)
			}
		}
	})

	t.Run("Records Outcomes", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		repo := repositories.NewUploadRepository(db)

		_, err = UploadAll(ctx, &fakeUploader{}, nil, []string{"/x/ok.pdf", "/x/bad.pdf"}, UploadOpts{
			PieceID:   "12",
			AssetType: models.AssetBowing,
			RateLimit: 1000,
			Recorder:  repo,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := repo.List(map[string]any{"piece_id": "12"})
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		for _, r := range records {
			if r.AssetType != models.AssetBowing || r.AssetID != "asset-"+r.Filename {
				t.Errorf("unexpected record %+v", r)
			}
			if r.Filename == "bad.pdf" && (r.Status != models.StatusFailed || r.Error == "") {
				t.Errorf("expected failed record with error, got %+v", r)
			}
			if r.Filename == "ok.pdf" && r.Status != models.StatusUploaded {
				t.Errorf("expected uploaded record, got %+v", r)
			}
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := UploadAll(cctx, &fakeUploader{}, nil, []string{"/x/a.pdf"}, UploadOpts{PieceID: "12"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("expected the file to be reported as failed, got %+v", result)
		}
	})
}
