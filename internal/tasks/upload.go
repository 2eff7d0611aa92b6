package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/services"
)

// Uploader uploads a single file; implemented by [services.Client].
type Uploader interface {
	UploadFile(ctx context.Context, pieceID string, assetType models.AssetType, path string) (*services.UploadResult, error)
}

// UploadRecorder persists upload outcomes; implemented by repositories.UploadRepository.
type UploadRecorder interface {
	Create(*models.UploadRecord) error
	Update(*models.UploadRecord) error
}

// UploadOpts contains configuration for [UploadAll].
type UploadOpts struct {
	PieceID    string
	AssetType  models.AssetType
	NumWorkers int     // Concurrent uploads (default: 3, max: 10)
	RateLimit  float64 // Uploads started per second (default: 5)
	Recorder   UploadRecorder
}

// FileUploadResult is the outcome for one file.
type FileUploadResult struct {
	Path     string
	Filename string
	AssetID  string
	Status   models.AssetStatus
	Err      error
}

// BulkUploadResult summarizes [UploadAll].
type BulkUploadResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []FileUploadResult
}

// UploadAll uploads paths concurrently with rate limiting and progress tracking.
//
// Results are returned in completion order. Only a cancelled context is returned as an error; per
// file failures are reported in the results.
func UploadAll(ctx context.Context, up Uploader, prog chan<- ProgressUpdate, paths []string, opts UploadOpts) (*BulkUploadResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.AssetType == "" {
		opts.AssetType = models.AssetClean
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan string, len(paths))
	results := make(chan FileUploadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go uploadWorker(ctx, &wg, up, limiter, jobs, results, opts)
	}

	for i, path := range paths {
		sendProgress(prog, uploadingUpdate(i+1, len(paths), filepath.Base(path)))
		jobs <- path
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &BulkUploadResult{Total: len(paths), Results: make([]FileUploadResult, 0, len(paths))}
	for res := range results {
		summary.Results = append(summary.Results, res)
		step := len(summary.Results)
		if res.Err == nil {
			summary.Succeeded++
			sendProgress(prog, uploadCompletedUpdate(step, len(paths), res))
		} else {
			summary.Failed++
			sendProgress(prog, uploadFailedUpdate(step, len(paths), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// uploadWorker is a worker goroutine that uploads files from the jobs channel.
func uploadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	up Uploader,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- FileUploadResult,
	opts UploadOpts,
) {
	defer wg.Done()

	for path := range jobs {
		res := FileUploadResult{Path: path, Filename: filepath.Base(path), Status: models.StatusAborted}
		if err := limiter.Wait(ctx); err != nil {
			res.Err = err
			results <- res
			continue
		}
		results <- uploadOne(ctx, up, path, res, opts)
	}
}

func uploadOne(ctx context.Context, up Uploader, path string, res FileUploadResult, opts UploadOpts) FileUploadResult {
	var record *models.UploadRecord
	if opts.Recorder != nil {
		record = models.NewUploadRecord(opts.PieceID, res.Filename, opts.AssetType)
		if err := opts.Recorder.Create(record); err != nil {
			record = nil
		}
	}

	out, err := up.UploadFile(ctx, opts.PieceID, opts.AssetType, path)
	res.Err = err
	switch {
	case out != nil:
		res.Status = out.Status
		if out.Asset != nil {
			res.AssetID = out.Asset.ID
		}
	case err != nil:
		res.Status = models.StatusFailed
	}

	if record != nil {
		record.AssetID = res.AssetID
		record.Status = res.Status
		if err != nil {
			record.Error = err.Error()
		}
		if uerr := opts.Recorder.Update(record); uerr != nil && res.Err == nil {
			res.Err = fmt.Errorf("uploaded but failed to record: %w", uerr)
		}
	}
	return res
}
