package tasks

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/time/rate"

	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/table"
)

// ExportOpts contains configuration for [ExportAll].
type ExportOpts struct {
	Format    formatter.Format // Output format (default: csv)
	Output    string           // File to write; empty skips writing
	Title     string           // Export title (default: table key prefix)
	RateLimit float64          // Page requests per second (default: 5)
	MaxPages  int              // Stop after this many pages; zero means all
}

// ExportResult summarizes an export.
type ExportResult struct {
	Export *formatter.Export
	Pages  int
	Path   string
}

// ExportAll fetches every page of t, starting from the first, and optionally writes them to a file.
//
// t is left on the last page fetched. When a page fails, the rows collected so far are returned
// together with the error.
func ExportAll(ctx context.Context, t *table.Table, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.DefaultFormat
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Title == "" {
		opts.Title = t.Config().KeyPrefix
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	result := &ExportResult{Export: &formatter.Export{Title: opts.Title}}

	fetch := func(step func(context.Context)) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		step(ctx)
		if err := t.Meta().Err; err != nil {
			sendProgress(prog, fetchFailedUpdate(result.Pages+1, t.TotalPages(), err))
			return err
		}
		rows := t.Rows()
		result.Pages++
		result.Export.Rows = append(result.Export.Rows, rows...)
		sendProgress(prog, fetchPageUpdate(result.Pages, t.TotalPages(), len(rows)))
		return nil
	}

	var fetchErr error
	if err := fetch(t.GoFirstPage); err != nil {
		fetchErr = fmt.Errorf("failed to fetch page 1: %w", err)
	}
	for fetchErr == nil && t.CurrentPage() < t.TotalPages() {
		if opts.MaxPages > 0 && result.Pages >= opts.MaxPages {
			break
		}
		if err := fetch(t.GoNextPage); err != nil {
			fetchErr = fmt.Errorf("failed to fetch page %d: %w", result.Pages+1, err)
		}
	}

	result.Export.Columns = exportColumns(t, result.Export.Rows)
	result.Export.Summary = fmt.Sprintf("%d %s exported", len(result.Export.Rows), t.Config().Noun)

	if fetchErr != nil {
		return result, fetchErr
	}

	if opts.Output != "" {
		path, err := formatter.WriteExport(result.Export, opts.Format, opts.Output)
		if err != nil {
			return result, fmt.Errorf("export fetched but failed to write: %w", err)
		}
		result.Path = path
		sendProgress(prog, writeFileUpdate(path, len(result.Export.Rows)))
	}

	return result, nil
}

// exportColumns returns the configured columns, or the sorted union of keys across all rows.
func exportColumns(t *table.Table, rows []table.Record) []string {
	if cols := t.Config().Columns; len(cols) > 0 {
		return cols
	}
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
