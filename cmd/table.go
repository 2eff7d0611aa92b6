package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
	"github.com/desertthunder/parthero/internal/tasks"
	"github.com/urfave/cli/v3"
)

// tableInfo is one row of 'table list'.
type tableInfo struct {
	Name     string   `json:"name"`
	Endpoint string   `json:"endpoint"`
	Limit    int      `json:"limit"`
	Saved    bool     `json:"saved"`
	Columns  []string `json:"columns,omitempty"`
}

// TableList prints the configured tables with the page size they will open with.
func (r *Runner) TableList(ctx context.Context, cmd *cli.Command) error {
	for _, name := range r.config.TableNames() {
		if _, err := r.openTable(name, table.Start{}); err != nil {
			return err
		}
	}

	registry := r.tables()
	infos := make([]tableInfo, 0, len(r.config.Tables))
	for _, name := range registry.Names() {
		t, ok := registry.Get(name)
		if !ok {
			continue
		}
		cfg := t.Config()
		limit, saved := t.PageSize()
		infos = append(infos, tableInfo{Name: name, Endpoint: cfg.URL, Limit: limit, Saved: saved, Columns: cfg.Columns})
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, true)
	}

	if len(infos) == 0 {
		return r.writePlain("No tables configured\n")
	}
	for _, info := range infos {
		saved := ""
		if info.Saved {
			saved = " (saved)"
		}
		r.writePlain("%-16s %3d per page%s  %s\n", info.Name, info.Limit, saved, info.Endpoint)
	}
	return nil
}

func parseSorts(raw []string) ([]table.SortField, error) {
	var fields []table.SortField
	for _, s := range raw {
		f, err := table.ParseSortField(s)
		if err != nil {
			return nil, fmt.Errorf("%w: --sort %s", shared.ErrInvalidFlag, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func requireName(cmd *cli.Command) (string, error) {
	name := cmd.StringArg("name")
	if name == "" {
		return "", fmt.Errorf("%w: table name", shared.ErrMissingArgument)
	}
	return name, nil
}

// TablePage fetches a single page and prints it in the requested format.
func (r *Runner) TablePage(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	sorts, err := parseSorts(cmd.StringSlice("sort"))
	if err != nil {
		return err
	}

	t, err := r.openTable(name, table.Start{
		Limit:  cmd.Int("limit"),
		Page:   cmd.Int("page"),
		Search: cmd.String("search"),
		Sort:   sorts,
	})
	if err != nil {
		return err
	}

	t.Init(ctx)
	meta := t.Meta()
	if meta.Err != nil {
		return fmt.Errorf("%s: %w", meta.Status, meta.Err)
	}

	data, err := formatter.Render(&formatter.Export{
		Title:   name,
		Columns: t.Columns(),
		Rows:    t.Rows(),
		Summary: meta.Status,
	}, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// TableLimit prints the page size of a table, or saves a new one when a size is given.
func (r *Runner) TableLimit(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd)
	if err != nil {
		return err
	}

	t, err := r.openTable(name, table.Start{})
	if err != nil {
		return err
	}

	size := strings.TrimSpace(cmd.StringArg("size"))
	if size == "" {
		limit, saved := t.PageSize()
		source := "default"
		if saved {
			source = "saved"
		}
		return r.writePlain("%s: %d per page (%s)\n", name, limit, source)
	}

	t.SetPageSize(ctx, size)

	r.writePlain("✓ %s: page size saved as %d\n", name, t.Query().Limit)
	if meta := t.Meta(); meta.Err != nil {
		r.logger.Warn("page size saved but the first page could not be fetched", "error", meta.Err)
	} else {
		r.writePlain("%s\n", meta.Status)
	}
	return nil
}

// TableExport walks every page of a table and writes the rows to a file.
func (r *Runner) TableExport(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd)
	if err != nil {
		return err
	}

	rawFormat := cmd.String("format")
	if rawFormat == "" {
		rawFormat = r.config.Export.Format
	}
	format, err := formatter.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	sorts, err := parseSorts(cmd.StringSlice("sort"))
	if err != nil {
		return err
	}

	t, err := r.openTable(name, table.Start{Search: cmd.String("search"), Sort: sorts})
	if err != nil {
		return err
	}

	t.Prepare()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	output := cmd.String("output")
	if output == "" {
		output = fmt.Sprintf("%s.%s", name, format)
	}

	result, err := tasks.ExportAll(ctx, t, progressCh, tasks.ExportOpts{
		Format:    format,
		Output:    output,
		Title:     name,
		RateLimit: r.config.Export.RateLimit,
		MaxPages:  cmd.Int("max-pages"),
	})
	close(progressCh)
	<-done

	if err != nil {
		if result != nil {
			r.logger.Error("export stopped early", "pages", result.Pages, "rows", len(result.Export.Rows))
		}
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Exported %s", name))
	r.writePlain("Pages: %d\n", result.Pages)
	r.writePlain("Rows: %d\n", len(result.Export.Rows))
	r.writePlain("File: %s\n", result.Path)
	return nil
}
