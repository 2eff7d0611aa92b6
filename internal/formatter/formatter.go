package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"

	// DefaultFormat is used when no format is named.
	DefaultFormat = FormatCSV
)

// ParseFormat accepts a format name or common alias ("markdown", "text"). An empty name is
// [DefaultFormat].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultFormat, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unsupported format %q (use csv, md, txt or json)", shared.ErrInvalidArgument, s)
}

// Export is a set of materialized rows ready to be written out.
type Export struct {
	Title   string
	Columns []string
	Rows    []table.Record
	Summary string
}

func (e *Export) cells(row table.Record) []string {
	out := make([]string, len(e.Columns))
	for i, col := range e.Columns {
		out[i] = Display(row[col])
	}
	return out
}

// ExportToCSV writes a header row of column names followed by one record per row.
func ExportToCSV(e *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(e.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range e.Rows {
		if err := writer.Write(e.cells(row)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, the summary and a pipe table.
func ExportToMarkdown(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	if e.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", e.Title)
	}
	if e.Summary != "" {
		fmt.Fprintf(&buf, "%s\n\n", e.Summary)
	}

	buf.WriteString("| " + strings.Join(e.Columns, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(e.Columns)) + "\n")
	for _, row := range e.Rows {
		cells := e.cells(row)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders aligned columns with the summary as a footer.
func ExportToText(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	if e.Title != "" {
		fmt.Fprintf(&buf, "%s\n\n", e.Title)
	}

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(e.Columns, "\t")))
	for _, row := range e.Rows {
		fmt.Fprintln(w, strings.Join(e.cells(row), "\t"))
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write text table: %w", err)
	}

	if e.Summary != "" {
		fmt.Fprintf(&buf, "\n%s\n", e.Summary)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the rows, limited to the export columns, as an indented JSON array.
func ExportToJSON(e *Export) ([]byte, error) {
	rows := make([]map[string]any, len(e.Rows))
	for i, row := range e.Rows {
		out := make(map[string]any, len(e.Columns))
		for _, col := range e.Columns {
			out[col] = row[col]
		}
		rows[i] = out
	}
	return shared.MarshalJSON(rows, true)
}

// Render converts e to format.
func Render(e *Export, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(e)
	case FormatMarkdown:
		return ExportToMarkdown(e)
	case FormatText:
		return ExportToText(e)
	case FormatJSON:
		return ExportToJSON(e)
	}
	return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
}

// WriteExport writes e in format to path, creating parent directories.
//
// Defaults to {title}.{format} as the filename.
func WriteExport(e *Export, format Format, path string) (string, error) {
	if path == "" {
		name := e.Title
		if name == "" {
			name = "export"
		}
		path = fmt.Sprintf("%s.%s", name, format)
	}

	data, err := Render(e, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
