// package formatter provides column formatters for tables and exporters for fetched rows
// (CSV, Markdown, plain text, JSON).
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
)

// inputLayouts are the timestamp shapes [Date] accepts.
var inputLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// Upper upper-cases string values.
func Upper() table.Formatter {
	return func(raw any, _ table.Record) any {
		if s, ok := raw.(string); ok {
			return strings.ToUpper(s)
		}
		return raw
	}
}

// Lower lower-cases string values.
func Lower() table.Formatter {
	return func(raw any, _ table.Record) any {
		if s, ok := raw.(string); ok {
			return strings.ToLower(s)
		}
		return raw
	}
}

// Date reformats a timestamp string with layout. Unparseable values pass through.
func Date(layout string) table.Formatter {
	return func(raw any, _ table.Record) any {
		s, ok := raw.(string)
		if !ok || s == "" {
			return raw
		}
		for _, in := range inputLayouts {
			if t, err := time.Parse(in, s); err == nil {
				return t.Format(layout)
			}
		}
		return raw
	}
}

// Bool renders truthy values as yes and everything else as no.
func Bool(yes, no string) table.Formatter {
	return func(raw any, _ table.Record) any {
		if truthy(raw) {
			return yes
		}
		return no
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// Join renders a list of objects as the comma-joined values of field.
// A list of scalars is joined as-is.
func Join(field string) table.Formatter {
	return func(raw any, _ table.Record) any {
		items, ok := raw.([]any)
		if !ok {
			return raw
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				item = obj[field]
			}
			if s := Display(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
}

// Default substitutes text for nil and empty string values.
func Default(text string) table.Formatter {
	return func(raw any, _ table.Record) any {
		if raw == nil {
			return text
		}
		if s, ok := raw.(string); ok && s == "" {
			return text
		}
		return raw
	}
}

// Field reads a dotted path from the whole raw row, so a column can be derived from nested data.
func Field(path string) table.Formatter {
	keys := strings.Split(path, ".")
	return func(_ any, row table.Record) any {
		var cur any = map[string]any(row)
		for _, k := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = obj[k]
		}
		return cur
	}
}

// Truncate shortens strings longer than n runes, ending them with "...".
func Truncate(n int) table.Formatter {
	return func(raw any, _ table.Record) any {
		s, ok := raw.(string)
		if !ok {
			return raw
		}
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		if n <= 3 {
			return string(r[:n])
		}
		return string(r[:n-3]) + "..."
	}
}

// Chain applies formatters left to right. Each receives the previous output and the raw row.
func Chain(fs ...table.Formatter) table.Formatter {
	return func(raw any, row table.Record) any {
		v := raw
		for _, f := range fs {
			v = f(v, row)
		}
		return v
	}
}

// Parse builds a formatter from its config spelling.
//
//	upper | lower | date:<layout> | bool:<yes>/<no> | join:<field> | default:<text> |
//	field:<path> | truncate:<n>
//
// Specs may be chained with "|", e.g. "field:composer.name|default:-".
func Parse(spec string) (table.Formatter, error) {
	if strings.Contains(spec, "|") {
		var fs []table.Formatter
		for _, part := range strings.Split(spec, "|") {
			f, err := Parse(part)
			if err != nil {
				return nil, err
			}
			fs = append(fs, f)
		}
		return Chain(fs...), nil
	}

	name, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch strings.ToLower(name) {
	case "upper":
		return Upper(), nil
	case "lower":
		return Lower(), nil
	case "date":
		if arg == "" {
			arg = time.DateOnly
		}
		return Date(arg), nil
	case "bool":
		yes, no, ok := strings.Cut(arg, "/")
		if !ok {
			yes, no = "Yes", "No"
		}
		return Bool(yes, no), nil
	case "join":
		if arg == "" {
			arg = "name"
		}
		return Join(arg), nil
	case "default":
		return Default(arg), nil
	case "field":
		if arg == "" {
			return nil, fmt.Errorf("%w: field formatter needs a path", shared.ErrInvalidConfig)
		}
		return Field(arg), nil
	case "truncate":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: invalid truncate length %q", shared.ErrInvalidConfig, arg)
		}
		return Truncate(n), nil
	}
	return nil, fmt.Errorf("%w: unknown formatter %q", shared.ErrInvalidConfig, spec)
}

// ParseAll parses a column → spec map. A nil map yields nil so table defaults apply.
func ParseAll(specs map[string]string) (map[string]table.Formatter, error) {
	if specs == nil {
		return nil, nil
	}
	out := make(map[string]table.Formatter, len(specs))
	for col, spec := range specs {
		f, err := Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		out[col] = f
	}
	return out, nil
}

// Display renders a materialized value as a single line of text.
func Display(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Display(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
