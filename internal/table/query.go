package table

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Direction is a sort direction as sent on the wire.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// SortField is one "column:direction" sort token.
type SortField struct {
	Column    string
	Direction Direction
}

func (s SortField) String() string {
	return s.Column + ":" + string(s.Direction)
}

// ParseSortField parses "column" or "column:direction"; the direction defaults to [Asc].
func ParseSortField(s string) (SortField, error) {
	col, dir, ok := strings.Cut(strings.TrimSpace(s), ":")
	if col == "" {
		return SortField{}, fmt.Errorf("invalid sort field %q", s)
	}
	if !ok {
		return SortField{Column: col, Direction: Asc}, nil
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return SortField{}, err
	}
	return SortField{Column: col, Direction: d}, nil
}

// Query is the pagination, search and sort state of a [Table].
//
// Sort is ordered by when each column was last set.
type Query struct {
	Limit  int
	Offset int
	Search string
	Sort   []SortField
	Total  int
}

func (q Query) clone() Query {
	q.Sort = append([]SortField(nil), q.Sort...)
	return q
}

// withSort returns sort fields with column moved to the end at dir.
func withSort(fields []SortField, column string, dir Direction) []SortField {
	out := withoutSort(fields, column)
	return append(out, SortField{Column: column, Direction: dir})
}

func withoutSort(fields []SortField, column string) []SortField {
	out := make([]SortField, 0, len(fields)+1)
	for _, f := range fields {
		if f.Column != column {
			out = append(out, f)
		}
	}
	return out
}

// sortDirection reports the current direction for column, if sorted.
func sortDirection(fields []SortField, column string) (Direction, bool) {
	for _, f := range fields {
		if f.Column == column {
			return f.Direction, true
		}
	}
	return "", false
}

// sortParam renders the sort fields for the wire: every field comma-joined when multiSort is
// set, otherwise only the most recently set one.
func sortParam(fields []SortField, multiSort bool) string {
	if len(fields) == 0 {
		return ""
	}
	if !multiSort {
		return fields[len(fields)-1].String()
	}
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = f.String()
	}
	return strings.Join(tokens, ",")
}

// queryString renders q for the wire in the order limit, offset, search, sort.
func queryString(args Args, q Query, multiSort bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%d&%s=%d", url.QueryEscape(args.Limit), q.Limit, url.QueryEscape(args.Offset), q.Offset)
	if q.Search != "" {
		fmt.Fprintf(&b, "&%s=%s", url.QueryEscape(args.Search), url.QueryEscape(q.Search))
	}
	if s := sortParam(q.Sort, multiSort); s != "" {
		fmt.Fprintf(&b, "&%s=%s", url.QueryEscape(args.Sort), url.QueryEscape(s))
	}
	return b.String()
}

// requestURL appends the query string to endpoint, respecting an existing query.
func requestURL(endpoint string, args Args, q Query, multiSort bool) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + queryString(args, q, multiSort)
}

// parseLeadingInt reads an optionally signed decimal prefix of s, so "50 rows" is 50.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
