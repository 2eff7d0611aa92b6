package server

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/parthero/internal/shared"
)

const (
	defaultListingLimit = 25
	maxListingLimit     = 1000
)

// ListingParams names the query parameters a [ListingHandler] reads.
type ListingParams struct {
	Limit  string
	Offset string
	Search string
	Sort   string
}

// DefaultListingParams matches the parameter names a table sends by default.
func DefaultListingParams() ListingParams {
	return ListingParams{Limit: "limit", Offset: "offset", Search: "search", Sort: "sort"}
}

// ListingResponse is the body of every successful listing response.
type ListingResponse struct {
	Total int              `json:"total"`
	Data  []map[string]any `json:"data"`
}

// ListingHandler serves a paged, searchable, sortable view of in-memory records.
type ListingHandler struct {
	path    string
	params  ListingParams
	mu      sync.RWMutex
	records []map[string]any
}

var _ Handler = (*ListingHandler)(nil)

// NewListingHandler serves records at path. Empty fields of params fall back to [DefaultListingParams].
func NewListingHandler(path string, records []map[string]any, params ListingParams) *ListingHandler {
	def := DefaultListingParams()
	params.Limit = cmp.Or(params.Limit, def.Limit)
	params.Offset = cmp.Or(params.Offset, def.Offset)
	params.Search = cmp.Or(params.Search, def.Search)
	params.Sort = cmp.Or(params.Sort, def.Sort)

	return &ListingHandler{path: path, params: params, records: records}
}

func (h *ListingHandler) Routes() []string {
	return []string{"GET " + h.path}
}

// SetRecords replaces the served records.
func (h *ListingHandler) SetRecords(records []map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = records
}

// Reload replaces the served records with the contents of path and returns how many were loaded.
// The current records stay in place when the file cannot be read.
func (h *ListingHandler) Reload(path string) (int, error) {
	records, err := LoadRecords(path)
	if err != nil {
		return 0, err
	}
	h.SetRecords(records)
	return len(records), nil
}

func (h *ListingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get(h.params.Limit), defaultListingLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", h.params.Limit))
		return
	}
	limit = min(limit, maxListingLimit)

	offset, err := intParam(q.Get(h.params.Offset), 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", h.params.Offset))
		return
	}

	sorts, err := parseSort(q.Get(h.params.Sort))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.RLock()
	matched := filterRecords(h.records, q.Get(h.params.Search))
	h.mu.RUnlock()

	sortRecords(matched, sorts)

	resp := ListingResponse{Total: len(matched), Data: []map[string]any{}}
	if offset < len(matched) {
		resp.Data = matched[offset:min(offset+limit, len(matched))]
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

type sortKey struct {
	column string
	desc   bool
}

// parseSort reads "col", "col:asc" or "col:desc" tokens separated by commas.
func parseSort(raw string) ([]sortKey, error) {
	if raw == "" {
		return nil, nil
	}
	var keys []sortKey
	for _, tok := range strings.Split(raw, ",") {
		col, dir, _ := strings.Cut(strings.TrimSpace(tok), ":")
		if col == "" {
			return nil, fmt.Errorf("invalid sort token %q", tok)
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			keys = append(keys, sortKey{column: col})
		case "desc":
			keys = append(keys, sortKey{column: col, desc: true})
		default:
			return nil, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return keys, nil
}

// filterRecords keeps records where any string field contains search, ignoring case.
func filterRecords(records []map[string]any, search string) []map[string]any {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if needle == "" || matches(rec, needle) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec map[string]any, needle string) bool {
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func sortRecords(records []map[string]any, keys []sortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b map[string]any) int {
		for _, k := range keys {
			c := compareValues(a[k.column], b[k.column])
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// compareValues orders nil first, then numbers, then strings, then everything else by its text.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case nil:
		return 0
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return cmp.Compare(strings.ToLower(av), strings.ToLower(b.(string)))
	case bool:
		return cmp.Compare(boolInt(av), boolInt(b.(bool)))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LoadRecords reads fixture records from a JSON file holding either an array of objects or a
// listing body with a "data" array.
func LoadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []map[string]any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
		}
		return records, nil
	}

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%w: %s: no data array", shared.ErrInvalidInput, path)
	}
	return body.Data, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
