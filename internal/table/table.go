package table

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/parthero/internal/shared"
)

// Meta is the request status of a [Table].
type Meta struct {
	Loading bool
	Status  string
	Err     error
}

// Start seeds the query applied by [Table.Init] before the first fetch.
//
// A positive Limit overrides the persisted page size for this session without being saved.
// Page is 1-based.
type Start struct {
	Limit  int
	Page   int
	Search string
	Sort   []SortField
}

// Option configures a [Table].
type Option func(*Table)

// WithHTTPClient sets the client used for listing requests.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Table) {
		if c != nil {
			t.client = c
		}
	}
}

// WithStore sets where the page size is persisted.
func WithStore(s Store) Option {
	return func(t *Table) {
		if s != nil {
			t.store = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithStart seeds the initial query.
func WithStart(s Start) Option {
	return func(t *Table) {
		t.start = s
	}
}

// Table is a controller for one remote paged listing. It is safe for concurrent use.
type Table struct {
	cfg    Config
	client *http.Client
	store  Store
	logger *log.Logger
	start  Start

	mu      sync.Mutex
	query   Query
	rows    []Record
	meta    Meta
	issued  uint64
	applied uint64
}

// New creates a table for opts merged over [DefaultConfig]. No request is made until [Table.Init].
func New(opts Config, options ...Option) *Table {
	t := &Table{
		cfg:    merge(opts),
		client: http.DefaultClient,
		store:  NewMemoryStore(),
		logger: shared.DiscardLogger(),
	}
	for _, o := range options {
		o(t)
	}
	t.logger = t.logger.With("table", t.cfg.KeyPrefix)
	t.query.Limit = clampLimit(t.cfg.Limit)
	return t
}

func (t *Table) limitKey() string {
	return t.cfg.KeyPrefix + ".limit"
}

// Init restores the persisted page size, applies the [Start] query and performs the first fetch.
func (t *Table) Init(ctx context.Context) {
	t.Prepare()
	t.Fetch(ctx)
}

// Prepare does what [Table.Init] does without fetching, for callers that choose the first page
// themselves.
func (t *Table) Prepare() {
	limit := clampLimit(t.cfg.Limit)
	if saved, ok := t.savedLimit(); ok {
		limit = saved
	}
	if t.start.Limit > 0 {
		limit = clampLimit(t.start.Limit)
	}

	t.mu.Lock()
	t.query.Limit = limit
	t.query.Offset = 0
	t.query.Search = t.start.Search
	t.query.Sort = append([]SortField(nil), t.start.Sort...)
	if t.start.Page > 1 {
		t.query.Offset = (t.start.Page - 1) * limit
	}
	t.mu.Unlock()
}

// PageSize reports the page size [Table.Init] would restore and whether it comes from the store.
// Saved values that Init would ignore are reported as the configured default.
func (t *Table) PageSize() (int, bool) {
	if n, ok := t.savedLimit(); ok {
		return n, true
	}
	return clampLimit(t.cfg.Limit), false
}

// savedLimit reads the persisted page size. Values outside [MinLimit, MaxLimit] are ignored.
func (t *Table) savedLimit() (int, bool) {
	v, ok, err := t.store.Get(t.limitKey())
	if err != nil {
		t.logger.Warn("could not read saved page size", "key", t.limitKey(), "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, ok := parseLeadingInt(v)
	if !ok || n < MinLimit || n > MaxLimit {
		t.logger.Debug("ignoring saved page size", "value", v)
		return 0, false
	}
	return n, true
}

// Fetch requests the current page and applies the result.
//
// Without an endpoint no request is made and the status reads [MissingEndpointStatus].
func (t *Table) Fetch(ctx context.Context) {
	t.mu.Lock()
	if t.cfg.URL == "" {
		t.meta.Status = MissingEndpointStatus
		t.meta.Err = shared.ErrMissingEndpoint
		t.mu.Unlock()
		return
	}
	t.issued++
	seq := t.issued
	endpoint := requestURL(t.cfg.URL, t.cfg.Args, t.query, t.cfg.MultiSort)
	t.meta.Loading = true
	t.meta.Status = t.cfg.Messages.Loading
	t.mu.Unlock()

	t.logger.Debug("fetching page", "url", endpoint, "seq", seq)
	total, rows, err := t.load(ctx, endpoint)

	t.mu.Lock()
	defer t.mu.Unlock()

	latest := seq == t.issued
	if latest {
		t.meta.Loading = false
	}
	if seq < t.applied {
		t.logger.Debug("dropping stale response", "seq", seq, "applied", t.applied)
		return
	}
	t.applied = seq

	if err != nil {
		t.logger.Error("fetch failed", "url", endpoint, "error", err)
		if latest {
			t.meta.Status = t.cfg.Messages.Failed
			t.meta.Err = err
		}
		return
	}

	t.query.Total = total
	t.rows = rows
	if latest {
		t.meta.Err = nil
		t.meta.Status = summary(Paginate(t.query), len(t.rows), t.cfg.Messages.Summary, t.cfg.Noun)
	}
}

type listing struct {
	Total *float64 `json:"total"`
	Data  []Record `json:"data"`
}

func (t *Table) load(ctx context.Context, endpoint string) (int, []Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	for k, v := range t.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, endpoint, resp.StatusCode)
	}

	var payload *listing
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if payload == nil {
		return 0, nil, fmt.Errorf("%w: body is not an object", shared.ErrMalformedResponse)
	}

	total := 0
	if payload.Total != nil && *payload.Total > 0 {
		total = int(*payload.Total)
	}

	rows := make([]Record, 0, len(payload.Data))
	for _, raw := range payload.Data {
		rows = append(rows, materialize(raw, t.cfg.Formatters))
	}
	return total, rows, nil
}

// materialize applies formatters to raw. Keys present in raw come first; formatter keys absent
// from raw then become derived columns computed from the whole row.
func materialize(raw Record, formatters map[string]Formatter) Record {
	row := make(Record, len(raw)+len(formatters))
	for key, value := range raw {
		if f := formatters[key]; f != nil {
			row[key] = f(value, raw)
		} else {
			row[key] = value
		}
	}
	for key, f := range formatters {
		if f == nil {
			continue
		}
		if _, ok := row[key]; !ok {
			row[key] = f(nil, raw)
		}
	}
	return row
}

// GoFirstPage moves to offset zero and fetches.
func (t *Table) GoFirstPage(ctx context.Context) {
	t.mu.Lock()
	t.query.Offset = Paginate(t.query).FirstPageOffset
	t.mu.Unlock()
	t.Fetch(ctx)
}

// GoLastPage moves to the last page and fetches.
func (t *Table) GoLastPage(ctx context.Context) {
	t.mu.Lock()
	t.query.Offset = Paginate(t.query).LastPageOffset
	t.mu.Unlock()
	t.Fetch(ctx)
}

// GoNextPage moves forward one page. It does nothing on the last page.
func (t *Table) GoNextPage(ctx context.Context) {
	t.mu.Lock()
	p := Paginate(t.query)
	if p.CurrentPage >= p.TotalPages {
		t.mu.Unlock()
		return
	}
	t.query.Offset = p.NextPageOffset
	t.mu.Unlock()
	t.Fetch(ctx)
}

// GoPrevPage moves back one page. It does nothing on the first page.
func (t *Table) GoPrevPage(ctx context.Context) {
	t.mu.Lock()
	p := Paginate(t.query)
	if p.CurrentPage <= 1 {
		t.mu.Unlock()
		return
	}
	t.query.Offset = p.PrevPageOffset
	t.mu.Unlock()
	t.Fetch(ctx)
}

// GoToPage moves to a 1-based page without checking it against the total.
func (t *Table) GoToPage(ctx context.Context, page int) {
	t.mu.Lock()
	t.query.Offset = max(page-1, 0) * t.query.Limit
	t.mu.Unlock()
	t.Fetch(ctx)
}

// SetPageSize applies user input as the page size, persists it and returns to the first page.
//
// The leading integer of raw is used ("50 rows" is 50). Input without one falls back to the
// configured limit. The result is clamped to [MinLimit, MaxLimit].
func (t *Table) SetPageSize(ctx context.Context, raw string) {
	n, ok := parseLeadingInt(raw)
	if !ok {
		n = t.cfg.Limit
	}
	n = clampLimit(n)

	t.mu.Lock()
	t.query.Limit = n
	t.query.Offset = 0
	t.mu.Unlock()

	if err := t.store.Set(t.limitKey(), strconv.Itoa(n)); err != nil {
		t.logger.Warn("could not save page size", "key", t.limitKey(), "error", err)
	}
	t.Fetch(ctx)
}

// SetLimit is [Table.SetPageSize] for an integer.
func (t *Table) SetLimit(ctx context.Context, n int) {
	t.SetPageSize(ctx, strconv.Itoa(n))
}

// Search sets the search text, returns to the first page and fetches. Empty text clears it.
func (t *Table) Search(ctx context.Context, text string) {
	t.mu.Lock()
	t.query.Search = text
	t.query.Offset = 0
	t.mu.Unlock()
	t.Fetch(ctx)
}

// SetSort sorts by column in dir and fetches. The column becomes the most recent sort field.
func (t *Table) SetSort(ctx context.Context, column string, dir Direction) {
	t.mu.Lock()
	t.query.Sort = withSort(t.query.Sort, column, dir)
	t.mu.Unlock()
	t.Fetch(ctx)
}

// ToggleSort sorts by column ascending, or flips its direction when already sorted.
func (t *Table) ToggleSort(ctx context.Context, column string) {
	t.mu.Lock()
	dir := Asc
	if cur, ok := sortDirection(t.query.Sort, column); ok && cur == Asc {
		dir = Desc
	}
	t.query.Sort = withSort(t.query.Sort, column, dir)
	t.mu.Unlock()
	t.Fetch(ctx)
}

// ClearSort removes every sort field and fetches.
func (t *Table) ClearSort(ctx context.Context) {
	t.mu.Lock()
	t.query.Sort = nil
	t.mu.Unlock()
	t.Fetch(ctx)
}

// SortDirection reports how column is sorted, if at all.
func (t *Table) SortDirection(column string) (Direction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortDirection(t.query.Sort, column)
}

// Rows returns a copy of the materialized rows of the current page.
func (t *Table) Rows() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		out[i] = maps.Clone(r)
	}
	return out
}

func (t *Table) Meta() Meta {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}

func (t *Table) Query() Query {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query.clone()
}

// Config returns the merged configuration.
func (t *Table) Config() Config {
	return t.cfg
}

// Columns returns the configured columns, or the sorted union of the current row keys.
func (t *Table) Columns() []string {
	if len(t.cfg.Columns) > 0 {
		return append([]string(nil), t.cfg.Columns...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	seen := map[string]struct{}{}
	for _, r := range t.rows {
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

func (t *Table) Pagination() Pagination {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Paginate(t.query)
}

func (t *Table) CurrentPage() int       { return t.Pagination().CurrentPage }
func (t *Table) TotalPages() int        { return t.Pagination().TotalPages }
func (t *Table) FirstPageOffset() int   { return t.Pagination().FirstPageOffset }
func (t *Table) PrevPageOffset() int    { return t.Pagination().PrevPageOffset }
func (t *Table) NextPageOffset() int    { return t.Pagination().NextPageOffset }
func (t *Table) LastPageOffset() int    { return t.Pagination().LastPageOffset }
func (t *Table) FirstDisplayedRow() int { return t.Pagination().FirstDisplayedRow }
func (t *Table) LastDisplayedRow() int  { return t.Pagination().LastDisplayedRow }

// Summary renders the status line for kind ([SummaryRows] or [SummaryPages]) and noun.
// An empty noun uses the configured one.
func (t *Table) Summary(kind, noun string) string {
	if noun == "" {
		noun = t.cfg.Noun
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return summary(Paginate(t.query), len(t.rows), kind, noun)
}
