package table

import "maps"

const (
	DefaultLimit     = 25
	MinLimit         = 1
	MaxLimit         = 100
	DefaultKeyPrefix = "lBt"
	DefaultNoun      = "results"

	// SummaryRows and SummaryPages are the summary kinds understood by [Table.Summary].
	SummaryRows  = "rows"
	SummaryPages = "pages"

	MissingEndpointStatus = "Missing endpoint url"
	NoResultsSummary      = "No results"
)

// Record is a single row as decoded from, or materialized for, a listing.
type Record map[string]any

// Formatter turns a raw field value into its display value. The whole raw row is passed for
// columns derived from other fields.
type Formatter func(raw any, row Record) any

// Args maps the logical query parameters to the names the endpoint expects.
type Args struct {
	Limit  string
	Offset string
	Search string
	Sort   string
}

// Messages are the status strings shown while loading, after a failure, and the summary kind
// used for the status after a successful fetch.
type Messages struct {
	Loading string
	Failed  string
	Summary string
}

// Config describes one listing. Zero values fall back to [DefaultConfig].
type Config struct {
	URL        string
	KeyPrefix  string
	Limit      int
	MultiSort  bool
	Args       Args
	Messages   Messages
	Headers    map[string]string
	Formatters map[string]Formatter
	Columns    []string
	Noun       string
}

// DefaultConfig returns the built-in settings every [Config] is merged over.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: DefaultKeyPrefix,
		Limit:     DefaultLimit,
		Args: Args{
			Limit:  "limit",
			Offset: "offset",
			Search: "search",
			Sort:   "sort",
		},
		Messages: Messages{
			Loading: "Loading...",
			Failed:  "Loading failed",
			Summary: SummaryRows,
		},
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Requested-With": "parthero",
		},
		Formatters: map[string]Formatter{},
		Noun:       DefaultNoun,
	}
}

// merge overlays the caller's options on the defaults.
//
// Scalars override when non-zero, Args and Messages field by field, Headers key by key.
// A non-nil Formatters map replaces the defaults.
func merge(opts Config) Config {
	cfg := DefaultConfig()

	if opts.URL != "" {
		cfg.URL = opts.URL
	}
	if opts.KeyPrefix != "" {
		cfg.KeyPrefix = opts.KeyPrefix
	}
	if opts.Limit > 0 {
		cfg.Limit = opts.Limit
	}
	cfg.MultiSort = opts.MultiSort

	cfg.Args.Limit = override(cfg.Args.Limit, opts.Args.Limit)
	cfg.Args.Offset = override(cfg.Args.Offset, opts.Args.Offset)
	cfg.Args.Search = override(cfg.Args.Search, opts.Args.Search)
	cfg.Args.Sort = override(cfg.Args.Sort, opts.Args.Sort)

	cfg.Messages.Loading = override(cfg.Messages.Loading, opts.Messages.Loading)
	cfg.Messages.Failed = override(cfg.Messages.Failed, opts.Messages.Failed)
	cfg.Messages.Summary = override(cfg.Messages.Summary, opts.Messages.Summary)

	maps.Copy(cfg.Headers, opts.Headers)

	if opts.Formatters != nil {
		cfg.Formatters = maps.Clone(opts.Formatters)
	}
	if len(opts.Columns) > 0 {
		cfg.Columns = append([]string(nil), opts.Columns...)
	}
	cfg.Noun = override(cfg.Noun, opts.Noun)

	return cfg
}

func override(def, v string) string {
	if v != "" {
		return v
	}
	return def
}

// clampLimit bounds a page size to [MinLimit, MaxLimit].
func clampLimit(n int) int {
	return min(max(n, MinLimit), MaxLimit)
}
