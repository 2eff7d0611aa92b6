package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/shared"
)

const (
	defaultRetryCount   = 3
	defaultRetryWait    = 100 * time.Millisecond
	defaultRetryMaxWait = 2 * time.Second
	defaultTimeout      = 60 * time.Second
)

// Client talks to the orchestra API on behalf of a browser session.
type Client struct {
	api     *resty.Client
	upload  *resty.Client
	session *shared.Session
	logger  *log.Logger
}

var (
	_ PartAssetService = (*Client)(nil)
	_ ProgramService   = (*Client)(nil)
)

// ClientOption configures a [Client].
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     *log.Logger
	retries    int
	retryWait  time.Duration
	timeout    time.Duration
}

// WithHTTPClient sets the underlying HTTP client for API calls and uploads.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithRetries sets how many times a failed API call is retried and the initial wait between tries.
func WithRetries(count int, wait time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.retries = count
		o.retryWait = wait
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// NewClient creates a client for session. baseURL overrides the session's own base URL when set.
func NewClient(session *shared.Session, baseURL string, opts ...ClientOption) (*Client, error) {
	if session == nil || session.Cookie == "" || session.CSRFToken == "" {
		return nil, fmt.Errorf("%w: cookie and CSRF token are required", shared.ErrMissingSession)
	}
	if baseURL == "" {
		baseURL = session.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: no base url", shared.ErrInvalidConfig)
	}

	o := clientOptions{
		logger:    shared.DiscardLogger(),
		retries:   defaultRetryCount,
		retryWait: defaultRetryWait,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	api := newResty(o).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader(shared.CSRFHeader, session.CSRFToken).
		SetHeader("Cookie", session.Cookie).
		SetRetryCount(o.retries).
		SetRetryWaitTime(o.retryWait).
		SetRetryMaxWaitTime(defaultRetryMaxWait).
		AddRetryCondition(retryCondition)

	return &Client{
		api:     api,
		upload:  newResty(o),
		session: session,
		logger:  o.logger,
	}, nil
}

func newResty(o clientOptions) *resty.Client {
	var c *resty.Client
	if o.httpClient != nil {
		c = resty.NewWithClient(o.httpClient)
	} else {
		c = resty.New()
	}
	return c.SetTimeout(o.timeout).SetLogger(o.logger)
}

// retryCondition retries network errors and server errors of requests that can be replayed.
// POST is never retried: a gateway error after the API created an asset would create it twice.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || !replayable(r.Request.Method) {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// replayable reports whether method can be sent again. The PATCH bodies this client sends set
// absolute values, so repeating them is safe.
func replayable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// APIError is the error body returned by the API.
type APIError struct {
	Detail  string `json:"detail"`
	Message string `json:"error"`
}

func (e *APIError) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// do performs a request and converts transport failures and non-2xx statuses into errors.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.api.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}

	if resp.IsError() {
		if apiErr, ok := resp.Error().(*APIError); ok && apiErr.message() != "" {
			return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode(), apiErr.message())
		}
		return fmt.Errorf("%w: %s %s returned %d", shared.ErrAPIRequest, method, path, resp.StatusCode())
	}

	c.logger.Debug("API request completed", "method", method, "path", path, "status", resp.StatusCode())
	return nil
}

func (c *Client) CreatePartAsset(ctx context.Context, pieceID, filename string, assetType models.AssetType) (*models.PartAsset, error) {
	body := map[string]any{"filename": filename, "asset_type": assetType}

	var asset models.PartAsset
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/pieces/%s/asset", pieceID), body, &asset); err != nil {
		return nil, err
	}
	if asset.ID == "" || asset.UploadURL == "" {
		return nil, fmt.Errorf("%w: asset response without id or upload_url", shared.ErrMalformedResponse)
	}
	return &asset, nil
}

func (c *Client) UpdatePartAsset(ctx context.Context, pieceID string, asset *models.PartAsset, status models.AssetStatus) error {
	body := map[string]any{"status": status, "part_ids": asset.PartIDs()}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/pieces/%s/asset/%s", pieceID, asset.ID), body, nil)
}

func (c *Client) AssignParts(ctx context.Context, pieceID, assetID string, partIDs []int) (*models.PartAsset, error) {
	if partIDs == nil {
		partIDs = []int{}
	}
	body := map[string]any{"part_ids": partIDs}

	var asset models.PartAsset
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/pieces/%s/asset/%s", pieceID, assetID), body, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *Client) ListPartAssets(ctx context.Context, pieceID string, assetType models.AssetType) (*models.PartAssetList, error) {
	var list models.PartAssetList
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParam("asset_type", string(assetType)).
		SetResult(&list).
		Get(fmt.Sprintf("/api/pieces/%s/assets", pieceID))
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: list assets returned %d", shared.ErrAPIRequest, resp.StatusCode())
	}
	return &list, nil
}

func (c *Client) DeletePartAsset(ctx context.Context, pieceID, assetID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/pieces/%s/asset/%s", pieceID, assetID), nil, nil)
}
