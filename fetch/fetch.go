package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

/*
Responsibilities

- Perform a single HTTP GET
- Apply headers
- Return status, headers and the full body

The fetcher never classifies status codes or parses content. Deciding what a
404 or a malformed body means is the caller's job. There are no retries.
*/

const DefaultUserAgent = "gitacache/1.0 (+https://github.com/unkn0wn-root/gitacache)"

// Fetcher is the external read capability.
type Fetcher interface {
	Fetch(ctx context.Context, u url.URL) (Result, error)
}

type Result struct {
	url        url.URL
	statusCode int
	body       []byte
	headers    http.Header
}

func (r Result) URL() url.URL        { return r.url }
func (r Result) Code() int           { return r.statusCode }
func (r Result) Body() []byte        { return r.body }
func (r Result) Header() http.Header { return r.headers }
func (r Result) OK() bool            { return r.statusCode >= 200 && r.statusCode < 300 }
func (r Result) ContentType() string { return r.headers.Get("Content-Type") }
func (r Result) SizeByte() int       { return len(r.body) }

// NewResult builds a Result. Intended for fakes in tests of packages that
// depend on Fetcher.
func NewResult(u url.URL, statusCode int, body []byte, headers http.Header) Result {
	if headers == nil {
		headers = http.Header{}
	}
	return Result{url: u, statusCode: statusCode, body: body, headers: headers}
}

type Config struct {
	// Client defaults to a client with no timeout; cancellation comes from ctx.
	Client    *http.Client
	UserAgent string
	// Timeout, when > 0, is applied to a copy of Client.
	Timeout time.Duration
	// MaxBodyBytes bounds the response body; 0 = unlimited.
	MaxBodyBytes int64
}

// HTTP fetches over net/http.
type HTTP struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

var _ Fetcher = (*HTTP)(nil)

func NewHTTP(cfg Config) *HTTP {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout > 0 {
		cp := *client
		cp.Timeout = cfg.Timeout
		client = &cp
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTP{client: client, userAgent: ua, maxBody: cfg.MaxBodyBytes}
}

func (h *HTTP) Fetch(ctx context.Context, u url.URL) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.1")

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if h.maxBody > 0 {
		body = io.LimitReader(resp.Body, h.maxBody+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}
	if h.maxBody > 0 && int64(len(b)) > h.maxBody {
		return Result{}, fmt.Errorf("response body exceeds %d bytes", h.maxBody)
	}

	return Result{
		url:        u,
		statusCode: resp.StatusCode,
		body:       b,
		headers:    resp.Header.Clone(),
	}, nil
}
