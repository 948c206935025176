// Package api is an HTTP client for the /todos endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-client/internal/model"
)

const (
	todosPath    = "/todos"
	maxErrorBody = 4 << 10
)

// Client talks to a todo API. Calls are independent: no retries, no ordering.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root this client was built for.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// List fetches every todo. A JSON null body yields an empty slice.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, 0, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts a new todo. The created record is returned when the server
// echoes it back, nil otherwise.
func (c *Client) Create(ctx context.Context, in model.Input) (*model.Todo, error) {
	var created model.Todo
	if err := c.do(ctx, http.MethodPost, 0, in, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, nil
	}
	return &created, nil
}

// Update replaces the writable fields of todo id.
func (c *Client) Update(ctx context.Context, id int, in model.Input) error {
	return c.do(ctx, http.MethodPut, id, in, nil)
}

// Delete removes todo id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, id, nil, nil)
}

func (c *Client) endpoint(id int) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + todosPath
	if id != 0 {
		q := u.Query()
		q.Set("id", strconv.Itoa(id))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do performs one request. body is JSON-encoded when non-nil; out is decoded
// from a non-empty response body when non-nil.
func (c *Client) do(ctx context.Context, method string, id int, body, out any) error {
	target := c.endpoint(id)

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "err", err)
		return fmt.Errorf("%s %s: %w", method, req.URL.RequestURI(), err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "url", target, "status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(req, resp)
	}
	if out == nil {
		// drain so the keep-alive connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
