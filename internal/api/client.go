// Package api talks to the remote todo REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultBaseURL is where the todo server listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:8000"

// Client is the set of operations the list view needs from the server.
type Client interface {
	List(ctx context.Context) Result[[]model.Item]
	Create(ctx context.Context, req model.CreateRequest) Result[model.Item]
	Update(ctx context.Context, id string, req model.UpdateRequest) Result[model.Item]
	Delete(ctx context.Context, id string) Result[model.DeleteResponse]
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over net/http. One attempt per call: no
// retries and no timeout beyond what the caller's context carries.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint root the client sends requests to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) List(ctx context.Context) Result[[]model.Item] {
	return do[[]model.Item](ctx, c, http.MethodGet, "/todos", nil)
}

func (c *HTTPClient) Create(ctx context.Context, req model.CreateRequest) Result[model.Item] {
	return do[model.Item](ctx, c, http.MethodPost, "/todos", req)
}

func (c *HTTPClient) Update(ctx context.Context, id string, req model.UpdateRequest) Result[model.Item] {
	return do[model.Item](ctx, c, http.MethodPut, itemPath(id), req)
}

func (c *HTTPClient) Delete(ctx context.Context, id string) Result[model.DeleteResponse] {
	return do[model.DeleteResponse](ctx, c, http.MethodDelete, itemPath(id), nil)
}

func itemPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

// errorBody is the optional JSON payload of a non-2xx response.
type errorBody struct {
	Detail any `json:"detail"`
}

// do performs one request and flattens every failure into Result.Err.
func do[T any](ctx context.Context, c *HTTPClient, method, path string, body any) Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.logger.With("method", method, "path", path)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			logger.Debug("encode request", "err", err)
			return Fail[T](fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		logger.Debug("build request", "err", err)
		return Fail[T](err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("transport failure", "err", err)
		return Fail[T](err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug("read response", "status", resp.StatusCode, "err", err)
		return Fail[T](err.Error())
	}
	logger.Debug("response", "status", resp.StatusCode, "bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.StatusCode, raw)
		logger.Debug("request failed", "status", resp.StatusCode, "error", msg)
		return Fail[T](msg)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return OKEmpty[T]()
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Debug("decode response", "status", resp.StatusCode, "err", err)
		return Fail[T](err.Error())
	}
	return OK(out)
}

// errorMessage prefers a non-empty string detail; anything else (no body,
// non-JSON, structured detail) falls back to the status code.
func errorMessage(status int, raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if s, ok := eb.Detail.(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
