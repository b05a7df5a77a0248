package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Observer records the outcome of every upstream call.
type Observer interface {
	ObserveUpstream(method, route string, status int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the analysis backend.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	logger   *zap.Logger
	observer Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithObserver reports call durations to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New builds a client. tokens is consulted once per request.
func New(cfg Config, tokens TokenSource, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, query, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, query, body, out)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPatch, path, query, body, out)
}

// Upload posts a multipart form with a single file part.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return &Error{Status: 0, Message: GenericErrorMessage, Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &Error{Status: 0, Message: GenericErrorMessage, Err: err}
	}
	if err := form.Close(); err != nil {
		return &Error{Status: 0, Message: GenericErrorMessage, Err: err}
	}

	resp, err := c.send(ctx, http.MethodPost, path, nil, &buf, form.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

// Blob is a streamed binary response. The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

// Download streams GET path.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*Blob, error) {
	resp, err := c.send(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	blob := &Blob{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		blob.Filename = filenameFromDisposition(cd)
	}
	return blob, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := encodeTrimmed(body)
		if err != nil {
			return &Error{Status: 0, Message: GenericErrorMessage, Err: err}
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, query, reader, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

// send performs the request and converts any non-2xx response into *Error.
// On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Status: 0, Message: GenericErrorMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case !errors.Is(err, ErrNoToken):
			return nil, &Error{Status: http.StatusUnauthorized, Message: SessionErrorMessage, Err: err}
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	route := routeLabel(path)
	if err != nil {
		c.observe(method, route, 0, time.Since(start))
		c.logger.Warn("upstream unreachable", zap.String("method", method), zap.String("route", route), zap.Error(err))
		return nil, networkError(err)
	}
	c.observe(method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		gwErr := httpError(resp.StatusCode, raw)
		c.logger.Info("upstream rejected request",
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("status", resp.StatusCode),
			zap.String("message", gwErr.Message),
		)
		return nil, gwErr
	}
	return resp, nil
}

func (c *Client) observe(method, route string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(method, route, status, d)
	}
}

func decode(resp *http.Response, out interface{}) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Status: resp.StatusCode, Message: GenericErrorMessage, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var idSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

// routeLabel collapses numeric path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	path = "/" + strings.Trim(path, "/")
	for idSegment.MatchString(path) {
		path = idSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}

func filenameFromDisposition(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "filename=") {
			return strings.Trim(part[len("filename="):], `"`)
		}
	}
	return ""
}
