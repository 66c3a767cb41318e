package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	limiterKey = "api"
)

// TokenSource supplies the persisted access token and forgets it on 401.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	ClearTokens(ctx context.Context) error
}

// Config holds transport settings.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string

	// Timeout bounds each request, including reading the body.
	Timeout time.Duration

	// MaxConcurrent caps in-flight requests (default: 8).
	MaxConcurrent int

	// RatePerSecond enables a client-side limiter when positive.
	RatePerSecond int

	// HTTPClient overrides the default tuned client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// DefaultConfig returns the settings of the web client.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080",
		Timeout:       10 * time.Second,
		MaxConcurrent: 8,
	}
}

// Client is the REST transport shared by all services.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	tokens   TokenSource
	bulkhead bulkhead.Bulkhead[*Response]
	limiter  ratelimit.RateLimiter
	logger   *slog.Logger
}

// New creates a client. tokens may be nil for unauthenticated use.
func New(cfg Config, tokens TokenSource) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		tokens:  tokens,
		logger:  cfg.Logger,
	}
	if c.http == nil {
		c.http = newHTTPClient()
	}

	c.bulkhead = bulkhead.New[*Response](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 4,
		QueueTimeout:  cfg.Timeout,
	})

	if cfg.RatePerSecond > 0 {
		c.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     cfg.RatePerSecond,
			Burst:    cfg.RatePerSecond * 2,
			Interval: time.Second,
		})
	}

	return c
}

// Close releases the rate limiter.
func (c *Client) Close() error {
	if c.limiter != nil {
		return c.limiter.Close()
	}
	return nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a completed 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// IsJSON reports whether the response declared a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Value returns the decoded JSON body with numbers kept as json.Number,
// or the body as a string when it is not JSON.
func (r *Response) Value() (any, error) {
	if !r.IsJSON() {
		return string(r.Body), nil
	}
	return decodeValue(r.Body)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, header)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, header)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, header)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, header)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, header)
}

// Do sends a JSON request. A nil body sends no payload.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = data
	}

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	for k, v := range header {
		h[http.CanonicalHeaderKey(k)] = v
	}

	return c.execute(ctx, method, path, payload, h)
}

// Upload sends r as a multipart/form-data file field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, header http.Header) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	h := http.Header{}
	h.Set("Accept", "application/json")
	for k, v := range header {
		h[http.CanonicalHeaderKey(k)] = v
	}
	h.Set("Content-Type", mw.FormDataContentType())

	return c.execute(ctx, http.MethodPost, path, buf.Bytes(), h)
}

func (c *Client) execute(ctx context.Context, method, path string, payload []byte, header http.Header) (*Response, error) {
	if c.limiter != nil && !c.limiter.Allow(ctx, limiterKey) {
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Message: defaultMessages[KindNetwork], cause: ErrRateLimited}
	}

	resp, err := c.bulkhead.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return c.send(ctx, method, path, payload, header)
	})
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// Deadline ran out while queued for a bulkhead slot.
			return nil, &Error{Kind: KindTimeout, Method: method, Path: path, Message: defaultMessages[KindTimeout], cause: err}
		}
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Message: defaultMessages[KindNetwork], cause: err}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, header http.Header) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	if req.Header.Get("Authorization") == "" && c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			c.logger.Warn("read access token", "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, method, path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.transportError(ctx, method, path, err)
	}

	c.logger.Debug("api request",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}
	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return resp, nil
	}

	return nil, c.statusError(ctx, method, path, resp)
}

func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Method: method, Path: path, Message: defaultMessages[KindTimeout], cause: err}
	}
	return &Error{Kind: KindNetwork, Method: method, Path: path, Message: defaultMessages[KindNetwork], cause: err}
}

func (c *Client) statusError(ctx context.Context, method, path string, resp *Response) error {
	kind := kindForStatus(resp.Status)
	apiErr := &Error{
		Kind:    kind,
		Status:  resp.Status,
		Method:  method,
		Path:    path,
		Message: defaultMessages[kind],
	}

	var envelope struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if resp.IsJSON() {
		if v, err := decodeValue(resp.Body); err == nil {
			apiErr.Body = v
		}
		if err := json.Unmarshal(resp.Body, &envelope); err == nil {
			apiErr.Errors = envelope.Errors
			if envelope.Message != "" && !usesFixedMessage(resp.Status) {
				apiErr.Message = envelope.Message
			}
		}
	} else if len(resp.Body) > 0 {
		apiErr.Body = string(resp.Body)
	}

	if kind == KindUnauthorized && c.tokens != nil {
		c.logger.Warn("unauthorized response, clearing stored tokens", "path", path)
		if err := c.tokens.ClearTokens(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("clear tokens", "error", err)
		}
	}

	return apiErr
}

func decodeValue(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
