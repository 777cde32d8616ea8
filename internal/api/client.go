package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"captiondesk/internal/logging"
)

const (
	defaultTimeout   = 30 * time.Second
	maxErrorBody     = 64 << 10
	maxResponseBody  = 16 << 20
	headerIdempotent = "Idempotency-Key"
)

// TokenStore supplies and clears the bearer credential.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Config describes the backend client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *slog.Logger
	// Unauthorized runs after a 401 has cleared the stored credential.
	Unauthorized func(ctx context.Context, err *Error)
}

// Client wraps the captioning backend REST API.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	tokens       TokenStore
	logger       *slog.Logger
	unauthorized func(ctx context.Context, err *Error)
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("api: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", base)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:      baseURL,
		http:         client,
		tokens:       cfg.Tokens,
		logger:       logging.NewComponentLogger(cfg.Logger, "api"),
		unauthorized: cfg.Unauthorized,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	op          string
	method      string
	segments    []string
	body        io.Reader
	contentType string
	// length is the body size when the reader does not expose it.
	length  int64
	headers map[string]string
	// afterSend runs once the response headers arrive without a transport error.
	afterSend func()
}

func jsonBody(value any) (io.Reader, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// do performs req and returns the raw 2xx body.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if c == nil {
		return nil, &Error{Op: req.op, Kind: KindNetwork, Message: "client is not configured"}
	}
	segments := make([]string, len(req.segments))
	for i, segment := range req.segments {
		segments[i] = url.PathEscape(segment)
	}
	endpoint := c.baseURL.JoinPath(segments...)

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), req.body)
	if err != nil {
		return nil, &Error{Op: req.op, Kind: KindNetwork, Message: "could not build request", Err: err}
	}
	if req.length > 0 {
		httpReq.ContentLength = req.length
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{Op: req.op, Kind: KindNetwork, Message: "could not read stored credential", Err: err}
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	path := endpoint.EscapedPath()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String("method", req.method),
		logging.String("path", path),
	)
	logger.Debug("request started")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		msg := "network request failed"
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			msg = "request timed out"
		} else if errors.Is(err, context.Canceled) {
			msg = "request canceled"
		}
		logger.Warn("request failed",
			logging.Duration("duration", elapsed),
			logging.Error(err),
			logging.String(logging.FieldEventType, "api_network_error"),
		)
		return nil, &Error{Op: req.op, Kind: KindNetwork, Message: msg, Err: err}
	}
	defer resp.Body.Close()
	if req.afterSend != nil {
		req.afterSend()
	}

	logger = logger.With(logging.Int("status", resp.StatusCode), logging.Duration("duration", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{
			Op:      req.op,
			Kind:    KindBackend,
			Status:  resp.StatusCode,
			Message: extractMessage(body, resp.StatusCode),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			apiErr.Kind = KindUnauthorized
			c.invalidateSession(ctx, apiErr)
		}
		logger.Warn("request rejected",
			logging.String("message", apiErr.Message),
			logging.String(logging.FieldEventType, "api_"+string(apiErr.Kind)+"_error"),
		)
		return nil, apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		logger.Warn("response read failed", logging.Error(err))
		return nil, &Error{Op: req.op, Kind: KindNetwork, Status: resp.StatusCode, Message: "could not read response", Err: err}
	}
	logger.Debug("request finished")
	return body, nil
}

func (c *Client) invalidateSession(ctx context.Context, apiErr *Error) {
	if c.tokens != nil {
		if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("clear credential failed", logging.Error(err))
		}
	}
	if c.unauthorized != nil {
		c.unauthorized(ctx, apiErr)
	}
}

// decode unmarshals a 2xx body into out.
func decode(op string, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &Error{Op: op, Kind: KindDecode, Message: "empty response body"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op string, out any, segments ...string) error {
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, segments: segments})
	if err != nil {
		return err
	}
	return decode(op, body, out)
}
