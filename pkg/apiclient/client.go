package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gotodo/todokit/pkg/logger"
	"github.com/gotodo/todokit/pkg/session"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "gotodo-cli"

	// RequestIDHeader carries the per-request id generated by the client.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Client sends JSON requests to the goTodo API.
type Client struct {
	base      *url.URL
	hc        *http.Client
	userAgent string
	log       *slog.Logger
}

type options struct {
	hc        *http.Client
	jar       http.CookieJar
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
	log       *slog.Logger
}

type Option func(*options)

// WithHTTPClient replaces the default client (timeout plus cookie jar).
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// WithCookieJar sets the jar of the default client. It is ignored when
// WithHTTPClient is used.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithTransport sets the round tripper, e.g. an oauth2.Transport, on
// whichever http.Client is used.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, baseURL)
	}

	o := options{timeout: defaultTimeout, userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.hc
	if hc == nil {
		jar := o.jar
		if jar == nil {
			if jar, err = cookiejar.New(nil); err != nil {
				return nil, err
			}
		}
		hc = &http.Client{Timeout: o.timeout, Jar: jar}
	}
	if o.transport != nil {
		cp := *hc
		cp.Transport = o.transport
		hc = &cp
	}

	return &Client{
		base:      base,
		hc:        hc,
		userAgent: o.userAgent,
		log:       logger.OrDiscard(o.log).With(logger.Component("apiclient")),
	}, nil
}

// NewFromConfig creates a client from cfg. Options override cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{WithUserAgent(cfg.UserAgent)}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// BaseURL returns the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// HTTPClient exposes the underlying client, e.g. to inspect its cookie jar.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

// Do sends in as JSON (when non-nil) to path and decodes a 2xx body into
// out (when non-nil). op names the call in errors and logs.
func (c *Client) Do(ctx context.Context, op, method, path string, in, out any) error {
	reqID := uuid.NewString()
	fail := func(status int, err error) *Error {
		return &Error{Op: op, Method: method, Path: path, Status: status, RequestID: reqID, Err: err}
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fail(0, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "request failed",
			logger.Operation(op), logger.RequestID(reqID), logger.Error(err))
		return fail(0, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "request completed",
		logger.Operation(op),
		slog.String("method", method),
		slog.String("path", path),
		logger.Status(resp.StatusCode),
		logger.RequestID(reqID),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := fail(resp.StatusCode, nil)
		e.Message = errorMessage(resp.Body)
		return e
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, errors.Join(session.ErrInvalidResponseShape, err))
	}
	return nil
}

// errorMessage extracts {"error": "..."} from an error body, falling back
// to the trimmed text.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
