package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	// CSRFCookieName is the cookie the backend sets with the anti-forgery token
	CSRFCookieName = "XSRF-TOKEN"
	// CSRFHeaderName echoes the token back on every request
	CSRFHeaderName = "X-XSRF-TOKEN"
	// RequestIDHeader correlates client and backend logs
	RequestIDHeader = "X-Request-ID"
)

// Backend endpoints
const (
	LoginPath         = "/api/login"
	RegisterPath      = "/api/register"
	UserPath          = "/api/user"
	LogoutPath        = "/api/logout"
	AuthorizationPath = "/oauth2/authorization/"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 1 << 20
)

// ErrNetwork marks transport failures: the backend could not be reached or the
// response could not be read. Non-2xx statuses are not network errors.
var ErrNetwork = errors.New("backend unreachable")

// Client represents an HTTP client for the authentication backend. Every
// request carries the cookie jar and, when the backend issued one, the CSRF token.
type Client struct {
	baseURL    string
	origin     *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	timeout    time.Duration
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its Jar is replaced by the
// client's jar so credentials are always included.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			copied := *httpClient
			c.httpClient = &copied
		}
	}
}

// WithJar sets the cookie jar used for credentials
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client for baseURL (scheme://host[:port][/prefix])
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	origin, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    base,
		origin:     origin,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.jar == nil {
		c.jar = c.httpClient.Jar
	}
	if c.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.jar = jar
	}
	c.httpClient.Jar = c.jar

	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = c.timeout
	}

	return c, nil
}

// BaseURL returns the normalized backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar holding the backend session
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// CSRFToken returns the anti-forgery token the backend stored in the jar
func (c *Client) CSRFToken() (string, bool) {
	for _, cookie := range c.jar.Cookies(c.origin) {
		if cookie.Name == CSRFCookieName && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}

// AuthorizationURL is the backend-owned entry point of the federated login
// flow for provider. Front ends navigate the browser to it.
func (c *Client) AuthorizationURL(provider string) string {
	return c.baseURL + AuthorizationPath + url.PathEscape(provider)
}

// RequestOption tweaks a single request
type RequestOption func(*requestOptions)

type requestOptions struct {
	skipCSRF bool
	headers  http.Header
}

// WithoutCSRF suppresses the CSRF header for one request
func WithoutCSRF() RequestOption {
	return func(o *requestOptions) {
		o.skipCSRF = true
	}
}

// WithHeader sets an extra header on one request
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// Post sends body as JSON to endpoint
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, body, opts...)
}

// Get fetches endpoint
func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil, opts...)
}

// Logout asks the backend to end the session
func (c *Client) Logout(ctx context.Context) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, LogoutPath, nil)
}

// Do sends a request and returns the raw response. It only fails when the
// request cannot be built or the backend cannot be reached; callers interpret
// the status and body (see ReadResult).
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (*http.Response, error) {
	ro := requestOptions{headers: http.Header{}}
	for _, opt := range opts {
		opt(&ro)
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	if !ro.skipCSRF {
		if token, ok := c.CSRFToken(); ok {
			req.Header.Set(CSRFHeaderName, token)
		}
	}

	for key, values := range ro.headers {
		req.Header[key] = values
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", endpoint).
			Str("request_id", requestID).
			Msg("Backend request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, endpoint, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("Backend request")

	return resp, nil
}
