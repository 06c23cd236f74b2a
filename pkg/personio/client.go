package personio

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/internal/metrics"
	"github.com/Checker-Finance/personio-adapter/internal/rate"
	"github.com/Checker-Finance/personio-adapter/pkg/utils"
)

// Client is the Personio API client. It is safe for concurrent use; the token
// cache is its only shared mutable state.
//
// Every method returns either *Error or *InvalidArgumentError on failure.
type Client struct {
	logger    *zap.Logger
	baseURL   string
	transport Transport
	tokens    *TokenCache
	auth      *Authenticator

	httpClient *http.Client
	rateMgr    *rate.Manager
	rateKey    string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the client and its default transport.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBaseURL points the client at another API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

// WithTransport replaces the HTTP transport entirely.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPClient sets the *http.Client used by the default transport.
// Timeouts are taken from it; the client enforces none of its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter makes the default transport wait on mgr under key.
func WithRateLimiter(mgr *rate.Manager, key string) Option {
	return func(c *Client) {
		c.rateMgr = mgr
		c.rateKey = key
	}
}

// New creates a Client for creds.
func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		logger:  zap.NewNop(),
		baseURL: DefaultBaseURL,
		tokens:  &TokenCache{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.transport == nil {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: 30 * time.Second}
		}
		c.transport = NewHTTPTransport(c.logger, c.httpClient, c.rateMgr, c.rateKey)
	}
	c.auth = NewAuthenticator(c.logger, creds, c.baseURL, c.transport, c.tokens)
	return c
}

// Head performs a HEAD request with optional query parameters.
func (c *Client) Head(ctx context.Context, endpoint string, params any) (*Response, error) {
	return c.do(ctx, http.MethodHead, endpoint, params, nil)
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params any) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, data)
}

// Patch performs a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, data any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, endpoint, nil, data)
}

// Delete performs a DELETE request with optional query parameters.
func (c *Client) Delete(ctx context.Context, endpoint string, params any) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, params, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params, data any) (*Response, error) {
	u, err := BuildURL(c.baseURL, endpoint, params)
	if err != nil {
		return nil, err
	}
	req, err := NewRequest(method, u, nil, data)
	if err != nil {
		return nil, err
	}
	req, err = c.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, sendErr := c.transport.Send(ctx, req)
	resp, err = classify(req, resp, sendErr)
	if err != nil {
		c.logger.Debug("personio.request_failed",
			zap.String("method", method),
			zap.String("url", utils.RedactQuery(u)),
			zap.Error(err))
		return nil, err
	}

	if c.tokens.Refresh(resp.Header.Get("Authorization")) {
		metrics.IncTokenRotation()
		c.logger.Debug("personio.token_rotated", zap.String("endpoint", endpoint))
	}
	return resp, nil
}
