package personio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/internal/metrics"
	"github.com/Checker-Finance/personio-adapter/internal/rate"
	"github.com/Checker-Finance/personio-adapter/pkg/utils"
)

// Transport sends a built request. It returns an error only when no response
// was obtained; HTTP error statuses are returned as regular responses.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with an *http.Client. It never retries; an
// optional rate limiter is consulted before every send.
type HTTPTransport struct {
	logger  *zap.Logger
	http    *http.Client
	rateMgr *rate.Manager
	rateKey string
}

// NewHTTPTransport creates an HTTPTransport. rateMgr may be nil; rateKey
// scopes the limiter, typically to a tenant.
func NewHTTPTransport(logger *zap.Logger, httpClient *http.Client, rateMgr *rate.Manager, rateKey string) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{
		logger:  logger,
		http:    httpClient,
		rateMgr: rateMgr,
		rateKey: rateKey,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	if t.rateMgr != nil {
		if err := t.rateMgr.Wait(ctx, t.rateKey); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, redactError(err)
	}
	httpReq.Header = req.Header.Clone()

	callID := uuid.NewString()
	endpoint := endpointLabel(httpReq.URL)
	safeURL := utils.RedactQuery(req.URL)

	start := time.Now()
	resp, err := t.http.Do(httpReq)
	if err != nil {
		err = redactError(err)
		metrics.IncPersonioRequest(endpoint, req.Method, "error")
		t.logger.Warn("personio.http_failed",
			zap.String("call_id", callID),
			zap.String("method", req.Method),
			zap.String("url", safeURL),
			zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncPersonioRequest(endpoint, req.Method, "error")
		t.logger.Warn("personio.read_failed",
			zap.String("call_id", callID),
			zap.String("url", safeURL),
			zap.Error(err))
		return nil, fmt.Errorf("read response body: %w", err)
	}

	elapsed := time.Since(start)
	metrics.IncPersonioRequest(endpoint, req.Method, fmt.Sprintf("%d", resp.StatusCode))
	metrics.ObserveDuration(metrics.PersonioRequestDuration, start, endpoint, req.Method)

	if resp.StatusCode >= http.StatusInternalServerError {
		t.logger.Warn("personio.server_error",
			zap.String("call_id", callID),
			zap.Int("status", resp.StatusCode),
			zap.String("url", safeURL),
			zap.Duration("latency", elapsed))
	} else {
		t.logger.Debug("personio.http_done",
			zap.String("call_id", callID),
			zap.String("method", req.Method),
			zap.String("url", safeURL),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// redactError strips credentials from the URL embedded in *url.Error so the
// client secret of the auth exchange never reaches logs or error messages.
func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = utils.RedactQuery(ue.URL)
	}
	return err
}

var numericSegment = regexp.MustCompile(`^[0-9]+$`)

// endpointLabel reduces a URL to a low-cardinality metric label, e.g.
// /v1/company/employees/42 → company/employees/:id.
func endpointLabel(u *url.URL) string {
	if u == nil {
		return "unknown"
	}
	path := strings.Trim(u.Path, "/")
	if _, rest, ok := strings.Cut(path, "v1/"); ok {
		path = rest
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if numericSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
