// Package backend is the HTTP adapter for the rental-management REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
)

const maxBodyBytes = 1 << 20

// TokenSource returns the auth token for the current browser context, "" when signed out.
type TokenSource func(ctx context.Context) string

// UnauthorizedHook is called for every 401 answer, whatever the endpoint.
type UnauthorizedHook func(ctx context.Context, endpoint string)

type Client struct {
	baseURL        *url.URL
	http           *http.Client
	token          TokenSource
	onUnauthorized UnauthorizedHook
	classifier     *ConflictClassifier
	logger         *zap.Logger
}

// New builds an unauthenticated client. Use WithSession to bind it to a browser context.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		classifier: NewConflictClassifier(),
		logger:     logger,
	}, nil
}

// WithSession returns a copy that authenticates with token and reports 401s to hook.
func (c *Client) WithSession(token TokenSource, hook UnauthorizedHook) *Client {
	cp := *c
	cp.token = token
	cp.onUnauthorized = hook
	return &cp
}

func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Response, error) {
	op := method + " " + endpoint

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		payload = bytes.NewReader(b)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: endpoint, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	metrics.Get().BackendRequestDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("method", method),
			attribute.Int("status", status),
		))
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("op", op), zap.Error(err))
		return nil, &models.NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

func (c *Client) unauthorized(ctx context.Context, endpoint string) {
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx, endpoint)
	}
}

// do performs a JSON request and maps the answer onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(ctx, endpoint)
		return &models.SessionExpiredError{Endpoint: endpoint}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return c.errorFrom(resp)
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &models.NetworkError{Op: method + " " + endpoint, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &models.APIError{Status: resp.StatusCode, Message: "unreadable response: " + err.Error()}
	}
	return nil
}

func (c *Client) errorFrom(resp *http.Response) error {
	message := decodeErrorMessage(resp)
	if field, ok := c.classifier.Classify(resp.StatusCode, message); ok {
		return &models.UniquenessConflictError{Field: field, Message: message}
	}
	return &models.APIError{Status: resp.StatusCode, Message: message}
}
