package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/amaumene/unig/internal/telemetry"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 10.0
	defaultBurst   = 5

	// maxResponseBytes caps the body read from one response
	maxResponseBytes = 4 << 20
)

// TokenSource supplies the bearer token for authenticated requests
type TokenSource interface {
	Token() (string, bool)
}

// Options configures a Client
type Options struct {
	Name          string // Label used in logs, metrics and spans
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Tokens        TokenSource // Optional; requests are anonymous without it
	Metrics       *telemetry.Metrics
	Tracer        trace.Tracer
	HTTPClient    *http.Client
}

// Client issues JSON requests against one base URL
type Client struct {
	name    string
	baseURL string
	tokens  TokenSource
	http    *http.Client
	limiter *rate.Limiter
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	logger  *logrus.Logger
}

// NewClient creates a gateway client
func NewClient(opts Options, logger *logrus.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(telemetry.TracerName)
	}

	return &Client{
		name:    opts.Name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		tokens:  opts.Tokens,
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
		logger:  logger,
	}
}

// Do performs a request and returns the body of a 2xx response. body, when
// non-nil, is sent as JSON. Failures are *Error values wrapping one of the
// package sentinels.
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, body interface{}) ([]byte, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, c.name+"."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	data, status, err := c.do(ctx, op, method, path, query, body)

	outcome := outcomeOf(err)
	c.metrics.ObserveRequest(c.name, op, outcome, time.Since(start))

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.Int("http.status_code", status),
		attribute.String("unig.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	return data, err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body interface{}) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, wrapError(c.name, op, 0, "", fmt.Errorf("%w: rate limit wait: %v", ErrTransport, err))
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"gateway":    c.name,
		"method":     method,
		"url":        fullURL,
		"request_id": requestID,
	}).Debug("Making API request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, wrapError(c.name, op, 0, "", fmt.Errorf("%w: %v", ErrTransport, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, resp.StatusCode, wrapError(c.name, op, resp.StatusCode, "", fmt.Errorf("%w: read response: %v", ErrTransport, err))
	}
	if len(data) > maxResponseBytes {
		return nil, resp.StatusCode, wrapError(c.name, op, resp.StatusCode, "", fmt.Errorf("%w: response exceeds %d bytes", ErrDecode, maxResponseBytes))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, wrapError(c.name, op, resp.StatusCode, strings.TrimSpace(string(data)), ErrNotFound)
	default:
		return nil, resp.StatusCode, wrapError(c.name, op, resp.StatusCode, strings.TrimSpace(string(data)), ErrStatus)
	}
}

// Decode unmarshals a response body, reporting malformed payloads as ErrDecode
func (c *Client) Decode(op string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return wrapError(c.name, op, 0, "", fmt.Errorf("%w: %v", ErrDecode, err))
	}
	return nil
}

// DecodeError reports a payload that parsed but has an unexpected shape
func (c *Client) DecodeError(op, reason string) error {
	return wrapError(c.name, op, 0, "", fmt.Errorf("%w: %s", ErrDecode, reason))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
