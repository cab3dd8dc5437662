// Package apiclient talks to the storefront backend over its REST surface.
package apiclient

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

	"github.com/cenkalti/backoff/v5"
	"github.com/tyemirov/storefront/internal/telemetry"
	"go.uber.org/zap"
)

// DefaultBaseURL is the backend origin used when none is configured.
const DefaultBaseURL = "http://localhost:5000"

// DefaultTimeout bounds each backend call.
const DefaultTimeout = 30 * time.Second

const maxErrorBodyBytes = 1 << 20

// TokenSource yields the bearer token for an outgoing request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token calls fn.
func (fn TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return fn(ctx)
}

// Config describes the backend connection.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the base backend client shared by the domain clients.
type Client struct {
	baseURL    string
	timeout    time.Duration
	base       http.RoundTripper
	httpClient *http.Client
	logger     *zap.Logger
	metrics    telemetry.MetricsRecorder
	newBackOff func() backoff.BackOff
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger for request failures.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		if logger != nil {
			client.logger = logger
		}
	}
}

// WithMetrics sets the recorder for request outcomes.
func WithMetrics(recorder telemetry.MetricsRecorder) Option {
	return func(client *Client) {
		if recorder != nil {
			client.metrics = recorder
		}
	}
}

// WithBackOff overrides the delay policy between retried attempts.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(client *Client) {
		if factory != nil {
			client.newBackOff = factory
		}
	}
}

// WithTransport sets the round tripper that carries requests after the
// bearer header has been attached.
func WithTransport(transport http.RoundTripper) Option {
	return func(client *Client) {
		if transport != nil {
			client.base = transport
		}
	}
}

// New constructs a Client. Every request reads its bearer token from tokens.
func New(configuration Config, tokens TokenSource, options ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := configuration.Timeout
	if timeout < 0 {
		timeout = 0
	}
	client := &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		base:       http.DefaultTransport,
		logger:     zap.NewNop(),
		metrics:    telemetry.NopMetrics(),
		newBackOff: defaultBackOff,
	}
	for _, option := range options {
		option(client)
	}
	client.httpClient = client.buildHTTPClient(tokens)
	return client
}

// WithTokens returns a copy of client that reads bearer tokens from tokens.
// The copy shares the underlying transport and connection pool.
func (client *Client) WithTokens(tokens TokenSource) *Client {
	clone := *client
	clone.httpClient = client.buildHTTPClient(tokens)
	return &clone
}

// BaseURL returns the backend origin without a trailing slash.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// Products returns the products domain client.
func (client *Client) Products() *Products {
	return &Products{client: client}
}

// Orders returns the orders domain client.
func (client *Client) Orders() *Orders {
	return &Orders{client: client}
}

// Contact returns the contact domain client.
func (client *Client) Contact() *Contact {
	return &Contact{client: client}
}

// Auth returns the auth domain client.
func (client *Client) Auth() *Auth {
	return &Auth{client: client}
}

// Banners returns the banners domain client.
func (client *Client) Banners() *Banners {
	return &Banners{client: client}
}

func (client *Client) buildHTTPClient(tokens TokenSource) *http.Client {
	return &http.Client{
		Timeout:   client.timeout,
		Transport: &bearerTransport{base: client.base, tokens: tokens, origin: originOf(client.baseURL)},
	}
}

func defaultBackOff() backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = time.Second
	exponential.MaxInterval = 30 * time.Second
	return exponential
}

// Acknowledgement is the plain {message} reply some endpoints return.
type Acknowledgement struct {
	Message string `json:"message"`
}

func (client *Client) do(ctx context.Context, method string, path string, query url.Values, body any, target any) error {
	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var requestBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient.encode: %w", err)
		}
		requestBody = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, requestBody)
	if err != nil {
		return fmt.Errorf("apiclient.request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.metrics.Increment(telemetry.EventAPIRequestFailure)
		client.logger.Warn("backend request failed",
			zap.String("code", "apiclient.transport"),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("apiclient.transport: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		apiErr := newAPIError(response.StatusCode, payload)
		client.metrics.Increment(telemetry.EventAPIRequestFailure)
		client.logger.Info("backend rejected request",
			zap.String("code", "apiclient.status"),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", response.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	client.metrics.Increment(telemetry.EventAPIRequestSuccess)
	if target == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("apiclient.decode: %w", err)
	}
	return nil
}
