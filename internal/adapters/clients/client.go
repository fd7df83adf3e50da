package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebot/internal/platform/config"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotebot/internal/adapters/clients"

	// HeaderRequestID carries the request ID to the downstream service.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID carries the correlation ID to the downstream service.
	HeaderCorrelationID = "X-Correlation-ID"

	defaultTimeout          = 30 * time.Second
	defaultIdleConnTimeout  = 90 * time.Second
	redactedBase            = "<base-url>"
	outcomeCircuitOpen      = "circuit_open"
	outcomeCanceled         = "context_canceled"
	outcomeTransportFailure = "error"
)

// Config configures a Client.
type Config struct {
	// BaseURL prefixes every request path. It may embed a credential, as the
	// Bot API does with its token, so it never appears in logs, spans or errors.
	BaseURL string

	// ServiceName labels logs, spans and metrics.
	ServiceName string

	// Timeout bounds one attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, when set, stamps credentials on every attempt.
	AuthFunc func(*http.Request)

	Logger *slog.Logger

	// MeterProvider defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// Client is an HTTP client for one downstream service. Each call goes
// through a circuit breaker, is retried with jittered exponential backoff on
// transport failures and 5xx answers unless it passes WithoutRetry, and is
// traced and counted.
type Client struct {
	http        *http.Client
	baseURL     string
	basePath    string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker
	tracer      trace.Tracer
	inst        instruments
}

type instruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New validates cfg, fills its defaults in place and returns a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cfg.Retry.MaxAttempts = max(cfg.Retry.MaxAttempts, 1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "clients.Client"))

	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	inst, err := newInstruments(meter)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	var basePath string
	if u, err := url.Parse(baseURL); err == nil {
		basePath = u.Path
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("downstream", cfg.ServiceName),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	client := &Client{
		http:        &http.Client{Timeout: cfg.Timeout, Transport: newTransport(cfg.Transport)},
		baseURL:     baseURL,
		basePath:    basePath,
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          cb,
		tracer:      otel.Tracer(instrumentationName),
		inst:        inst,
	}

	if err := client.observeCircuit(meter); err != nil {
		return nil, err
	}

	return client, nil
}

func newInstruments(meter metric.Meter) (instruments, error) {
	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of downstream calls including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Downstream calls by outcome"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating request counter: %w", err)
	}

	return instruments{duration: duration, total: total}, nil
}

// observeCircuit exports the breaker position and its consecutive failure
// count as gauges, read at collection time.
func (c *Client) observeCircuit(meter metric.Meter) error {
	state, err := meter.Int64ObservableGauge("http.client.circuit.state",
		metric.WithDescription("Circuit breaker state: 0 closed, 1 open, 2 half-open"),
	)
	if err != nil {
		return fmt.Errorf("creating circuit state gauge: %w", err)
	}

	failures, err := meter.Int64ObservableGauge("http.client.circuit.consecutive_failures",
		metric.WithDescription("Consecutive failures counted by the circuit breaker"),
	)
	if err != nil {
		return fmt.Errorf("creating circuit failures gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		counts := c.cb.Counts()
		attrs := metric.WithAttributes(attribute.String("peer.service", c.serviceName))

		o.ObserveInt64(state, int64(counts.State), attrs)
		o.ObserveInt64(failures, int64(counts.ConsecutiveFailures), attrs)

		return nil
	}, state, failures)
	if err != nil {
		return fmt.Errorf("registering circuit gauges: %w", err)
	}

	return nil
}

// record counts one call. status is 0 when no response was received.
func (c *Client) record(ctx context.Context, method, path string, status int, elapsed time.Duration, outcome string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", outcome),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opt := metric.WithAttributes(attrs...)
	c.inst.duration.Record(ctx, elapsed.Seconds(), opt)
	c.inst.total.Add(ctx, 1, opt)
}

// newTransport clones the default transport with the configured pool sizes.
func newTransport(tc config.TransportConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = orDefault(tc.MaxIdleConns, config.DefaultTransportMaxIdleConns)
	transport.MaxIdleConnsPerHost = orDefault(tc.MaxIdleConnsPerHost, config.DefaultTransportMaxIdleConnsPerHost)
	transport.IdleConnTimeout = orDefault(tc.IdleConnTimeout, defaultIdleConnTimeout)

	return transport
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}

	return v
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	maxAttempts int
}

// WithoutRetry sends the request exactly once. Calls that are not idempotent,
// such as posting a chat message, must use it.
func WithoutRetry() RequestOption {
	return func(o *requestOptions) { o.maxAttempts = 1 }
}

func (c *Client) callOptions(opts []RequestOption) requestOptions {
	o := requestOptions{maxAttempts: c.cfg.Retry.MaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Get issues a GET for path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, c.scrubError(fmt.Errorf("creating request: %w", err))
	}

	return c.Do(ctx, req, opts...)
}

// Post issues a JSON POST. The body is read up front so retries can replay it.
func (c *Client) Post(ctx context.Context, path string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	var payload []byte

	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(payload))
	if err != nil {
		return nil, c.scrubError(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req, opts...)
}

// CircuitState reports the breaker position.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}
