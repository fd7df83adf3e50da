package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebot/internal/platform/config"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Do sends req through the breaker and the retry loop. WithoutRetry limits
// it to a single attempt.
//
// A request with a body is retried only if req.GetBody is set, which
// http.NewRequest does for in-memory readers. Transport errors are returned
// wrapped in ErrMaxRetriesExceeded, except for the caller's own cancellation.
func (c *Client) Do(ctx context.Context, req *http.Request, opts ...RequestOption) (*http.Response, error) {
	started := time.Now()
	path := c.relativePath(req.URL)
	o := c.callOptions(opts)

	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", path),
	)

	if !c.cb.Allow() {
		c.record(ctx, req.Method, path, 0, time.Since(started), outcomeCircuitOpen)
		logger.WarnContext(ctx, "request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", path),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.stamp(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.attempts(ctx, req, o.maxAttempts, logger)
	elapsed := time.Since(started)

	if errors.Is(err, context.Canceled) {
		span.SetStatus(codes.Error, "canceled")
		c.record(ctx, req.Method, path, 0, elapsed, outcomeCanceled)

		return nil, err
	}

	if err != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, path, 0, elapsed, outcomeTransportFailure)
		logger.WarnContext(ctx, "request failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	c.cb.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.record(ctx, req.Method, path, resp.StatusCode, elapsed, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.DebugContext(ctx, "request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", elapsed))

	return resp, nil
}

// attempts runs up to limit tries. It returns the first response below 500,
// the first non-retryable error, or the last failure.
func (c *Client) attempts(ctx context.Context, req *http.Request, limit int, logger *slog.Logger) (*http.Response, error) {
	var last error

	for attempt := range max(limit, 1) {
		if attempt > 0 {
			if err := c.pause(ctx, attempt, logger); err != nil {
				return nil, err
			}

			if err := rewind(req); err != nil {
				return nil, err
			}

			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			err = c.scrubError(err)
			if !isRetryableError(err) {
				return nil, err
			}

			logger.DebugContext(ctx, "request failed with retryable error",
				slog.Int("attempt", attempt+1), slog.Any("error", err))
			last = err

			continue
		}

		if resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		logger.DebugContext(ctx, "request failed with server error",
			slog.Int("attempt", attempt+1), slog.Int("status", resp.StatusCode))

		if err := resp.Body.Close(); err != nil {
			logger.DebugContext(ctx, "failed to close response body", slog.Any("error", err))
		}

		last = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return nil, last
}

// pause sleeps for the attempt's backoff or until ctx ends.
func (c *Client) pause(ctx context.Context, attempt int, logger *slog.Logger) error {
	wait := c.calculateBackoff(attempt)
	logger.DebugContext(ctx, "retrying request", slog.Int("attempt", attempt+1), slog.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	if req.GetBody == nil {
		return errors.New("request body cannot be replayed for retry")
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}

// stamp sets identity headers from ctx and runs AuthFunc for the first attempt.
func (c *Client) stamp(ctx context.Context, req *http.Request) {
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(HeaderCorrelationID, id)
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

// calculateBackoff is InitialInterval * Multiplier^attempt, capped at
// MaxInterval, then spread by ±JitterFactor.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	r := c.cfg.Retry

	wait := min(float64(r.InitialInterval)*math.Pow(r.Multiplier, float64(attempt)), float64(r.MaxInterval))

	jitter := r.JitterFactor
	if jitter <= 0 {
		jitter = config.DefaultClientRetryJitterFactor
	}

	spread := rand.Float64()*2 - 1 //nolint:gosec // jitter does not need a CSPRNG

	return time.Duration(wait + wait*jitter*spread)
}

// isRetryableError accepts network timeouts and connection-level failures.
// The caller's own cancellation or deadline is never retried.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
