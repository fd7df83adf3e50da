package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type idKey string

const (
	requestIDKey     idKey = "request_id"
	correlationIDKey idKey = "correlation_id"
)

var defaultLogger = slog.Default()

// FromContext extracts the logger from context.
// Returns the default logger if no logger is found or ctx is nil.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, defaultLogger)
}

// FromContextOr returns the logger stored in ctx, or fallback when there is none.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	return fallback
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithRequestID records the request ID in ctx and adds it to the context logger.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	logger := FromContext(ctx).With(slog.String("request_id", requestID))

	return WithContext(ctx, logger)
}

// WithCorrelationID records the correlation ID in ctx and adds it to the context logger.
// Outbound clients forward it so one chat update can be followed across calls.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey, correlationID)
	logger := FromContext(ctx).With(slog.String("correlation_id", correlationID))

	return WithContext(ctx, logger)
}

// RequestIDFromContext returns the request ID stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation ID stored by WithCorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, correlationIDKey)
}

func idFromContext(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}

// WithUpdate adds the inbound chat update identifiers to the logger in context.
func WithUpdate(ctx context.Context, updateID, chatID int64) context.Context {
	logger := FromContext(ctx).With(
		slog.Int64("update_id", updateID),
		slog.Int64("chat_id", chatID),
	)

	return WithContext(ctx, logger)
}

// WithCommand adds the bot command being served to the logger in context.
func WithCommand(ctx context.Context, command string) context.Context {
	logger := FromContext(ctx).With(slog.String("command", command))

	return WithContext(ctx, logger)
}

// SetDefault sets the default logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
