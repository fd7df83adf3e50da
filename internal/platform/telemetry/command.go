package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan opens the span for one bot command. Bot API calls made
// with the returned context nest under it.
func StartCommandSpan(ctx context.Context, command string, chatID int64) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "command "+command,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("bot.command", command),
			attribute.Int64("bot.chat_id", chatID),
		),
	)
}

// EndCommandSpan records err, if any, and ends span.
func EndCommandSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
