package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

// ApologyText is sent when a command fails unexpectedly.
const ApologyText = "An error occurred. Try again later."

// ErrorHandler is the last stop for command failures.
type ErrorHandler func(ctx context.Context, req *Request, err error)

// PanicError carries a recovered panic as an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// NewErrorHandler logs the failure and attempts a single apology reply.
// A failed apology is logged and dropped.
func NewErrorHandler(transport ports.ChatTransport, logger *slog.Logger) ErrorHandler {
	return func(ctx context.Context, req *Request, err error) {
		if req.CorrelationID != "" && logging.CorrelationIDFromContext(ctx) == "" {
			ctx = logging.WithCorrelationID(ctx, req.CorrelationID)
		}

		attrs := []any{slog.String("command", req.Command.Name), slog.Any("error", err)}
		if step, ok := app.GetExecutionStep(err); ok {
			attrs = append(attrs, slog.String("step", string(step)))
		}

		log := logging.FromContextOr(ctx, logger)
		log.ErrorContext(ctx, "command failed", attrs...)

		if req.Message.ChatID == 0 {
			return
		}

		if replyErr := transport.SendReply(ctx, req.Message.ChatID, domain.PlainReply(ApologyText)); replyErr != nil {
			log.WarnContext(ctx, "failed to send error reply", slog.Any("error", replyErr))
		}
	}
}
