package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Logging logs each command at debug on start and info on completion, or
// warn when it fails; the error log belongs to the chat error handler.
// Message text is not logged; it may carry quotes the owner has not
// published yet.
func Logging() chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (domain.Reply, error) {
			start := time.Now()
			logger := logging.FromContext(ctx)

			logger.DebugContext(ctx, "command started",
				slog.Int64("sender_id", req.CallerID()),
				slog.String("sender", req.Message.SenderName),
				slog.Int("args", len(req.Command.Args)),
			)

			reply, err := next(ctx, req)

			attrs := []any{
				slog.Duration("latency", time.Since(start)),
				slog.String("reply_format", reply.Format.String()),
			}

			if err != nil {
				logger.WarnContext(ctx, "command completed with error", append(attrs, slog.Any("error", err))...)
			} else {
				logger.InfoContext(ctx, "command completed", attrs...)
			}

			return reply, err
		}
	}
}
