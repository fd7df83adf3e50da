package middleware

import (
	"context"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/telemetry"
)

// Tracing opens a span per command. Outbound Bot API calls made while
// serving the command become its children.
func Tracing() chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (reply domain.Reply, err error) {
			ctx, span := telemetry.StartCommandSpan(ctx, req.Command.Name, req.Message.ChatID)
			defer func() { telemetry.EndCommandSpan(span, err) }()

			return next(ctx, req)
		}
	}
}
