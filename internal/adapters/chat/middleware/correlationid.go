package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// CorrelationID assigns a fresh UUID v4 to each command. The id is stored on
// the request, in the context for outbound calls, and on the context logger.
func CorrelationID() chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (domain.Reply, error) {
			id := uuid.New().String()
			req.CorrelationID = id

			ctx = logging.WithCorrelationID(ctx, id)
			ctx = logging.WithCommand(ctx, req.Command.Name)

			return next(ctx, req)
		}
	}
}
