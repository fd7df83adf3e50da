package middleware

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Replies sent instead of running a guarded command.
const (
	OwnerNotConfiguredText = "Owner not configured on the bot. Contact the admin."
	NotAuthorizedText      = "❌ You are not authorized to use this command."
)

// OwnerOnly runs the wrapped handler only for ownerID. An ownerID of zero
// means no owner is configured and every caller is refused. The check runs on
// every invocation.
func OwnerOnly(ownerID int64) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (domain.Reply, error) {
			logger := logging.FromContext(ctx)

			if ownerID == 0 {
				logger.WarnContext(ctx, "owner-only command refused: owner not configured",
					slog.Int64("caller_id", req.CallerID()),
				)

				return domain.PlainReply(OwnerNotConfiguredText), nil
			}

			if req.CallerID() != ownerID {
				logger.WarnContext(ctx, "owner-only command refused",
					slog.Int64("caller_id", req.CallerID()),
				)

				return domain.PlainReply(NotAuthorizedText), nil
			}

			return next(ctx, req)
		}
	}
}
