// Package middleware provides the chat command middleware chain.
package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Recovery converts a handler panic into a *chat.PanicError so it reaches
// the error handler like any other failure. It should sit innermost in the
// global chain so logging and metrics observe the failure.
func Recovery() chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (reply domain.Reply, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()

					logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
						slog.Any("error", r),
						slog.String("stack", string(stack)),
						slog.String("command", req.Command.Name),
					)

					reply, err = domain.Reply{}, &chat.PanicError{Value: r, Stack: stack}
				}
			}()

			return next(ctx, req)
		}
	}
}
