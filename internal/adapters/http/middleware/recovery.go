package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebot/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Recovery returns middleware that seeds the request context with logger and
// turns panics into a 500 INTERNAL_ERROR envelope.
//
// It must be first in the chain so every later middleware logs through the
// seeded logger and has its panics caught.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			ctx := logging.WithContext(c.Request.Context(), logger.With(slog.String("component", "http")))
			c.Request = c.Request.WithContext(ctx)
		}

		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logging.FromContext(c.Request.Context()).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", dto.GetTraceID(c)),
			)

			dto.Abort(c, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
