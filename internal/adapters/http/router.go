package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebot/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebot/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebot/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 10 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the otelgin server spans.
	ServiceName string

	// HealthHandler serves /-/ routes. Nil leaves them unregistered.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves /api/v1 routes. Nil leaves them unregistered.
	QuoteHandler *handlers.QuoteHandler

	// Timeout bounds /api/v1 requests. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware runs in this order:
//  1. Recovery, which also seeds the context logger
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing and metrics
//  5. Logging (skips /-/ endpoints)
//  6. Timeout, on /api/v1 only
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.QuoteHandler == nil {
		return
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
}
