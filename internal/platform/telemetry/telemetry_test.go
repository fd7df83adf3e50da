package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordSpans installs an in-memory tracer provider for the duration of t.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	rec := tracetest.NewSpanRecorder()

	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	return rec
}

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestCommandSpan(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "quote", 42)
	EndCommandSpan(span, nil)

	_, failed := StartCommandSpan(context.Background(), "addquote", 7)
	EndCommandSpan(failed, errors.New("state persistence failed"))

	ended := rec.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, "command quote", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("bot.command", "quote"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("bot.chat_id", 42))
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	assert.Equal(t, "command addquote", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "state persistence failed", ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1)
	assert.Equal(t, "exception", ended[1].Events()[0].Name)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := recordSpans(t)

	r := gin.New()
	r.Use(Middleware("quotebot")...)
	r.GET("/api/v1/authors", func(c *gin.Context) { c.String(http.StatusOK, "- Anon") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/authors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "- Anon", w.Body.String())

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, ended[0].SpanContext().TraceID().String(), w.Header().Get(HeaderTraceID))
}

func TestMiddleware_NoopProviderOmitsTraceHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	otel.SetTracerProvider(noop.NewTracerProvider())

	r := gin.New()
	r.Use(Middleware("quotebot")...)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get(HeaderTraceID))
}
