package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/quotebot/telemetry"

// HeaderTraceID echoes the server span's trace ID so an API caller can quote it.
const HeaderTraceID = "X-Trace-ID"

type httpInstruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Ops API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Ops API requests served"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{duration: duration, total: total}, nil
}

func (in *httpInstruments) observe(c *gin.Context) {
	start := time.Now()

	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		c.Header(HeaderTraceID, sc.TraceID().String())
	}

	c.Next()

	if in == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", c.FullPath()),
		attribute.Int("http.status_code", c.Writer.Status()),
	)
	in.duration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	in.total.Add(c.Request.Context(), 1, attrs)
}

// Middleware returns the ops API instrumentation: an otelgin server span
// followed by request metrics on the global meter provider. Instrument
// errors are reported to otel.Handle and leave the chain span-only.
func Middleware(serviceName string) []gin.HandlerFunc {
	in, err := newHTTPInstruments(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return []gin.HandlerFunc{otelgin.Middleware(serviceName), in.observe}
}
