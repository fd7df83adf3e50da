package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
)

// Command outcomes recorded by Metrics.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// Metrics holds the command counters and latency histogram.
type Metrics struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the command metrics with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotebot",
			Name:      "commands_total",
			Help:      "Bot commands served, by command and outcome.",
		}, []string{"command", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quotebot",
			Name:      "command_duration_seconds",
			Help:      "Time to serve a bot command including the reply.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	for _, c := range []prometheus.Collector{m.commands, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Middleware records one observation per command.
func (m *Metrics) Middleware() chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (domain.Reply, error) {
			start := time.Now()

			reply, err := next(ctx, req)

			m.duration.WithLabelValues(req.Command.Name).Observe(time.Since(start).Seconds())
			m.commands.WithLabelValues(req.Command.Name, outcome(err)).Inc()

			return reply, err
		}
	}
}

func outcome(err error) string {
	var panicErr *chat.PanicError

	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &panicErr):
		return OutcomePanic
	default:
		return OutcomeError
	}
}
