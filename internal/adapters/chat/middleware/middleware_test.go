package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

func request(command string, senderID int64) *chat.Request {
	return &chat.Request{
		Message: domain.ChatMessage{UpdateID: 1, ChatID: 9, SenderID: senderID},
		Command: chat.Command{Name: command},
	}
}

func ok(reply string) chat.HandlerFunc {
	return func(context.Context, *chat.Request) (domain.Reply, error) {
		return domain.PlainReply(reply), nil
	}
}

func bufferedContext(level slog.Level) (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	return logging.WithContext(context.Background(), logger), &buf
}

// --- OwnerOnly ---

func TestOwnerOnly(t *testing.T) {
	tests := []struct {
		name     string
		ownerID  int64
		callerID int64
		want     string
		invoked  bool
	}{
		{"owner not configured", 0, 42, OwnerNotConfiguredText, false},
		{"owner not configured, unknown caller", 0, 0, OwnerNotConfiguredText, false},
		{"owner", 42, 42, "added", true},
		{"someone else", 42, 7, NotAuthorizedText, false},
		{"unknown caller", 42, 0, NotAuthorizedText, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoked := false
			h := OwnerOnly(tt.ownerID)(func(context.Context, *chat.Request) (domain.Reply, error) {
				invoked = true
				return domain.PlainReply("added"), nil
			})

			reply, err := h(context.Background(), request("addquote", tt.callerID))

			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, tt.invoked, invoked)
		})
	}
}

func TestOwnerOnly_LogsDenialWithCaller(t *testing.T) {
	ctx, buf := bufferedContext(slog.LevelInfo)

	_, err := OwnerOnly(42)(ok("added"))(ctx, request("addquote", 7))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"caller_id":7`)
}

func TestOwnerOnly_EvaluatedPerCall(t *testing.T) {
	h := OwnerOnly(42)(ok("added"))

	denied, _ := h(context.Background(), request("addquote", 1))
	allowed, _ := h(context.Background(), request("addquote", 42))
	deniedAgain, _ := h(context.Background(), request("addquote", 1))

	assert.Equal(t, NotAuthorizedText, denied.Text)
	assert.Equal(t, "added", allowed.Text)
	assert.Equal(t, NotAuthorizedText, deniedAgain.Text)
}

// --- Recovery ---

func TestRecovery_ConvertsPanic(t *testing.T) {
	ctx, buf := bufferedContext(slog.LevelInfo)

	h := Recovery()(func(context.Context, *chat.Request) (domain.Reply, error) {
		panic("nil map write")
	})

	reply, err := h(ctx, request("quote", 1))

	var panicErr *chat.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "nil map write", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Empty(t, reply.Text)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecovery_PassesThrough(t *testing.T) {
	reply, err := Recovery()(ok("fine"))(context.Background(), request("quote", 1))

	require.NoError(t, err)
	assert.Equal(t, "fine", reply.Text)
}

// --- CorrelationID ---

func TestCorrelationID(t *testing.T) {
	ctx, buf := bufferedContext(slog.LevelInfo)
	req := request("help", 1)

	var seenCtx context.Context
	h := CorrelationID()(func(ctx context.Context, _ *chat.Request) (domain.Reply, error) {
		seenCtx = ctx
		logging.FromContext(ctx).InfoContext(ctx, "inside")
		return domain.Reply{}, nil
	})

	_, err := h(ctx, req)
	require.NoError(t, err)

	assert.Len(t, req.CorrelationID, 36)
	assert.Equal(t, req.CorrelationID, logging.CorrelationIDFromContext(seenCtx))
	assert.Contains(t, buf.String(), `"correlation_id":"`+req.CorrelationID+`"`)
	assert.Contains(t, buf.String(), `"command":"help"`)
}

func TestCorrelationID_UniquePerCommand(t *testing.T) {
	h := CorrelationID()(ok(""))
	first, second := request("quote", 1), request("quote", 1)

	_, _ = h(context.Background(), first)
	_, _ = h(context.Background(), second)

	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
}

// --- Logging ---

func TestLogging(t *testing.T) {
	t.Run("success at info", func(t *testing.T) {
		ctx, buf := bufferedContext(slog.LevelDebug)

		_, err := Logging()(ok("hi"))(ctx, request("start", 1))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "command started")
		assert.Contains(t, buf.String(), `"msg":"command completed"`)
		assert.Contains(t, buf.String(), `"reply_format":"plain"`)
	})

	t.Run("failure at warn", func(t *testing.T) {
		ctx, buf := bufferedContext(slog.LevelInfo)
		boom := errors.New("boom")

		_, err := Logging()(func(context.Context, *chat.Request) (domain.Reply, error) {
			return domain.Reply{}, boom
		})(ctx, request("quote", 1))

		assert.ErrorIs(t, err, boom)
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.NotContains(t, buf.String(), `"level":"ERROR"`)
		assert.Contains(t, buf.String(), "command completed with error")
	})
}

// --- Tracing ---

func TestTracing_PassesResultThrough(t *testing.T) {
	boom := errors.New("boom")

	reply, err := Tracing()(ok("traced"))(context.Background(), request("quote", 1))
	require.NoError(t, err)
	assert.Equal(t, "traced", reply.Text)

	_, err = Tracing()(func(context.Context, *chat.Request) (domain.Reply, error) {
		return domain.Reply{}, boom
	})(context.Background(), request("quote", 1))
	assert.ErrorIs(t, err, boom)
}

// --- Metrics ---

func counterValue(t *testing.T, reg *prometheus.Registry, command, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "quotebot_commands_total" {
			continue
		}

		for _, m := range mf.GetMetric() {
			if hasLabels(m, map[string]string{"command": command, "outcome": outcome}) {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	matched := 0

	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}

	return matched == len(want)
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	mw := metrics.Middleware()

	_, _ = mw(ok("x"))(context.Background(), request("quote", 1))
	_, _ = mw(ok("x"))(context.Background(), request("quote", 1))
	_, _ = mw(func(context.Context, *chat.Request) (domain.Reply, error) {
		return domain.Reply{}, errors.New("boom")
	})(context.Background(), request("addquote", 1))
	_, _ = mw(func(context.Context, *chat.Request) (domain.Reply, error) {
		return domain.Reply{}, &chat.PanicError{Value: "x"}
	})(context.Background(), request("listauthors", 1))

	assert.InDelta(t, 2, counterValue(t, reg, "quote", OutcomeOK), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "addquote", OutcomeError), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "listauthors", OutcomePanic), 0)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "quotebot_command_duration_seconds")
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
