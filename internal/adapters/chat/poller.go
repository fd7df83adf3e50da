package chat

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

// Dispatcher serves one inbound message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.ChatMessage)
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	Transport  ports.ChatTransport
	Dispatcher Dispatcher

	// Timeout is the long-poll wait passed to the transport.
	Timeout time.Duration

	// Backoff is the pause after a failed fetch.
	Backoff time.Duration

	Logger *slog.Logger
}

// Poller long-polls the transport and dispatches messages one at a time in
// update order.
type Poller struct {
	transport  ports.ChatTransport
	dispatcher Dispatcher
	timeout    time.Duration
	backoff    time.Duration
	logger     *slog.Logger

	offset atomic.Int64
}

// NewPoller panics if Transport or Dispatcher is nil.
func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Transport == nil || cfg.Dispatcher == nil {
		panic("chat: Poller requires a transport and a dispatcher")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		transport:  cfg.Transport,
		dispatcher: cfg.Dispatcher,
		timeout:    cfg.Timeout,
		backoff:    cfg.Backoff,
		logger:     logger.With(slog.String("component", "chat.Poller")),
	}
}

// Offset returns the next update id the poller will ask for.
func (p *Poller) Offset() int64 {
	return p.offset.Load()
}

// Run polls until ctx is done. It returns nil on cancellation; fetch
// failures are logged and retried after the backoff.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "poller started",
		slog.Duration("timeout", p.timeout),
		slog.Duration("backoff", p.backoff),
	)

	for {
		if ctx.Err() != nil {
			p.logger.InfoContext(ctx, "poller stopped", slog.Int64("offset", p.Offset()))
			return nil
		}

		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}

			p.logger.WarnContext(ctx, "fetching updates failed",
				slog.Any("error", err),
				slog.Duration("retry_in", p.backoff),
			)
			p.sleep(ctx)
		}
	}
}

// poll fetches one batch and dispatches it.
func (p *Poller) poll(ctx context.Context) error {
	msgs, err := p.transport.FetchMessages(ctx, p.Offset(), p.timeout)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if ctx.Err() != nil {
			return nil
		}

		if msg.UpdateID < p.Offset() {
			continue
		}

		p.dispatcher.Dispatch(ctx, msg)
		p.offset.Store(msg.UpdateID + 1)
	}

	return nil
}

func (p *Poller) sleep(ctx context.Context) {
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
