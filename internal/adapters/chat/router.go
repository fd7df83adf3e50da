package chat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

// HandlerFunc serves one command. A zero Reply sends nothing.
type HandlerFunc func(ctx context.Context, req *Request) (domain.Reply, error)

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that the first element is outermost.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}

	return h
}

// RouterConfig configures a Router.
type RouterConfig struct {
	Transport ports.ChatTransport

	// ErrorHandler receives every handler and reply failure.
	// Defaults to NewErrorHandler(Transport, Logger).
	ErrorHandler ErrorHandler

	Logger *slog.Logger
}

type route struct {
	handler    HandlerFunc
	middleware []Middleware
}

// Router dispatches messages to registered command handlers through the
// global middleware chain and any per-route middleware.
type Router struct {
	transport    ports.ChatTransport
	errorHandler ErrorHandler
	logger       *slog.Logger

	mu         sync.RWMutex
	botName    string
	routes     map[string]route
	middleware []Middleware
}

// NewRouter panics if Transport is nil.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Transport == nil {
		panic("chat: Router requires a transport")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "chat.Router"))

	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = NewErrorHandler(cfg.Transport, logger)
	}

	return &Router{
		transport:    cfg.Transport,
		errorHandler: errorHandler,
		logger:       logger,
		routes:       make(map[string]route),
	}
}

// Use appends global middleware. The first registered is outermost.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middleware = append(r.middleware, mw...)
}

// Handle registers a command. Route middleware runs inside the global chain.
func (r *Router) Handle(name string, h HandlerFunc, mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[name] = route{handler: h, middleware: mw}
}

// SetBotName restricts "/cmd@name" addressing to this bot.
func (r *Router) SetBotName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.botName = name
}

// Commands returns the registered command names, sorted.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Dispatch serves one message. Non-command text and unknown commands are
// ignored. Failures go to the error handler; Dispatch never returns them.
func (r *Router) Dispatch(ctx context.Context, msg domain.ChatMessage) {
	r.mu.RLock()
	botName := r.botName
	rt, cmd, ok := r.lookup(msg.Text, botName)
	global := r.middleware
	r.mu.RUnlock()

	ctx = logging.WithContext(ctx, logging.FromContextOr(ctx, r.logger))
	ctx = logging.WithUpdate(ctx, msg.UpdateID, msg.ChatID)
	logger := logging.FromContext(ctx)

	if !ok {
		logger.DebugContext(ctx, "ignoring message", slog.String("command", cmd.Name))
		return
	}

	req := &Request{Message: msg, Command: cmd}
	handler := Chain(r.replying(Chain(rt.handler, rt.middleware...)), global...)

	if _, err := handler(ctx, req); err != nil {
		r.errorHandler(ctx, req, err)
	}
}

// replying sends the handler's reply inside the chain so middleware sees
// delivery failures and the send carries the enriched context.
func (r *Router) replying(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req *Request) (domain.Reply, error) {
		reply, err := next(ctx, req)
		if err != nil || reply.Text == "" {
			return reply, err
		}

		if err := r.transport.SendReply(ctx, req.Message.ChatID, reply); err != nil {
			return reply, fmt.Errorf("sending reply: %w", err)
		}

		return reply, nil
	}
}

// lookup must be called with mu held.
func (r *Router) lookup(text, botName string) (route, Command, bool) {
	cmd, ok := ParseCommand(text, botName)
	if !ok {
		return route{}, cmd, false
	}

	rt, ok := r.routes[cmd.Name]

	return rt, cmd, ok
}
