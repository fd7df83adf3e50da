package acl

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jsamuelsen/quotebot/internal/adapters/clients"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// TelegramServiceName names the Bot API in errors, logs and health checks.
const TelegramServiceName = "telegram"

// parseModeMarkdown is the Bot API's legacy Markdown dialect.
const parseModeMarkdown = "Markdown"

// TelegramClientConfig configures a TelegramClient.
type TelegramClientConfig struct {
	// Client must have BaseURL set to "{api_url}/bot{token}".
	Client *clients.Client

	Logger *slog.Logger
}

// TelegramClient implements ports.ChatTransport over the Bot API.
type TelegramClient struct {
	BaseAdapter
	logger *slog.Logger

	mu       sync.Mutex
	identity string
}

// NewTelegramClient panics if Client is nil.
func NewTelegramClient(cfg TelegramClientConfig) *TelegramClient {
	if cfg.Client == nil {
		panic("TelegramClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TelegramClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, TelegramServiceName),
		logger:      logger.With(slog.String("component", "acl.TelegramClient")),
	}
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type tgUpdate struct {
	UpdateID int64      `json:"update_id"`
	Message  *tgMessage `json:"message,omitempty"`
}

type tgMessage struct {
	MessageID int64   `json:"message_id"`
	From      *tgUser `json:"from,omitempty"`
	Chat      tgChat  `json:"chat"`
	Date      int64   `json:"date"`
	Text      string  `json:"text,omitempty"`
}

type tgUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

type tgChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// FetchMessages long-polls getUpdates. Every update is returned, including
// ones without text, so the caller can advance its offset past them.
// Implements ports.ChatTransport.
func (c *TelegramClient) FetchMessages(ctx context.Context, offset int64, timeout time.Duration) ([]domain.ChatMessage, error) {
	logger := logging.FromContextOr(ctx, c.logger)
	logging.Trace(ctx, logger, "polling updates",
		slog.Int64("offset", offset),
		slog.Duration("timeout", timeout),
	)

	updates, err := Call[[]tgUpdate](ctx, &c.BaseAdapter, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(math.Ceil(timeout.Seconds())),
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, err
	}

	messages, err := TranslateSlice(updates, translateUpdate)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	logging.Trace(ctx, logger, "translated updates", slog.Int("count", len(messages)))

	return messages, nil
}

// SendReply calls sendMessage once. A retry after a timeout could deliver
// the same reply twice, so failures go straight back to the caller.
// Markdown replies set parse_mode. Implements ports.ChatTransport.
func (c *TelegramClient) SendReply(ctx context.Context, chatID int64, reply domain.Reply) error {
	req := sendMessageRequest{ChatID: chatID, Text: reply.Text}
	if reply.Format == domain.FormatMarkdown {
		req.ParseMode = parseModeMarkdown
	}

	logging.Trace(ctx, logging.FromContextOr(ctx, c.logger), "sending reply",
		slog.Int64("chat_id", chatID),
		slog.String("format", reply.Format.String()),
	)

	_, err := Call[tgMessage](ctx, &c.BaseAdapter, "sendMessage", req, clients.WithoutRetry())

	return err
}

// Identity returns the bot username from getMe and caches it.
func (c *TelegramClient) Identity(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.identity
	c.mu.Unlock()

	if cached != "" {
		return cached, nil
	}

	me, err := Call[tgUser](ctx, &c.BaseAdapter, "getMe", nil)
	if err != nil {
		return "", err
	}

	if me.Username == "" {
		return "", domain.NewUnavailableError(c.ServiceName(), "getMe returned no username")
	}

	c.mu.Lock()
	c.identity = me.Username
	c.mu.Unlock()

	return me.Username, nil
}

// Name implements ports.HealthChecker.
func (c *TelegramClient) Name() string {
	return TelegramServiceName
}

// Check calls getMe uncached. Implements ports.HealthChecker.
func (c *TelegramClient) Check(ctx context.Context) error {
	_, err := Call[tgUser](ctx, &c.BaseAdapter, "getMe", nil)

	return err
}

func translateUpdate(u *tgUpdate) (domain.ChatMessage, error) {
	if err := ValidatePositive(u.UpdateID, "update_id"); err != nil {
		return domain.ChatMessage{}, err
	}

	msg := domain.ChatMessage{UpdateID: u.UpdateID}
	if u.Message == nil {
		return msg, nil
	}

	msg.ChatID = u.Message.Chat.ID
	msg.Text = u.Message.Text

	if u.Message.From != nil {
		msg.SenderID = u.Message.From.ID
		msg.SenderName = u.Message.From.Username
	}

	return msg, nil
}
