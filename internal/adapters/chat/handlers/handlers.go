// Package handlers implements the bot commands.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/domain"
)

// Fixed replies.
const (
	WelcomeText = "⚡ Welcome to the Simple Quote Bot!\n\nUse /help to see available commands."

	HelpText = "/quote - get a random quote\n" +
		"/quote <author> - get a random quote by author (case-insensitive, partial match)\n" +
		"/listauthors - list authors available\n" +
		"/addquote \"quote text\" - author  (owner only)\n\n" +
		"Example: /quote Lao Tzu\n" +
		"Example add: /addquote \"Dream big and dare to fail\" - Norman Vaughan"

	NoQuotesText       = "No quotes available yet."
	NoAuthorMatchText  = "No quotes found for author matching: %s"
	NoAuthorsText      = "No authors found in the database."
	AuthorsHeaderText  = "Authors available:\n\n"
	InvalidFormatText  = "Invalid format. Use:\n/addquote \"quote text\" - author"
	QuoteAddedText     = "✅ Quote added successfully."
	quoteTemplate      = "“%s”\n\n— %s"
	markdownEscapables = "_*`["
)

// Handlers serves the bot commands from a QuoteService.
type Handlers struct {
	service *app.QuoteService
}

// New creates the command handlers.
func New(service *app.QuoteService) *Handlers {
	return &Handlers{service: service}
}

// Register adds every command to r. addquote is wrapped in guard.
func (h *Handlers) Register(r *chat.Router, guard chat.Middleware) {
	r.Handle("start", h.Start)
	r.Handle("help", h.Help)
	r.Handle("quote", h.Quote)
	r.Handle("listauthors", h.ListAuthors)
	r.Handle("addquote", h.AddQuote, guard)
}

// Start handles /start.
func (h *Handlers) Start(context.Context, *chat.Request) (domain.Reply, error) {
	return domain.PlainReply(WelcomeText), nil
}

// Help handles /help.
func (h *Handlers) Help(context.Context, *chat.Request) (domain.Reply, error) {
	return domain.PlainReply(HelpText), nil
}

// Quote handles /quote and /quote <author>.
func (h *Handlers) Quote(ctx context.Context, req *chat.Request) (domain.Reply, error) {
	query := strings.Join(req.Command.Args, " ")

	q, err := h.service.RandomQuote(ctx, query)
	switch {
	case errors.Is(err, domain.ErrNoQuotes):
		return domain.PlainReply(NoQuotesText), nil
	case domain.IsNotFound(err):
		return domain.PlainReply(fmt.Sprintf(NoAuthorMatchText, query)), nil
	case err != nil:
		return domain.Reply{}, err
	}

	return FormatQuote(q), nil
}

// ListAuthors handles /listauthors.
func (h *Handlers) ListAuthors(ctx context.Context, _ *chat.Request) (domain.Reply, error) {
	authors := h.service.ListAuthors(ctx)
	if len(authors) == 0 {
		return domain.PlainReply(NoAuthorsText), nil
	}

	var b strings.Builder
	b.WriteString(AuthorsHeaderText)

	for i, a := range authors {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString("- ")
		b.WriteString(a)
	}

	return domain.PlainReply(b.String()), nil
}

// AddQuote handles /addquote "text" - author.
func (h *Handlers) AddQuote(ctx context.Context, req *chat.Request) (domain.Reply, error) {
	_, err := h.service.AddQuote(ctx, req.Command.Payload)

	var parseErr *domain.AddQuoteError
	switch {
	case errors.As(err, &parseErr):
		return domain.PlainReply(InvalidFormatText), nil
	case err != nil:
		return domain.Reply{}, err
	}

	return domain.PlainReply(QuoteAddedText), nil
}

// FormatQuote renders q as Markdown with the text in curly quotes and the
// author in bold.
func FormatQuote(q domain.Quote) domain.Reply {
	return domain.MarkdownReply(fmt.Sprintf(quoteTemplate, EscapeMarkdown(q.Text), BoldMarkdown(q.DisplayAuthor())))
}

// BoldMarkdown wraps s in a bold entity. Legacy Markdown has no escapes
// inside an entity, so each control character closes the entity, is
// escaped on its own and the entity reopens after it: "2*2" becomes
// "*2*\**2*". Empty entities are never emitted.
func BoldMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	for s != "" {
		i := strings.IndexAny(s, markdownEscapables)
		if i < 0 {
			i = len(s)
		}

		if i > 0 {
			b.WriteByte('*')
			b.WriteString(s[:i])
			b.WriteByte('*')
		}

		if i < len(s) {
			b.WriteByte('\\')
			b.WriteByte(s[i])
			i++
		}

		s = s[i:]
	}

	return b.String()
}

// EscapeMarkdown backslash-escapes the control characters of the Bot API's
// legacy Markdown. The result must sit outside any entity.
func EscapeMarkdown(s string) string {
	if !strings.ContainsAny(s, markdownEscapables) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	for _, r := range s {
		if strings.ContainsRune(markdownEscapables, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}
