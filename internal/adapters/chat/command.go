// Package chat routes inbound chat messages to bot command handlers.
package chat

import (
	"strings"

	"github.com/jsamuelsen/quotebot/internal/domain"
)

// Command is a parsed bot command.
type Command struct {
	// Name is the lower-cased command without the leading slash or @botname.
	Name string

	// Args are the whitespace-separated tokens after the command.
	Args []string

	// Payload is the message text after the first literal space, trimmed.
	Payload string
}

// ParseCommand extracts a command from message text. It reports false for
// text that does not start with "/" and for commands addressed to a bot other
// than botName. An empty botName accepts any address.
func ParseCommand(text, botName string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if base, target, found := strings.Cut(name, "@"); found {
		if botName != "" && !strings.EqualFold(target, botName) {
			return Command{}, false
		}

		name = base
	}

	if name == "" {
		return Command{}, false
	}

	_, payload, _ := strings.Cut(text, " ")

	return Command{
		Name:    strings.ToLower(name),
		Args:    fields[1:],
		Payload: strings.TrimSpace(payload),
	}, true
}

// Request is one command invocation as seen by handlers and middleware.
type Request struct {
	Message domain.ChatMessage
	Command Command

	// CorrelationID is set by the correlation middleware so the error
	// handler can report it outside the chain.
	CorrelationID string
}

// CallerID returns the sender identity, zero when unknown.
func (r *Request) CallerID() int64 {
	return r.Message.SenderID
}
