package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// botTokenPattern matches a Bot API token ("<bot id>:<secret>"), bare or
	// embedded in a URL or error string.
	botTokenPattern = regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{30,}`)

	// authHeaderPattern matches Authorization header values.
	authHeaderPattern = regexp.MustCompile(`(?i)^(bearer|basic)\s+.+$`)
)

// secretFields are attribute and struct field names whose values are always
// redacted. config.BotConfig.Token is covered by "Token".
var secretFields = []string{
	"token", "Token", "bot_token",
	"password", "secret", "api_key",
	"authorization", "cookie",
}

// DefaultRedactOptions returns the masq options every handler applies.
// The bot token is redacted by field name and by shape.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretFields)+3)

	for _, name := range secretFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(botTokenPattern),
		masq.WithRegex(authHeaderPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr hook built from
// DefaultRedactOptions plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
