package domain

// ReplyFormat selects how the transport renders a reply.
type ReplyFormat int

const (
	// FormatPlain sends the text verbatim.
	FormatPlain ReplyFormat = iota

	// FormatMarkdown asks the transport to render emphasis markup.
	FormatMarkdown
)

// String returns the format name used in logs.
func (f ReplyFormat) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// ChatMessage is an inbound text message as seen by the bot,
// independent of the messaging platform that delivered it.
type ChatMessage struct {
	// UpdateID orders messages; the transport acknowledges everything up to it.
	UpdateID int64

	// ChatID identifies the conversation a reply goes back to.
	ChatID int64

	// SenderID is the caller identity. Zero when the platform did not supply one.
	SenderID int64

	// SenderName is the sender's handle, for logging only.
	SenderName string

	// Text is the raw message text including any leading command token.
	Text string
}

// Reply is an outbound message.
type Reply struct {
	Text   string
	Format ReplyFormat
}

// PlainReply builds a reply sent without markup.
func PlainReply(text string) Reply {
	return Reply{Text: text, Format: FormatPlain}
}

// MarkdownReply builds a reply rendered with emphasis markup.
func MarkdownReply(text string) Reply {
	return Reply{Text: text, Format: FormatMarkdown}
}
