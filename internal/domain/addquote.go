package domain

import "strings"

// AddQuoteSeparator splits the quote text from its author in an add request.
const AddQuoteSeparator = " - "

// AddQuoteReason tags why an add request could not be parsed.
type AddQuoteReason int

const (
	// ReasonEmptyPayload means nothing followed the command.
	ReasonEmptyPayload AddQuoteReason = iota + 1

	// ReasonMissingSeparator means the payload has no " - " separator.
	ReasonMissingSeparator

	// ReasonEmptyText means nothing usable preceded the separator.
	ReasonEmptyText

	// ReasonEmptyAuthor means nothing usable followed the separator.
	ReasonEmptyAuthor
)

// String returns a short description used in logs.
func (r AddQuoteReason) String() string {
	switch r {
	case ReasonEmptyPayload:
		return "empty payload"
	case ReasonMissingSeparator:
		return "missing separator"
	case ReasonEmptyText:
		return "empty text"
	case ReasonEmptyAuthor:
		return "empty author"
	default:
		return "unknown"
	}
}

// AddQuoteError reports a malformed add request.
// Callers surface every reason to users the same way; the reason exists for logs and tests.
type AddQuoteError struct {
	Reason AddQuoteReason
}

// Error implements the error interface.
func (e *AddQuoteError) Error() string {
	return "invalid add quote request: " + e.Reason.String()
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *AddQuoteError) Unwrap() error {
	return ErrValidation
}

// ParseAddQuote parses the payload of an add request, the text after the command
// token, of the form `"quote text" - author`.
//
// The payload is split on the last separator, so authors cannot contain " - " but
// quote text can. One leading and one trailing double quote are removed from the
// text, then one leading and one trailing single quote. Inner quotes are kept.
func ParseAddQuote(payload string) (Quote, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Quote{}, &AddQuoteError{Reason: ReasonEmptyPayload}
	}

	idx := strings.LastIndex(payload, AddQuoteSeparator)
	if idx < 0 {
		return Quote{}, &AddQuoteError{Reason: ReasonMissingSeparator}
	}

	text := strings.TrimSpace(payload[:idx])
	text = trimOnce(text, `"`)
	text = trimOnce(text, `'`)

	author := strings.TrimSpace(payload[idx+len(AddQuoteSeparator):])

	if strings.TrimSpace(text) == "" {
		return Quote{}, &AddQuoteError{Reason: ReasonEmptyText}
	}

	if author == "" {
		return Quote{}, &AddQuoteError{Reason: ReasonEmptyAuthor}
	}

	return Quote{Text: text, Author: author}, nil
}

// trimOnce removes at most one occurrence of mark from each end of s.
func trimOnce(s, mark string) string {
	s = strings.TrimPrefix(s, mark)
	return strings.TrimSuffix(s, mark)
}
