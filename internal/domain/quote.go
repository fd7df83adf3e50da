package domain

import "strings"

// UnknownAuthor is shown for quotes stored without an author.
const UnknownAuthor = "Unknown"

// Quote is a single quotation and the person it is attributed to.
// Quotes have no identity; the store keeps them in insertion order and
// does not enforce uniqueness.
type Quote struct {
	// Text is the quotation itself.
	Text string `json:"text"`

	// Author is who said or wrote the quote.
	Author string `json:"author"`
}

// DisplayAuthor returns the author, or UnknownAuthor when none was recorded.
func (q Quote) DisplayAuthor() string {
	if q.Author == "" {
		return UnknownAuthor
	}

	return q.Author
}

// AuthorMatches reports whether query is a case-insensitive substring of the author.
func (q Quote) AuthorMatches(query string) bool {
	return strings.Contains(strings.ToLower(q.Author), strings.ToLower(query))
}
