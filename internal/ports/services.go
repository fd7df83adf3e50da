// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quotebot/internal/domain"
)

// QuoteStore persists the ordered quote collection.
//
// The collection is small and rewritten as a whole, so the contract is
// load-everything and save-everything rather than per-record access.
type QuoteStore interface {
	// Load returns every stored quote in insertion order.
	// Read faults are absorbed: a missing, unreadable or malformed
	// backing store reads as an empty collection.
	Load(ctx context.Context) []domain.Quote

	// Save replaces the stored collection with quotes.
	// Readers never observe a partially written collection.
	Save(ctx context.Context, quotes []domain.Quote) error
}

// ChatTransport delivers messages between the bot and its users.
//
// Example usage:
//
//	msgs, err := transport.FetchMessages(ctx, offset, 30*time.Second)
//	for _, m := range msgs {
//	    _ = transport.SendReply(ctx, m.ChatID, domain.PlainReply("hi"))
//	}
type ChatTransport interface {
	// FetchMessages long-polls for messages with an update id of at least
	// offset, waiting up to timeout when none are pending. Fetching with a
	// higher offset acknowledges everything below it.
	FetchMessages(ctx context.Context, offset int64, timeout time.Duration) ([]domain.ChatMessage, error)

	// SendReply posts a reply into the given chat.
	SendReply(ctx context.Context, chatID int64, reply domain.Reply) error
}
