// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

// QuoteService implements the quote use cases on top of a QuoteStore.
// The store is loaded fresh for every call; nothing is cached between requests.
type QuoteService struct {
	store    ports.QuoteStore
	executor *Executor
	logger   *slog.Logger
	pick     func(n int) int
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store  ports.QuoteStore
	Logger *slog.Logger

	// Pick returns a uniformly random index in [0, n). Defaults to math/rand/v2.
	Pick func(n int) int
}

// NewQuoteService creates a new quote service with the provided dependencies.
// It panics if no store is supplied.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: QuoteService requires a store")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pick := cfg.Pick
	if pick == nil {
		pick = rand.IntN
	}

	logger = logger.With(slog.String("component", "app.QuoteService"))

	return &QuoteService{
		store:    cfg.Store,
		executor: NewExecutor(logger),
		logger:   logger,
		pick:     pick,
	}
}

// RandomQuote returns a random quote. With a non-empty authorQuery only quotes
// whose author contains it, case-insensitively, are candidates.
//
// Returns domain.ErrNoQuotes when the store is empty, whatever the query, and a
// *domain.NotFoundError for the author when nothing matches the query.
func (s *QuoteService) RandomQuote(ctx context.Context, authorQuery string) (domain.Quote, error) {
	quotes := s.store.Load(ctx)
	if len(quotes) == 0 {
		return domain.Quote{}, domain.ErrNoQuotes
	}

	if authorQuery == "" {
		return quotes[s.pick(len(quotes))], nil
	}

	matches := lo.Filter(quotes, func(q domain.Quote, _ int) bool {
		return q.AuthorMatches(authorQuery)
	})

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "filtered quotes by author",
		slog.String("query", authorQuery),
		slog.Int("candidates", len(quotes)),
		slog.Int("matches", len(matches)),
	)

	if len(matches) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("author", authorQuery)
	}

	return matches[s.pick(len(matches))], nil
}

// ListAuthors returns the distinct authors in byte-wise ascending order.
// Quotes without an author are listed as domain.UnknownAuthor.
func (s *QuoteService) ListAuthors(ctx context.Context) []string {
	quotes := s.store.Load(ctx)

	authors := lo.Uniq(lo.Map(quotes, func(q domain.Quote, _ int) string {
		return q.DisplayAuthor()
	}))
	slices.Sort(authors)

	return authors
}

// addQuoteInput carries the raw request and the quote parsed from it.
type addQuoteInput struct {
	payload string
	quote   domain.Quote
}

// AddQuote parses payload, appends the quote to the store and persists it.
//
// Parse failures unwrap to *domain.AddQuoteError and leave the store untouched.
// Persistence failures unwrap to the store's error.
func (s *QuoteService) AddQuote(ctx context.Context, payload string) (domain.Quote, error) {
	op := Operation[*addQuoteInput, []domain.Quote, []domain.Quote, domain.Quote]{
		Name: "add_quote",
		Validate: func(_ context.Context, in *addQuoteInput) error {
			q, err := domain.ParseAddQuote(in.payload)
			if err != nil {
				return err
			}

			in.quote = q

			return nil
		},
		Perform: func(ctx context.Context, in *addQuoteInput) ([]domain.Quote, error) {
			return append(s.store.Load(ctx), in.quote), nil
		},
		Verify: func(_ context.Context, in *addQuoteInput, quotes []domain.Quote) ([]domain.Quote, error) {
			if len(quotes) == 0 || quotes[len(quotes)-1] != in.quote {
				return nil, domain.NewConflictError("quote", "appended quote missing from collection")
			}

			return quotes, nil
		},
		Archive: func(ctx context.Context, _ *addQuoteInput, quotes []domain.Quote) error {
			return s.store.Save(ctx, quotes)
		},
		Respond: func(ctx context.Context, in *addQuoteInput, quotes []domain.Quote) (domain.Quote, error) {
			logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quote added",
				slog.String("author", in.quote.Author),
				slog.Int("text_length", len([]rune(in.quote.Text))),
				slog.Int("total", len(quotes)),
			)

			return in.quote, nil
		},
	}

	return Execute(ctx, s.executor, op, &addQuoteInput{payload: payload})
}
