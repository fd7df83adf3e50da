// Package jsonfile implements the quote store as a single JSON array on disk.
//
// The file is re-read on every Load so edits made by hand while the bot runs
// are picked up by the next request. Writes go to a temporary file in the same
// directory which is then renamed over the target, so a reader sees either the
// old collection or the new one and never a partial file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

const filePerm = 0o644

// Store reads and writes quotes from a JSON file.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a store bound to path. The file does not need to exist yet.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "jsonfile.Store")),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored quotes, or an empty slice when the file is missing,
// unreadable, or does not hold a JSON array of quote objects.
func (s *Store) Load(ctx context.Context) []domain.Quote {
	logger := s.loggerFor(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.WarnContext(ctx, "quote file unreadable, treating as empty",
				slog.String("path", s.path),
				slog.Any("error", err),
			)
		}

		return []domain.Quote{}
	}

	if !json.Valid(data) {
		logger.WarnContext(ctx, "quote file is not valid JSON, treating as empty",
			slog.String("path", s.path),
		)

		return []domain.Quote{}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.DebugContext(ctx, "quote file is not a JSON array, treating as empty",
			slog.String("path", s.path),
		)

		return []domain.Quote{}
	}

	var quotes []domain.Quote
	if err := json.Unmarshal(trimmed, &quotes); err != nil {
		logger.WarnContext(ctx, "quote file has malformed entries, treating as empty",
			slog.String("path", s.path),
			slog.Any("error", err),
		)

		return []domain.Quote{}
	}

	if quotes == nil {
		return []domain.Quote{}
	}

	return quotes
}

// Save replaces the file contents with quotes, pretty-printed with two-space
// indentation and non-ASCII text kept as is.
func (s *Store) Save(ctx context.Context, quotes []domain.Quote) error {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(quotes); err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if err := writeAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving quotes to %s: %w", s.path, err)
	}

	s.loggerFor(ctx).DebugContext(ctx, "quotes saved",
		slog.String("path", s.path),
		slog.Int("count", len(quotes)),
	)

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker. A missing file is healthy because it
// reads as an empty store; a missing directory or an unreadable file is not.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("store directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("store directory %s is not a directory", dir)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("store file: %w", err)
	}

	return f.Close()
}

func (s *Store) loggerFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()

		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()

		return err
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}

	return nil
}
