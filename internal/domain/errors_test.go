package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentinels = map[string]error{
	"not found":   ErrNotFound,
	"conflict":    ErrConflict,
	"validation":  ErrValidation,
	"forbidden":   ErrForbidden,
	"unavailable": ErrUnavailable,
}

// TestErrorTaxonomy checks each typed error's message and that it matches
// its own sentinel and no other.
func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		err      error
		wantMsg  string
		sentinel string
	}{
		{NewNotFoundError("author", "Lao"), `author matching "Lao" not found`, "not found"},
		{NewNotFoundError("quote", ""), "quote not found", "not found"},
		{ErrNoQuotes, "no quotes stored: not found", "not found"},
		{NewConflictError("telegram", "terminated by other getUpdates request"),
			"telegram conflict: terminated by other getUpdates request", "conflict"},
		{NewValidationError("author", "is required"), "validation failed for author: is required", "validation"},
		{NewValidationError("", "bad payload"), "validation failed: bad payload", "validation"},
		{&AddQuoteError{Reason: ReasonMissingSeparator}, "invalid add quote request: missing separator", "validation"},
		{NewForbiddenError("addquote", "not the owner"), `operation "addquote" forbidden: not the owner`, "forbidden"},
		{NewForbiddenError("getMe", ""), `operation "getMe" forbidden`, "forbidden"},
		{NewUnavailableError("telegram", "timeout"), `service "telegram" unavailable: timeout`, "unavailable"},
		{NewUnavailableError("quote-store", ""), `service "quote-store" unavailable`, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())

			for name, s := range sentinels {
				if name == tt.sentinel {
					assert.ErrorIs(t, tt.err, s)
				} else {
					assert.NotErrorIs(t, tt.err, s, name)
				}
			}
		})
	}
}

func TestIsHelpers_FollowWrapping(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("handler: %w", fmt.Errorf("service: %w", err)) }

	helpers := []struct {
		is  func(error) bool
		err error
	}{
		{IsNotFound, NewNotFoundError("quote", "")},
		{IsConflict, NewConflictError("telegram", "webhook set")},
		{IsValidation, NewValidationError("", "empty")},
		{IsForbidden, NewForbiddenError("sendMessage", "")},
		{IsUnavailable, NewUnavailableError("telegram", "")},
	}

	for _, h := range helpers {
		assert.True(t, h.is(h.err), h.err.Error())
		assert.True(t, h.is(wrap(h.err)), h.err.Error())
		assert.False(t, h.is(errors.New("boom")))
		assert.False(t, h.is(nil))
	}
}

func TestTypedErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("addquote: %w", &AddQuoteError{Reason: ReasonEmptyText})

	var parseErr *AddQuoteError
	require.ErrorAs(t, wrapped, &parseErr)
	assert.Equal(t, ReasonEmptyText, parseErr.Reason)

	var nf *NotFoundError
	require.ErrorAs(t, fmt.Errorf("quote: %w", NewNotFoundError("author", "jobs")), &nf)
	assert.Equal(t, NotFoundError{Entity: "author", ID: "jobs"}, *nf)

	var ve *ValidationError
	require.ErrorAs(t, NewValidationError("text", "too long"), &ve)
	assert.Equal(t, "text", ve.Field)
}
