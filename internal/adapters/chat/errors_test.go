package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/mocks"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

func TestErrorHandler_LogsAndApologizes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	transport := mocks.NewMockChatTransport(t)
	transport.EXPECT().SendReply(mock.Anything, int64(100), domain.PlainReply(ApologyText)).Return(nil).Once()

	handle := NewErrorHandler(transport, logger)
	req := &Request{Message: message("/addquote"), Command: Command{Name: "addquote"}, CorrelationID: "corr-1"}

	handle(logging.WithContext(context.Background(), logger), req, errors.New("permission denied"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"command failed"`)
	assert.Contains(t, out, `"correlation_id":"corr-1"`)
	assert.Contains(t, out, `"command":"addquote"`)
	assert.Contains(t, out, "permission denied")
}

func TestErrorHandler_LogsFailedStep(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	transport := mocks.NewMockChatTransport(t)
	transport.EXPECT().SendReply(mock.Anything, int64(100), domain.PlainReply(ApologyText)).Return(nil).Once()

	err := &app.ExecutionError{Step: app.StepArchive, Message: "state persistence failed", Cause: errors.New("read-only file system")}

	NewErrorHandler(transport, logger)(context.Background(), &Request{Message: message("/addquote")}, err)

	assert.Contains(t, buf.String(), `"step":"archive"`)
}

func TestErrorHandler_ApologyFailureIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	transport := mocks.NewMockChatTransport(t)
	transport.EXPECT().SendReply(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewUnavailableError("telegram", "down")).Once()

	handle := NewErrorHandler(transport, logger)

	assert.NotPanics(t, func() {
		handle(context.Background(), &Request{Message: message("/quote")}, errors.New("boom"))
	})
	assert.Contains(t, buf.String(), "failed to send error reply")
}

func TestErrorHandler_NoChatNoReply(t *testing.T) {
	transport := mocks.NewMockChatTransport(t)
	handle := NewErrorHandler(transport, discardLogger())

	handle(context.Background(), &Request{}, errors.New("boom"))

	transport.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestPanicError(t *testing.T) {
	err := &PanicError{Value: "nil map"}

	assert.Equal(t, "panic: nil map", err.Error())
}
