package acl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebot/internal/adapters/clients"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/platform/config"
)

func newTestTelegramClient(t *testing.T, handler http.HandlerFunc) *TelegramClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL + "/bot42:token"))
	require.NoError(t, err)

	return NewTelegramClient(TelegramClientConfig{Client: client})
}

func TestNewTelegramClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewTelegramClient(TelegramClientConfig{})
	})
}

func TestTelegramClient_FetchMessages(t *testing.T) {
	var got getUpdatesRequest

	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot42:token/getUpdates", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = io.WriteString(w, `{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"from":{"id":11,"is_bot":false,"first_name":"Ada","username":"ada"},"chat":{"id":500,"type":"private"},"date":1,"text":"/quote Lao"}},
			{"update_id":101,"message":{"message_id":2,"chat":{"id":501,"type":"group"},"date":2}},
			{"update_id":102}
		]}`)
	})

	msgs, err := tg.FetchMessages(context.Background(), 100, 25*time.Second)
	require.NoError(t, err)

	assert.Equal(t, int64(100), got.Offset)
	assert.Equal(t, 25, got.Timeout)
	assert.Equal(t, []string{"message"}, got.AllowedUpdates)

	require.Len(t, msgs, 3)
	assert.Equal(t, domain.ChatMessage{
		UpdateID:   100,
		ChatID:     500,
		SenderID:   11,
		SenderName: "ada",
		Text:       "/quote Lao",
	}, msgs[0])
	assert.Equal(t, domain.ChatMessage{UpdateID: 101, ChatID: 501}, msgs[1])
	assert.Equal(t, domain.ChatMessage{UpdateID: 102}, msgs[2])
}

func TestTelegramClient_FetchMessages_RoundsTimeoutUp(t *testing.T) {
	var got getUpdatesRequest

	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	})

	msgs, err := tg.FetchMessages(context.Background(), 0, 1500*time.Millisecond)
	require.NoError(t, err)

	assert.Empty(t, msgs)
	assert.Equal(t, 2, got.Timeout)
}

func TestTelegramClient_FetchMessages_InvalidUpdateID(t *testing.T) {
	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"result":[{"update_id":0}]}`)
	})

	_, err := tg.FetchMessages(context.Background(), 0, time.Second)

	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), "update_id")
}

func TestTelegramClient_FetchMessages_Unauthorized(t *testing.T) {
	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	})

	_, err := tg.FetchMessages(context.Background(), 0, time.Second)

	assert.True(t, domain.IsForbidden(err))
}

func TestTelegramClient_SendReply(t *testing.T) {
	tests := []struct {
		name      string
		reply     domain.Reply
		parseMode string
	}{
		{"plain", domain.PlainReply("No quotes available yet."), ""},
		{"markdown", domain.MarkdownReply("“Hi”\n\n— *Ada*"), parseModeMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sendMessageRequest

			tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/bot42:token/sendMessage", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":9,"chat":{"id":500,"type":"private"},"date":1}}`)
			})

			require.NoError(t, tg.SendReply(context.Background(), 500, tt.reply))

			assert.Equal(t, int64(500), got.ChatID)
			assert.Equal(t, tt.reply.Text, got.Text)
			assert.Equal(t, tt.parseMode, got.ParseMode)
		})
	}
}

func TestTelegramClient_OnlyReadsAreRetried(t *testing.T) {
	var sends, polls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bot42:token/sendMessage":
			sends.Add(1)
		case "/bot42:token/getUpdates":
			polls.Add(1)
		}

		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL + "/bot42:token")
	cfg.Retry.MaxAttempts = config.DefaultClientRetryMaxAttempts
	cfg.Retry.InitialInterval = time.Millisecond
	cfg.Retry.MaxInterval = time.Millisecond
	cfg.Circuit.MaxFailures = 10

	client, err := clients.New(cfg)
	require.NoError(t, err)

	tg := NewTelegramClient(TelegramClientConfig{Client: client})

	err = tg.SendReply(context.Background(), 5, domain.PlainReply("An error occurred. Try again later."))
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, int32(1), sends.Load(), "a reply must be posted at most once")

	_, err = tg.FetchMessages(context.Background(), 0, time.Second)
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, int32(config.DefaultClientRetryMaxAttempts), polls.Load())
}

func TestTelegramClient_SendReply_BadMarkdown(t *testing.T) {
	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`)
	})

	err := tg.SendReply(context.Background(), 1, domain.MarkdownReply("*oops"))

	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestTelegramClient_IdentityIsCached(t *testing.T) {
	var calls int32

	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/bot42:token/getMe", r.URL.Path)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Quotes","username":"quote_bot"}}`)
	})

	for range 3 {
		name, err := tg.Identity(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "quote_bot", name)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTelegramClient_IdentityWithoutUsername(t *testing.T) {
	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Quotes"}}`)
	})

	_, err := tg.Identity(context.Background())

	assert.True(t, domain.IsUnavailable(err))
}

func TestTelegramClient_HealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	tg := newTestTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Quotes","username":"quote_bot"}}`)
	})

	assert.Equal(t, TelegramServiceName, tg.Name())
	require.NoError(t, tg.Check(context.Background()))

	healthy.Store(false)
	assert.Error(t, tg.Check(context.Background()))
}
