package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebot/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebot/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/domain"
	"github.com/jsamuelsen/quotebot/internal/mocks"
	"github.com/jsamuelsen/quotebot/internal/platform/config"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

type staticChecker struct {
	name string
	err  error
}

func (s staticChecker) Name() string { return s.name }

func (s staticChecker) Check(context.Context) error { return s.err }

// newTestEngine wires the full router with a real health registry and a
// quote service backed by a mock store.
func newTestEngine(t *testing.T, quotes []domain.Quote, checkers ...ports.HealthChecker) *gin.Engine {
	t.Helper()

	store := mocks.NewMockQuoteStore(t)
	store.EXPECT().Load(mock.Anything).Return(quotes).Maybe()

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:  store,
		Logger: discardLogger(),
		Pick:   func(int) int { return 0 },
	})

	registry := ports.NewHealthRegistry()
	for _, c := range checkers {
		require.NoError(t, registry.Register(c))
	}

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:        discardLogger(),
		ServiceName:   "quotebot-test",
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("quotebot", "1.0.0", "abc", "now"), nil),
		QuoteHandler:  handlers.NewQuoteHandler(service),
		Timeout:       time.Second,
	})

	return engine
}

func serveRequest(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	return w
}

func TestNew(t *testing.T) {
	cfg := testServerConfig()

	srv := New(cfg, discardLogger())

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
	assert.Equal(t, cfg.ReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, cfg.IdleTimeout, srv.httpServer.IdleTimeout)
}

func TestServerAddr_IPv6(t *testing.T) {
	cfg := testServerConfig()
	cfg.Host = "::1"

	assert.Equal(t, "[::1]:8080", New(cfg, discardLogger()).Addr())
}

func TestServer_ServeUntilCancelled(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	cfg := testServerConfig()
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	err = New(cfg, discardLogger()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server listen")
}

func TestMaxBodySize(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 10

	srv := New(cfg, discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusOK)
	})

	small := httptest.NewRecorder()
	srv.Engine().ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, small.Code)

	large := httptest.NewRecorder()
	srv.Engine().ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

func TestSetupRouter_Routes(t *testing.T) {
	engine := newTestEngine(t, nil)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/metrics",
		"GET /api/v1/quotes/random",
		"GET /api/v1/authors",
	} {
		assert.True(t, routes[want], "missing route: %s", want)
	}
}

func TestSetupRouter_RandomQuote(t *testing.T) {
	engine := newTestEngine(t, []domain.Quote{{Text: "Be brief.", Author: "Anon"}})

	w := serveRequest(engine, http.MethodGet, "/api/v1/quotes/random")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"Be brief.","author":"Anon"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
}

func TestSetupRouter_EmptyStoreIsNotFound(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := serveRequest(engine, http.MethodGet, "/api/v1/quotes/random")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		TraceID string `json:"traceId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), resp.TraceID)
}

func TestSetupRouter_Readiness(t *testing.T) {
	healthy := newTestEngine(t, nil, staticChecker{name: "quote-store"})
	assert.Equal(t, http.StatusOK, serveRequest(healthy, http.MethodGet, "/-/ready").Code)

	unhealthy := newTestEngine(t, nil,
		staticChecker{name: "quote-store"},
		staticChecker{name: "telegram", err: errors.New("unauthorized")},
	)
	w := serveRequest(unhealthy, http.MethodGet, "/-/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestSetupRouter_WithoutHandlers(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{Logger: discardLogger(), ServiceName: "quotebot-test"})

	assert.Empty(t, engine.Routes())
	assert.Equal(t, http.StatusNotFound, serveRequest(engine, http.MethodGet, "/-/live").Code)
}
