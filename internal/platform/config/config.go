// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default ops HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultTelegramAPIURL is the public Telegram Bot API endpoint.
	DefaultTelegramAPIURL = "https://api.telegram.org"

	// DefaultQuotesPath is the quote store file, relative to the working directory.
	DefaultQuotesPath = "quotes.json"

	// DefaultPollTimeout is how long a single getUpdates call waits for messages.
	DefaultPollTimeout = 25 * time.Second

	// DefaultPollBackoff is the pause after a failed poll before trying again.
	DefaultPollBackoff = 3 * time.Second

	// DefaultClientRetryMaxAttempts is the default number of retry attempts.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// EnvPrefix marks environment variables that override configuration keys.
// Nested keys are separated by a double underscore: APP_BOT__POLL_TIMEOUT sets bot.poll_timeout.
const EnvPrefix = "APP_"

// legacyEnv maps the bot's historical environment variables onto configuration keys.
// They win over everything else so existing deployments keep working unchanged.
var legacyEnv = map[string]string{
	"TELEGRAM_TOKEN": "bot.token",
	"OWNER_ID":       "bot.owner_id",
	"QUOTES_FILE":    "store.path",
}

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Bot       BotConfig       `koanf:"bot"       validate:"required"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// BotConfig contains the messaging platform settings.
type BotConfig struct {
	// Token authenticates the bot against the Bot API. Never logged.
	Token string `koanf:"token" validate:"required"`

	// OwnerID is the only user allowed to add quotes. Zero means not configured.
	OwnerID int64 `koanf:"owner_id" validate:"min=0"`

	APIURL      string        `koanf:"api_url"      validate:"required,url"`
	PollTimeout time.Duration `koanf:"poll_timeout" validate:"min=0s"`
	PollBackoff time.Duration `koanf:"poll_backoff" validate:"required,min=100ms"`
}

// BaseURL returns the token-scoped Bot API root that method names are appended to.
func (b BotConfig) BaseURL() string {
	return strings.TrimRight(b.APIURL, "/") + "/bot" + b.Token
}

// StoreConfig contains quote store settings.
type StoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// ServerConfig contains ops HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains outbound HTTP client settings.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotebot",
		"app.version":     "dev",
		"app.environment": "local",

		"bot.token":        "",
		"bot.owner_id":     0,
		"bot.api_url":      DefaultTelegramAPIURL,
		"bot.poll_timeout": DefaultPollTimeout.String(),
		"bot.poll_backoff": DefaultPollBackoff.String(),

		"store.path": DefaultQuotesPath,

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotebot.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotebot",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "35s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",
	}
}

// layer is one configuration source. Later layers override earlier ones.
type layer struct {
	name     string
	load     func(k *koanf.Koanf) error
	optional bool
}

// layers returns the sources Load applies, lowest precedence first:
// defaults, configs/base.yaml, configs/{profile}.yaml, APP_ variables, then
// the historical TELEGRAM_TOKEN, OWNER_ID and QUOTES_FILE variables.
func layers(profile string) []layer {
	ls := []layer{
		{name: "defaults", load: func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(defaults(), "."), nil)
		}},
		{name: "base config", load: yamlFile("configs/base.yaml"), optional: true},
	}

	if profile != "" {
		ls = append(ls, layer{
			name:     fmt.Sprintf("profile config %q", profile),
			load:     yamlFile(fmt.Sprintf("configs/%s.yaml", profile)),
			optional: true,
		})
	}

	return append(ls,
		layer{name: "env vars", load: func(k *koanf.Koanf) error {
			return k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
		}},
		layer{name: "legacy env vars", load: func(k *koanf.Koanf) error {
			return k.Load(env.ProviderWithValue("", ".", legacyEnvKey), nil)
		}},
	)
}

// Load merges every layer for profile and decodes the result. It does not
// validate; call Validate on the returned Config.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	for _, l := range layers(profile) {
		if err := l.load(k); err != nil {
			if l.optional && errors.Is(err, os.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_LOG__FILE__ENABLED to log.file.enabled.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// legacyEnvKey keeps only the historical variables; an empty key tells koanf to skip.
func legacyEnvKey(key, value string) (string, any) {
	target, ok := legacyEnv[key]
	if !ok || value == "" {
		return "", nil
	}

	return target, value
}

func yamlFile(path string) func(*koanf.Koanf) error {
	return func(k *koanf.Koanf) error {
		if _, err := os.Stat(path); err != nil {
			return err
		}

		return k.Load(file.Provider(path), yaml.Parser())
	}
}
