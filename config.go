package steamapi

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/juliarose/steam-api/pkg/logger"
	"github.com/juliarose/steam-api/pkg/transport"
)

// Config holds client settings loaded from the environment.
type Config struct {
	BaseURL string `env:"STEAM_API_BASE_URL" envDefault:"https://api.steampowered.com"`

	Timeout              time.Duration `env:"STEAM_API_TIMEOUT" envDefault:"30s"`
	MaxRetries           int           `env:"STEAM_API_MAX_RETRIES" envDefault:"3"`
	RetryInitialInterval time.Duration `env:"STEAM_API_RETRY_INITIAL_INTERVAL" envDefault:"500ms"`
	RetryMaxInterval     time.Duration `env:"STEAM_API_RETRY_MAX_INTERVAL" envDefault:"10s"`

	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `env:"STEAM_API_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"STEAM_API_RATE_BURST" envDefault:"1"`

	// CircuitFailureThreshold of zero disables the circuit breaker.
	CircuitFailureThreshold int           `env:"STEAM_API_CIRCUIT_FAILURE_THRESHOLD" envDefault:"0"`
	CircuitRecoveryTimeout  time.Duration `env:"STEAM_API_CIRCUIT_RECOVERY_TIMEOUT" envDefault:"30s"`

	UserAgent string `env:"STEAM_API_USER_AGENT"`

	// LogLevel enables logging to stderr when set.
	LogLevel  string `env:"STEAM_API_LOG_LEVEL"`
	LogFormat string `env:"STEAM_API_LOG_FORMAT" envDefault:"json"`
}

var dotenvLoaded sync.Once

// LoadConfig reads Config from the environment. A .env file in the working
// directory is loaded once per process if present.
func LoadConfig() (Config, error) {
	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, parameterError("load configuration", err)
	}
	return cfg, nil
}

// NewFromConfig creates a client from cfg. Options in opts are applied after
// the ones derived from cfg and take precedence.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	derived := []Option{
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithBackoff(cfg.RetryInitialInterval, cfg.RetryMaxInterval),
		WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		WithUserAgent(cfg.UserAgent),
	}

	if cfg.CircuitFailureThreshold > 0 {
		derived = append(derived, WithCircuitBreaker(
			transport.NewBreaker(cfg.CircuitFailureThreshold, 0, cfg.CircuitRecoveryTimeout),
		))
	}

	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, parameterError("invalid log level", err)
		}
		format, err := logger.ParseFormat(cfg.LogFormat)
		if err != nil {
			return nil, parameterError("invalid log format", err)
		}
		derived = append(derived, WithLogger(logger.New(
			logger.WithLevel(level),
			logger.WithFormat(format),
			logger.WithAttr(logger.Component("steamapi")),
		)))
	}

	return New(append(derived, opts...)...)
}
