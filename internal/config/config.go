// Package config loads application configuration from environment
// variables.
//
// Everything has a default that runs locally: SQLite storage, in-process
// rate limiting, no AI key (every conversion falls back), no identity
// provider (protected routes answer 401) and no Stripe key (checkout
// answers 500). Each integration switches on when its variable is set.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/sakif/prompt2json/internal/llm"
	"github.com/sakif/prompt2json/internal/ratelimit"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Storage. DATABASE_URL takes precedence over DB_PATH.
	DBPath      string `env:"DB_PATH" envDefault:"data/prompt2json.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Optional. When set, rate-limit buckets live in Redis.
	RedisURL string `env:"REDIS_URL"`

	// AI completion
	AIProvider    string        `env:"AI_PROVIDER" envDefault:"zai"`
	ZAIAPIKey     string        `env:"ZAI_API_KEY"`
	ZAIBaseURL    string        `env:"ZAI_BASE_URL"`
	ZAIModel      string        `env:"ZAI_MODEL"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`

	// Identity provider
	SupabaseURL       string        `env:"SUPABASE_URL"`
	SupabaseAnonKey   string        `env:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret string        `env:"SUPABASE_JWT_SECRET"`
	SupabaseJWTIssuer string        `env:"SUPABASE_JWT_ISSUER"`
	AuthTimeout       time.Duration `env:"AUTH_TIMEOUT" envDefault:"10s"`

	// Payments
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	// Public address of the web client; checkout redirects land here.
	AppURL    string `env:"APP_URL" envDefault:"http://localhost:3000"`
	PlansFile string `env:"PLANS_FILE"`

	// Comma-separated, e.g. "https://app.example.com,*.example.dev"
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`
	MaxRequestBodySize int64  `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// WriteTimeout must outlast AI_TIMEOUT or slow conversions are cut off.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	RateLimitConvertEnabled bool `env:"RATE_LIMIT_CONVERT_ENABLED" envDefault:"true"`
	RateLimitConvertRPM     int  `env:"RATE_LIMIT_CONVERT_RPM" envDefault:"20"`
	RateLimitConvertBurst   int  `env:"RATE_LIMIT_CONVERT_BURST" envDefault:"5"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("config: unknown LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	switch c.AIProvider {
	case llm.ProviderZAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("config: unknown AI_PROVIDER %q", c.AIProvider)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("config: AI_TIMEOUT must be positive")
	}
	if c.SupabaseJWTSecret != "" && len(c.SupabaseJWTSecret) < 16 {
		return fmt.Errorf("config: SUPABASE_JWT_SECRET must be at least 16 characters")
	}
	if c.RateLimitConvertEnabled && c.RateLimitConvertRPM < 0 {
		return fmt.Errorf("config: RATE_LIMIT_CONVERT_RPM must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins splits CORS_ALLOWED_ORIGINS, dropping blanks.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// LLM returns the completion-client settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:      c.AIProvider,
		ZAIAPIKey:     c.ZAIAPIKey,
		ZAIBaseURL:    c.ZAIBaseURL,
		ZAIModel:      c.ZAIModel,
		GeminiAPIKey:  c.GeminiAPIKey,
		GeminiModel:   c.GeminiModel,
		GeminiBaseURL: c.GeminiBaseURL,
		Timeout:       c.AITimeout,
	}
}

// ConvertRateLimit is the bucket policy for POST /convert.
func (c *Config) ConvertRateLimit() ratelimit.Policy {
	return ratelimit.Policy{
		PerMinute: c.RateLimitConvertRPM,
		Burst:     c.RateLimitConvertBurst,
	}
}
