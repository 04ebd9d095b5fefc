package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration. It is built once at process
// start from environment variables and passed down; nothing reads the
// environment after startup.
type Config struct {
	QuoteAPIBaseURL string
	QuoteAPIKey     string
	GoldSymbol      string
	SilverSymbol    string
	RateSource      string

	FetchSchedule    string
	ScheduleTimezone string
	RunTimeout       time.Duration

	Postgres PostgresCfg
	Redis    RedisCfg
	CacheTTL time.Duration

	HistoryDir string
	ListenAddr string
}

type PostgresCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (p PostgresCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

type RedisCfg struct {
	Addr     string
	Password string
}

// Load reads configuration from the environment. The quote API key has no
// default on purpose: shipping a fallback credential in source is how keys
// leak, so a missing key is a startup error instead.
func Load() (*Config, error) {
	apiKey := os.Getenv("QUOTE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("QUOTE_API_KEY is required")
	}

	runTimeoutStr := getEnv("RUN_TIMEOUT", "60s")
	runTimeout, err := time.ParseDuration(runTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_TIMEOUT %q: %w", runTimeoutStr, err)
	}

	cacheTTLStr := getEnv("CACHE_TTL", "10m")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL %q: %w", cacheTTLStr, err)
	}

	tz := getEnv("SCHEDULE_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", tz, err)
	}

	return &Config{
		QuoteAPIBaseURL: getEnv("QUOTE_API_BASE_URL", "https://api.twelvedata.com/quote"),
		QuoteAPIKey:     apiKey,
		GoldSymbol:      getEnv("GOLD_SYMBOL", "XAU/USD"),
		SilverSymbol:    getEnv("SILVER_SYMBOL", "XAG/USD"),
		RateSource:      getEnv("RATE_SOURCE", "twelvedata"),

		FetchSchedule:    getEnv("FETCH_SCHEDULE", "*/5 * * * *"),
		ScheduleTimezone: tz,
		RunTimeout:       runTimeout,

		Postgres: PostgresCfg{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "collector"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "rates"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisCfg{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		CacheTTL: cacheTTL,

		HistoryDir: getEnv("HISTORY_DIR", ""),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
