package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const devJWTSecret = "super-secret-key"

// Config contains application configuration
type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string
	JWTTTL      time.Duration

	RedisURL       string
	ReportCacheTTL time.Duration

	TelegramToken  string
	TelegramChatID int64

	StaticDir   string
	CORSOrigins []string

	AdminUsername    string
	AdminPassword    string
	SeedSampleRaffle bool
	DefaultLottery   string

	LogLevel slog.Level
}

// envConfig is the environment layer. Keys that also have a flag carry no
// default so an unset variable leaves the flag value alone.
type envConfig struct {
	RunAddress  string `envconfig:"RUN_ADDRESS"`
	DatabaseURI string `envconfig:"DATABASE_URI"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
	RedisURL    string `envconfig:"REDIS_URL"`

	JWTTTL         time.Duration `envconfig:"JWT_TTL" default:"24h"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"30s"`
	TelegramToken  string        `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID int64         `envconfig:"TELEGRAM_CHAT_ID"`
	StaticDir      string        `envconfig:"STATIC_DIR"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`

	AdminUsername    string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD" default:"1234"`
	SeedSampleRaffle bool   `envconfig:"SEED_SAMPLE_RAFFLE" default:"true"`
	DefaultLottery   string `envconfig:"DEFAULT_LOTTERY" default:"Lotería de Medellín"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
}

// NewConfig creates a new configuration from command line flags, a .env file
// if present and environment variables. Environment wins over flags.
func NewConfig(args []string) (*Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("raffledesk", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "", "Server run address")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI")
	fs.StringVar(&cfg.JWTSecret, "s", "", "JWT signing secret")
	fs.StringVar(&cfg.RedisURL, "r", "", "Redis URL for the report cache")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// Override with env vars if present
	if env.RunAddress != "" {
		cfg.RunAddress = env.RunAddress
	}
	if env.DatabaseURI != "" {
		cfg.DatabaseURI = env.DatabaseURI
	}
	if env.JWTSecret != "" {
		cfg.JWTSecret = env.JWTSecret
	}
	if env.RedisURL != "" {
		cfg.RedisURL = env.RedisURL
	}

	cfg.JWTTTL = env.JWTTTL
	cfg.ReportCacheTTL = env.ReportCacheTTL
	cfg.TelegramToken = env.TelegramToken
	cfg.TelegramChatID = env.TelegramChatID
	cfg.StaticDir = env.StaticDir
	cfg.AdminUsername = env.AdminUsername
	cfg.AdminPassword = env.AdminPassword
	cfg.SeedSampleRaffle = env.SeedSampleRaffle
	cfg.DefaultLottery = env.DefaultLottery

	for _, o := range env.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env.LogLevel)); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	// Set defaults if needed
	if cfg.RunAddress == "" {
		cfg.RunAddress = ":8080"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if cfg.DatabaseURI == "" {
		return nil, errors.New("database URI is required (-d or DATABASE_URI)")
	}

	return &cfg, nil
}

// UsesDevSecret reports whether the built-in development JWT secret is in use
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// NotificationsEnabled reports whether Telegram notifications are configured
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
