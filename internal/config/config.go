package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("config invalid")

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cleanup   CleanupConfig
	Admin     AdminConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Development reports whether error responses may carry internal detail.
func (s ServerConfig) Development() bool {
	return strings.EqualFold(s.Environment, "development")
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AuthConfig struct {
	SessionSecret  string
	RefreshSecret  string
	SessionTTL     time.Duration
	RefreshTTL     time.Duration
	CookieName     string
	CookieSecure   bool
	CookieSameSite string
	CookieDomain   string
	CookiePath     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	Window  time.Duration
}

type CleanupConfig struct {
	Interval         time.Duration
	SessionRetention time.Duration
	RefreshRetention time.Duration
}

type AdminConfig struct {
	EmployeeID string
	Name       string
	Email      string
	Password   string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Environment:  v.GetString("APP_ENV"),
			CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("PGHOST"),
			Port:        v.GetString("PGPORT"),
			User:        v.GetString("PGUSER"),
			Password:    v.GetString("PGPASSWORD"),
			Database:    v.GetString("PGDATABASE"),
			SSLMode:     v.GetString("PGSSLMODE"),
		},
		Auth: AuthConfig{
			SessionSecret:  v.GetString("SESSION_TOKEN_SECRET"),
			RefreshSecret:  v.GetString("REFRESH_TOKEN_SECRET"),
			SessionTTL:     v.GetDuration("SESSION_TOKEN_TTL"),
			RefreshTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
			CookieName:     v.GetString("AUTH_COOKIE_NAME"),
			CookieSecure:   v.GetBool("AUTH_COOKIE_SECURE"),
			CookieSameSite: v.GetString("AUTH_COOKIE_SAMESITE"),
			CookieDomain:   v.GetString("AUTH_COOKIE_DOMAIN"),
			CookiePath:     v.GetString("AUTH_COOKIE_PATH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
			Window:  v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Cleanup: CleanupConfig{
			Interval:         v.GetDuration("TOKEN_CLEANUP_INTERVAL"),
			SessionRetention: v.GetDuration("SESSION_RETENTION"),
			RefreshRetention: v.GetDuration("REFRESH_RETENTION"),
		},
		Admin: AdminConfig{
			EmployeeID: v.GetString("ADMIN_EMPLOYEE_ID"),
			Name:       v.GetString("ADMIN_NAME"),
			Email:      v.GetString("ADMIN_EMAIL"),
			Password:   v.GetString("ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")

	v.SetDefault("PGHOST", "localhost")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGSSLMODE", "disable")

	v.SetDefault("SESSION_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("AUTH_COOKIE_NAME", "refreshToken")
	v.SetDefault("AUTH_COOKIE_SECURE", true)
	v.SetDefault("AUTH_COOKIE_SAMESITE", "lax")
	v.SetDefault("AUTH_COOKIE_PATH", "/")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("TOKEN_CLEANUP_INTERVAL", "24h")
	v.SetDefault("SESSION_RETENTION", "24h")
	v.SetDefault("REFRESH_RETENTION", "168h")

	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("LOG_LEVEL", "info")
}

// Validate checks constraints that cannot be expressed as defaults.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.SessionSecret) == "" {
		return fmt.Errorf("%w: SESSION_TOKEN_SECRET is required", ErrInvalid)
	}
	if strings.TrimSpace(c.Auth.RefreshSecret) == "" {
		return fmt.Errorf("%w: REFRESH_TOKEN_SECRET is required", ErrInvalid)
	}
	if c.Auth.SessionSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("%w: session and refresh secrets must differ", ErrInvalid)
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("%w: token TTLs must be positive", ErrInvalid)
	}
	if c.Auth.SessionTTL >= c.Auth.RefreshTTL {
		return fmt.Errorf("%w: SESSION_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL", ErrInvalid)
	}
	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("%w: TOKEN_CLEANUP_INTERVAL must be positive", ErrInvalid)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
