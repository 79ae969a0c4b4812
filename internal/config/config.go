package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string

	LogLevel       string
	LogDevelopment bool
	SQLDebug       bool

	PONumberPrefix   string
	PONumberPadWidth int

	// Session cookie used by the page routes
	CookieName   string
	CookieSecure bool

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:         getEnv("PORT", "3000"),
		DatabaseDSN:      databaseDSN(),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:         getDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "*"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogDevelopment:   getBool("LOG_DEVELOPMENT", false),
		SQLDebug:         getBool("SQL_DEBUG", false),
		PONumberPrefix:   getEnv("PO_NUMBER_PREFIX", "PO"),
		PONumberPadWidth: getInt("PO_NUMBER_PAD_WIDTH", 4),
		CookieName:       getEnv("SESSION_COOKIE_NAME", "session_token"),
		CookieSecure:     getBool("SESSION_COOKIE_SECURE", false),
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", "admin123"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func (c *Config) validate() error {
	if !prefixPattern.MatchString(c.PONumberPrefix) {
		return fmt.Errorf("PO_NUMBER_PREFIX %q must be letters and digits only", c.PONumberPrefix)
	}
	if c.PONumberPadWidth < 1 || c.PONumberPadWidth > 12 {
		return fmt.Errorf("PO_NUMBER_PAD_WIDTH must be between 1 and 12, got %d", c.PONumberPadWidth)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "procurement"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
		getEnv("DB_TIMEZONE", "UTC"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
