// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrInvalidValue = errors.New("invalid value")

const devJWTSecret = "dev_secret_change_me"

type environment string

const (
	production  environment = "production"
	development environment = "development"
)

type Config struct {
	Port           string
	DBPath         string
	WordsDir       string
	ClientOrigin   string
	JWTSecret      string
	JWTExpiresDays int
	DailySalt      string
	SessionTTL     time.Duration
	AuthPerMinute  int
	LogLevel       string
	LogFormat      string
	env            environment
}

func (c Config) IsProduction() bool { return c.env == production }

// NonSensitiveString is a representation suitable for logging.
func (c Config) NonSensitiveString() string {
	return fmt.Sprintf("Config{env: %s, port: %s, db: %s, wordsDir: %q, sessionTTL: %s, ...}",
		c.env, c.Port, c.DBPath, c.WordsDir, c.SessionTTL)
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (Config, error) {
	invalid := func(key, value string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}

	c := Config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       getEnv("DB_PATH", "./data/hangman.db"),
		WordsDir:     os.Getenv("WORDS_DIR"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", devJWTSecret),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	switch raw := getEnv("ENV", "development"); raw {
	case "production":
		c.env = production
	case "development":
		c.env = development
	default:
		return invalid("ENV", raw)
	}

	raw := getEnv("JWT_EXPIRES_DAYS", "14")
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return invalid("JWT_EXPIRES_DAYS", raw)
	}
	c.JWTExpiresDays = days

	raw = getEnv("SESSION_TTL", "2h")
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return invalid("SESSION_TTL", raw)
	}
	c.SessionTTL = ttl

	raw = getEnv("AUTH_RATE_PER_MINUTE", "20")
	perMinute, err := strconv.Atoi(raw)
	if err != nil || perMinute < 0 {
		return invalid("AUTH_RATE_PER_MINUTE", raw)
	}
	c.AuthPerMinute = perMinute

	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return Config{}, fmt.Errorf("%w: JWT_SECRET must be set in production", ErrInvalidValue)
	}
	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
