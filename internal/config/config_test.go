package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "WORDS_DIR", "ENV", "JWT_SECRET", "JWT_EXPIRES_DAYS", "SESSION_TTL", "AUTH_RATE_PER_MINUTE"} {
		t.Setenv(k, "")
	}

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, "5175", c.Port)
	require.Equal(t, "./data/hangman.db", c.DBPath)
	require.Equal(t, "", c.WordsDir)
	require.Equal(t, 14, c.JWTExpiresDays)
	require.Equal(t, 2*time.Hour, c.SessionTTL)
	require.Equal(t, 20, c.AuthPerMinute)
	require.False(t, c.IsProduction())
	require.NotContains(t, c.NonSensitiveString(), c.JWTSecret)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_DAYS", "3")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("AUTH_RATE_PER_MINUTE", "0")

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, "8080", c.Port)
	require.True(t, c.IsProduction())
	require.Equal(t, 3, c.JWTExpiresDays)
	require.Equal(t, 15*time.Minute, c.SessionTTL)
	require.Zero(t, c.AuthPerMinute)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"environment", map[string]string{"ENV": "staging"}},
		{"expiry", map[string]string{"JWT_EXPIRES_DAYS": "soon"}},
		{"negative expiry", map[string]string{"JWT_EXPIRES_DAYS": "-1"}},
		{"ttl", map[string]string{"SESSION_TTL": "forever"}},
		{"auth rate", map[string]string{"AUTH_RATE_PER_MINUTE": "-5"}},
		{"production secret", map[string]string{"ENV": "production", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"ENV", "JWT_SECRET", "JWT_EXPIRES_DAYS", "SESSION_TTL", "AUTH_RATE_PER_MINUTE"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.FromEnv()
			require.ErrorIs(t, err, config.ErrInvalidValue)
		})
	}
}
