package configs

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key LoadConfig reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "SHUTDOWN_TIMEOUT", "ALLOWED_ORIGINS", "JWT_SECRET",
		"MESSAGE_BACKEND", "BADGER_DIR", "HISTORY_LIMIT", "CHAT_RATE", "CHAT_BURST",
		"UPGRADE_RATE", "UPGRADE_BURST", "S3_BUCKET_NAME", "S3_ENDPOINT",
		"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "DATABASE_URL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, BackendPostgres, cfg.MessageBackend)
	require.Equal(t, defaultDevDSN, cfg.DatabaseDSN)
	require.Equal(t, defaultDevJWTSecret, cfg.JWTSecret)
	require.Equal(t, 200, cfg.HistoryLimit)
	require.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfig_ParsesValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://db/clubchat")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, ,https://b.test ")
	t.Setenv("MESSAGE_BACKEND", "Badger")
	t.Setenv("CHAT_RATE", "2.5")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	require.Equal(t, BackendBadger, cfg.MessageBackend)
	require.InDelta(t, 2.5, cfg.ChatRate, 0.0001)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "privileged port", env: map[string]string{"PORT": "80"}},
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
		{name: "production without secret", env: map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://db"}},
		{name: "production without database", env: map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "x"}},
		{name: "unknown backend", env: map[string]string{"MESSAGE_BACKEND": "redis"}},
		{name: "negative history limit", env: map[string]string{"HISTORY_LIMIT": "-1"}},
		{name: "zero chat burst", env: map[string]string{"CHAT_BURST": "0"}},
		{name: "bucket without endpoint", env: map[string]string{"S3_BUCKET_NAME": "photos"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()

			require.Error(t, err)
		})
	}
}
