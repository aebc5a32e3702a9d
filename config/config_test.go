package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.EqualValues(t, 10, cfg.MaxUploadMB)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 24*time.Hour, JWTExpiration)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("MAX_UPLOAD_MB", "25")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("SMTP_HOST", "smtp.ccs.test")
	t.Setenv("SMTP_FROM", "noreply@ccs.test")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.EqualValues(t, 25, cfg.MaxUploadMB)
	assert.Equal(t, []byte("s3cret"), JWTSecret)
	assert.Equal(t, 2*time.Hour, JWTExpiration)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 2525, cfg.SMTP.Port)
}

func TestInitLoggingWritesFile(t *testing.T) {
	defer func(l zerolog.Logger) { log.Logger = l }(log.Logger)
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	defer func(w io.Writer) { LogWriter = w }(LogWriter)

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	f, err := InitLogging("warn", path)
	require.NoError(t, err)
	require.NotNil(t, f)

	log.Info().Msg("dropped")
	log.Warn().Str("component", "test").Msg("kept")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.NotContains(t, string(data), "dropped")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
