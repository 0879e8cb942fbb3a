package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.False(t, cfg.DotEnvLoaded)
	assert.False(t, cfg.IsDev)
	assert.Equal(t, ":3000", cfg.Server.ListenAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultCreatorID, cfg.Creators.CreatorID)
	assert.Equal(t, DefaultReassignID, cfg.Creators.ReassignID)
	assert.False(t, cfg.Auth.Enabled())
	assert.True(t, cfg.Markdown.HardWraps)
	assert.True(t, cfg.Markdown.Typographer)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("SERVER_ADDR", "127.0.0.1")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")
	t.Setenv("SIGN_KEY", "secret")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MARKDOWN_HARD_WRAPS", "false")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.True(t, cfg.IsDev)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.ListenAddr())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Markdown.HardWraps)
	assert.NotContains(t, cfg.String(), "secret")
}

func TestLoadDotEnvFile(t *testing.T) {
	t.Cleanup(func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("CREATOR_ID")
	})

	cfg, err := Load("testdata/app.env")
	require.NoError(t, err)

	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", cfg.Creators.CreatorID)
}

func TestLoadRejectsBadDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load("testdata/missing.env")
	assert.Error(t, err)
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	_, err := Load("testdata/missing.env")
	assert.Error(t, err)
}
