package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("MIRROR_INTERVAL_SECONDS", "")
	t.Setenv("MJ_SESSION_MAX_AGE_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, 30*time.Second, cfg.MirrorInterval)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, DefaultNotificationChannelName, cfg.NotificationChannelName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("MIRROR_INTERVAL_SECONDS", "5")
	t.Setenv("MJ_SESSION_MAX_AGE_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, 5*time.Second, cfg.MirrorInterval)
	assert.Equal(t, 10*time.Minute, cfg.SessionMaxAge)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_BOT_TOKEN", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DISCORD_BOT_TOKEN is required")
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("MIRROR_INTERVAL_SECONDS", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid MIRROR_INTERVAL_SECONDS")
}
