package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
vk:
  groupId: 12345
  groupToken: group-token
  minInterval: 500ms
oauth:
  appId: "777"
  redirectUri: https://bot.example.com/oauth/callback
bot:
  favoritesPageSize: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(12345), cfg.VK.GroupID)
	assert.Equal(t, "group-token", cfg.VK.GroupToken)
	assert.Equal(t, 500*time.Millisecond, cfg.VK.MinInterval)
	assert.Equal(t, "777", cfg.OAuth.AppID)
	assert.Equal(t, 5, cfg.Bot.FavoritesPageSize)

	// untouched keys keep their defaults
	assert.Equal(t, "5.131", cfg.VK.APIVersion)
	assert.Equal(t, 10*time.Minute, cfg.OAuth.ChallengeTTL)
	assert.Equal(t, 10*time.Second, cfg.Bot.NextCandidateBackoff)
	assert.Equal(t, []string{"friends", "photos", "groups", "wall"}, cfg.OAuth.Scopes)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeConfigFile(t, `
vk:
  groupId: 1
  groupToken: from-file
oauth:
  appId: "1"
  redirectUri: https://bot.example.com/oauth/callback
`)
	t.Setenv("VK_GROUP_TOKEN", "from-env")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.VK.GroupToken)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	path := writeConfigFile(t, `
vk:
  groupId: 1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMySQLDSN(t *testing.T) {
	cfg := DefaultMySQLConfig()
	assert.Equal(t, "vkinder:vkinder@tcp(mysql:3306)/vkinder?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}
