package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfigYAML = `
app:
  name: notifier-test
database:
  postgres:
    host: localhost
    database: attendance
    user: app
  redis:
    address: localhost:6379
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "notifier-test", cfg.App.Name)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 30000, cfg.Mail.SendTimeout)
	assert.Equal(t, "settings", cfg.Settings.Table)
	assert.Equal(t, 60000, cfg.Settings.CacheTTL)
	assert.Equal(t, ":9091", cfg.Metrics.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
}

func TestLoadFromFileEnvFallbackWinsOverDefaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.internal.test")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_SECURE", "true")

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "mail.internal.test", cfg.Mail.Host)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.True(t, cfg.Mail.Secure)
}

func TestLoadFromFileFileValuesWinOverEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "should-not-apply.test")

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfigYAML+`
mail:
  host: configured.example.com
`))
	require.NoError(t, err)

	assert.Equal(t, "configured.example.com", cfg.Mail.Host)
}

func TestLoadFromFileRejectsIncompleteDatabaseConfig(t *testing.T) {
	_, err := LoadFromFile(writeConfigFile(t, "app:\n  name: broken\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.host")
}

func TestLoadFromFileRejectsBadMailPort(t *testing.T) {
	_, err := LoadFromFile(writeConfigFile(t, minimalConfigYAML+`
mail:
  port: 70000
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.port")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration(30000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
