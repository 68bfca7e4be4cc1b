package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: debug
database:
  host: localhost
  username: referral
  password: referral
  database: referral
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, "referral", cfg.Database.Username)
	assert.Equal(t, "referral", cfg.Database.Database)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 5, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, 15, cfg.Security.LoginLockMinutes)
	assert.Equal(t, 6, cfg.Security.PasswordMinLength)

	// debug mode gets an auto-generated secret
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.GreaterOrEqual(t, len(cfg.JWT.Secret), 32)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
  mode: debug
database:
  host: db.internal
  port: 3306
  username: referral
  password: secret
  database: referrals
jwt:
  secret: this-is-a-sufficiently-long-test-secret
  expire_hours: 72
security:
  max_login_attempts: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 72, cfg.JWT.ExpireHours)
	assert.Equal(t, 3, cfg.Security.MaxLoginAttempts)
	assert.Contains(t, cfg.Database.DSN(), "db.internal")
	assert.Contains(t, cfg.Database.DSN(), "referrals")
}

func TestLoadReleaseModeRequiresSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: release
database:
  host: localhost
  username: referral
  password: referral
  database: referral
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
