package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "a-very-long-test-secret"
db:
  driver: sqlite
rbac:
  roles:
    student: [view_course]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.False(t, cfg.Enrollment.AllowReapplyAfterDenial)
	assert.Equal(t, []string{"view_course"}, cfg.RBAC.Roles["student"])
	assert.False(t, cfg.Server.Debug())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "a-very-long-test-secret"
`)
	t.Setenv("PATHSALA_SERVER_PORT", "9090")
	t.Setenv("PATHSALA_ENROLLMENT_ALLOW_REAPPLY_AFTER_DENIAL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Enrollment.AllowReapplyAfterDenial)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8000},
			Database: DatabaseConfig{Driver: "postgres"},
			Auth: AuthConfig{
				JWTSecret:       "0123456789abcdef",
				AccessTokenTTL:  time.Minute,
				RefreshTokenTTL: time.Hour,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, false},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"zero ttl", func(c *Config) { c.Auth.AccessTokenTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
