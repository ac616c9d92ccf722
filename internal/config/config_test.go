package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cm := NewConfigManager()
	cfg := cm.GetConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, filepath.Join("data", "moviecatalog.db"), filepath.Clean(cfg.Database.DatabasePath))
	assert.Equal(t, filepath.Join("data", "media"), filepath.Clean(cfg.Media.Root))
	assert.Equal(t, "/media/", cfg.Media.URLPrefix)
	assert.Equal(t, "Django Movies", cfg.Admin.SiteTitle)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "catalog.yaml", `
server:
  port: 9000
  read_timeout: 5s
database:
  type: postgres
  url: postgres://catalog@db/catalog
media:
  url_prefix: /files
admin:
  site_title: Movies Admin
  operators:
    - name: alice
      token: t-alice
      permissions: ["movie.view", "movie.change"]
`)
	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(path))
	cfg := cm.GetConfig()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Empty(t, cfg.Database.DatabasePath)
	assert.Equal(t, "/files/", cfg.Media.URLPrefix)
	assert.Equal(t, "Movies Admin", cfg.Admin.SiteTitle)
	assert.Equal(t, "Django Movies", cfg.Admin.SiteHeader)
	require.Len(t, cfg.Admin.Operators, 1)
	assert.Equal(t, []string{"movie.view", "movie.change"}, cfg.Admin.Operators[0].Permissions)
	assert.Equal(t, path, cm.ConfigPath())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "catalog.json", `{"server": {"port": 9000}}`)
	t.Setenv("MOVIECATALOG_PORT", "9100")
	t.Setenv("MOVIECATALOG_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")
	t.Setenv("MOVIECATALOG_MAX_UPLOAD_SIZE", "2048")
	t.Setenv("MOVIECATALOG_ADMIN_ENABLED", "false")

	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(path))
	cfg := cm.GetConfig()

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
	assert.Equal(t, int64(2048), cfg.Media.MaxUploadSize)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad database", "database:\n  type: mysql\n"},
		{"operator without token", "admin:\n  operators:\n    - name: bob\n"},
		{"shared token", "admin:\n  operators:\n    - {name: a, token: x}\n    - {name: b, token: x}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewConfigManager()
			assert.Error(t, cm.LoadConfig(writeConfig(t, "catalog.yaml", tt.content)))
		})
	}

	cm := NewConfigManager()
	assert.Error(t, cm.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, cm.LoadConfig(writeConfig(t, "catalog.toml", "")))
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("MOVIECATALOG_READ_TIMEOUT", "soon")
	cm := NewConfigManager()
	assert.Error(t, cm.LoadConfig(""))
}
