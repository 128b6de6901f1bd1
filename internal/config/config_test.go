package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "systemd", cfg.Service.Backend)
	assert.Equal(t, "openclaw-gateway", cfg.Service.Name)
	assert.Equal(t, 18789, cfg.Service.Port)
	assert.Equal(t, "op", cfg.SecretManager.Backend)
	assert.Equal(t, 14, cfg.Backup.RetentionDays)
	assert.NotEmpty(t, cfg.Paths.EnvFile)
}

func TestLoadOverridesLayerOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clawup.yaml")
	content := `
service:
  backend: docker
  image: openclaw/gateway:2025.8
  port: 9090
secret_manager:
  backend: vault
  vault:
    address: https://vault.internal:8200
backup:
  retention_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docker", cfg.Service.Backend)
	assert.Equal(t, "openclaw/gateway:2025.8", cfg.Service.Image)
	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "vault", cfg.SecretManager.Backend)
	assert.Equal(t, "https://vault.internal:8200", cfg.SecretManager.Vault.Address)
	assert.Equal(t, "secret", cfg.SecretManager.Vault.Mount, "unset nested fields keep defaults")
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	// untouched sections keep defaults
	assert.Equal(t, "openclaw-gateway", cfg.Service.Name)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clawup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  backend: launchd\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launchd")
}
