// Package config loads the clawup YAML configuration. Every field has a
// working default so a fresh host needs no config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full clawup configuration.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Service       ServiceConfig       `yaml:"service"`
	SecretManager SecretManagerConfig `yaml:"secret_manager"`
	Integrations  IntegrationsConfig  `yaml:"integrations"`
	Backup        BackupConfig        `yaml:"backup"`
}

// IntegrationsConfig holds per-integration endpoints that cannot be guessed
// (self-hosted services).
type IntegrationsConfig struct {
	// OutlineURL is the base URL of the self-hosted document service; leave
	// empty to skip its validation probe.
	OutlineURL string `yaml:"outline_url"`
}

// PathsConfig locates the persisted state this tool owns.
type PathsConfig struct {
	StateDir  string `yaml:"state_dir"`
	EnvFile   string `yaml:"env_file"`
	BackupDir string `yaml:"backup_dir"`
}

// ServiceConfig describes the managed gateway process.
type ServiceConfig struct {
	Backend string `yaml:"backend"` // "systemd" or "docker"
	Name    string `yaml:"name"`
	Command string `yaml:"command"` // ExecStart for systemd
	Image   string `yaml:"image"`   // container image for docker
	Port    int    `yaml:"port"`
	User    string `yaml:"user"` // host account the service runs as
}

// SecretManagerConfig selects and parameterizes the secret-manager backend.
type SecretManagerConfig struct {
	Backend string      `yaml:"backend"` // "op" or "vault"
	OpVault string      `yaml:"op_vault"`
	Vault   VaultConfig `yaml:"vault"`
}

// VaultConfig parameterizes the HashiCorp Vault KV backend.
type VaultConfig struct {
	Address string `yaml:"address"`
	Mount   string `yaml:"mount"`
}

// BackupConfig controls local archives and the optional offsite copy.
type BackupConfig struct {
	RetentionDays int      `yaml:"retention_days"`
	S3            S3Config `yaml:"s3"`
}

// S3Config enables offsite backup upload when Bucket is set.
type S3Config struct {
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
	Profile string `yaml:"profile"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clawup.yaml"
	}
	return filepath.Join(home, ".config", "clawup", "clawup.yaml")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".openclaw")
	return &Config{
		Paths: PathsConfig{
			StateDir:  stateDir,
			EnvFile:   filepath.Join(stateDir, "gateway.env"),
			BackupDir: filepath.Join(stateDir, "backups"),
		},
		Service: ServiceConfig{
			Backend: "systemd",
			Name:    "openclaw-gateway",
			Command: "openclaw gateway run",
			Image:   "openclaw/gateway:latest",
			Port:    18789,
			User:    "openclaw",
		},
		SecretManager: SecretManagerConfig{
			Backend: "op",
			OpVault: "OpenClaw",
			Vault: VaultConfig{
				Address: "http://127.0.0.1:8200",
				Mount:   "secret",
			},
		},
		Backup: BackupConfig{
			RetentionDays: 14,
		},
	}
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(expandHome(path))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Paths.StateDir = expandHome(cfg.Paths.StateDir)
	cfg.Paths.EnvFile = expandHome(cfg.Paths.EnvFile)
	cfg.Paths.BackupDir = expandHome(cfg.Paths.BackupDir)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Service.Backend {
	case "systemd", "docker":
	default:
		return fmt.Errorf("invalid service backend %q (want systemd or docker)", c.Service.Backend)
	}
	switch c.SecretManager.Backend {
	case "op", "vault":
	default:
		return fmt.Errorf("invalid secret manager backend %q (want op or vault)", c.SecretManager.Backend)
	}
	if c.Backup.RetentionDays <= 0 {
		return fmt.Errorf("backup retention must be positive, got %d", c.Backup.RetentionDays)
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil && home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
