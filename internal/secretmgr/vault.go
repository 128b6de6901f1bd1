package secretmgr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/clawops/clawup/internal/config"
)

// VaultKV is the HashiCorp Vault backend, reading items from a KV v2 mount.
// The client picks up VAULT_TOKEN / VAULT_ADDR from the environment like any
// other Vault tooling.
type VaultKV struct {
	client *api.Client
	mount  string
}

func NewVaultKV(cfg config.VaultConfig) (*VaultKV, error) {
	conf := api.DefaultConfig()
	if cfg.Address != "" {
		conf.Address = cfg.Address
	}
	client, err := api.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	mount := strings.Trim(cfg.Mount, "/")
	if mount == "" {
		mount = "secret"
	}
	return &VaultKV{client: client, mount: mount}, nil
}

func (v *VaultKV) Name() string { return "vault" }

// Available verifies the server is initialized and unsealed.
func (v *VaultKV) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := v.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		return false
	}
	return health.Initialized && !health.Sealed
}

// ListVaults reports the KV mounts visible to the token.
func (v *VaultKV) ListVaults(ctx context.Context) ([]VaultInfo, error) {
	mounts, err := v.client.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vault mounts: %w", err)
	}
	var out []VaultInfo
	for path, m := range mounts {
		if m.Type == "kv" {
			name := strings.TrimSuffix(path, "/")
			out = append(out, VaultInfo{ID: name, Name: name})
		}
	}
	return out, nil
}

// ReadItem reads one field of a KV v2 secret named after the item.
func (v *VaultKV) ReadItem(ctx context.Context, item, field string) (string, error) {
	path := fmt.Sprintf("%s/data/%s", v.mount, item)

	secret, err := v.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s from vault: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrItemNotFound
	}

	// KV v2 nests the payload under "data".
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected KV v2 payload at %s", path)
	}
	value, ok := data[field]
	if !ok {
		return "", ErrItemNotFound
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q at %s is not a string", field, path)
	}
	return str, nil
}
