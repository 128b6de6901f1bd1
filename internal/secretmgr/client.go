// Package secretmgr talks to the external secret manager. Each backend is a
// narrow typed client so output scraping and API quirks stay isolated here
// instead of leaking into step logic.
package secretmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
)

// ErrItemNotFound means the manager is reachable but has no such item.
// Resolution falls through to the next source without a warning.
var ErrItemNotFound = errors.New("secret manager: item not found")

// VaultInfo identifies one vault/collection in the manager.
type VaultInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is the contract every secret-manager backend satisfies.
type Client interface {
	// Name returns the backend identifier ("op", "vault").
	Name() string

	// Available reports whether the manager can be reached at all.
	Available(ctx context.Context) bool

	// ListVaults enumerates vaults; used as the service-token validation
	// probe (a usable token can list at least one vault).
	ListVaults(ctx context.Context) ([]VaultInfo, error)

	// ReadItem fetches one field of a named item, or ErrItemNotFound.
	ReadItem(ctx context.Context, item, field string) (string, error)
}

// New builds the configured backend.
func New(cfg config.SecretManagerConfig, runner host.CommandRunner) (Client, error) {
	switch cfg.Backend {
	case "op":
		return NewOpCLI(runner, cfg.OpVault), nil
	case "vault":
		return NewVaultKV(cfg.Vault)
	default:
		return nil, fmt.Errorf("unknown secret manager backend: %s", cfg.Backend)
	}
}
