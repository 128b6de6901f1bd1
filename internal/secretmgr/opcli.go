package secretmgr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clawops/clawup/internal/host"
)

// OpCLI wraps the 1Password `op` CLI. Authentication comes from
// OP_SERVICE_ACCOUNT_TOKEN in the process environment, exactly as the CLI
// documents it.
type OpCLI struct {
	runner host.CommandRunner
	vault  string // vault the gateway's items live in
}

func NewOpCLI(runner host.CommandRunner, vault string) *OpCLI {
	return &OpCLI{runner: runner, vault: vault}
}

func (c *OpCLI) Name() string { return "op" }

func (c *OpCLI) Available(ctx context.Context) bool {
	if _, err := c.runner.LookPath("op"); err != nil {
		return false
	}
	return c.runner.Run(ctx, "op", "whoami") == nil
}

func (c *OpCLI) ListVaults(ctx context.Context) ([]VaultInfo, error) {
	out, err := c.runner.Output(ctx, "op", "vault", "list", "--format=json")
	if err != nil {
		return nil, fmt.Errorf("op vault list: %w", err)
	}
	var vaults []VaultInfo
	if err := json.Unmarshal(out, &vaults); err != nil {
		return nil, fmt.Errorf("parse op vault list output: %w", err)
	}
	return vaults, nil
}

func (c *OpCLI) ReadItem(ctx context.Context, item, field string) (string, error) {
	ref := fmt.Sprintf("op://%s/%s/%s", c.vault, item, field)
	out, err := c.runner.Output(ctx, "op", "read", ref)
	if err != nil {
		// The CLI has no machine-readable not-found signal; this string match
		// is the one place in the tree that scrapes its output.
		if strings.Contains(err.Error(), "isn't an item") || strings.Contains(err.Error(), "could not be found") {
			return "", ErrItemNotFound
		}
		return "", fmt.Errorf("op read %s: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}
