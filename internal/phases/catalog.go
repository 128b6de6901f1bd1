package phases

import (
	"context"
	"fmt"

	"github.com/clawops/clawup/internal/clients"
	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
	"github.com/clawops/clawup/internal/secretmgr"
	"github.com/clawops/clawup/internal/secrets"
)

// Integration group names, in summary order. Required groups come first.
const (
	GroupModelProvider = "Model provider"
	GroupChatBot       = "Chat bot"
	GroupSecretManager = "Secret manager"
	GroupVPNMesh       = "VPN mesh"
	GroupDocuments     = "Documents"
	GroupTasks         = "Tasks"
	GroupEmail         = "Email"
)

// Keys seeded into the secret store at bootstrap rather than resolved from
// the operator.
const (
	KeyGatewayToken    = "OPENCLAW_GATEWAY_TOKEN"
	KeyKeyringPassword = "OPENCLAW_KEYRING_PASSWORD"
)

// Catalog declares every credential the configure phase resolves, in the
// order they are asked for and reported on.
func Catalog(cfg *config.Config) []secrets.Spec {
	anthropic := &clients.AnthropicClient{}
	telegram := &clients.TelegramClient{}
	todoist := &clients.TodoistClient{}

	specs := []secrets.Spec{
		{
			Key:         "ANTHROPIC_API_KEY",
			Description: "Model provider API key",
			Hint:        "sk-ant-...",
			Required:    true,
			Group:       GroupModelProvider,
			ManagerItem: "anthropic-api-key",
			Probe:       anthropic.ProbeKey,
		},
		{
			Key:         "TELEGRAM_BOT_TOKEN",
			Description: "Chat bot token (from @BotFather)",
			Hint:        "123456789:AA...",
			Required:    true,
			Group:       GroupChatBot,
			ManagerItem: "telegram-bot",
			Probe:       telegram.ProbeToken,
		},
		{
			Key:         "OP_SERVICE_ACCOUNT_TOKEN",
			Description: "Secret manager service account token",
			Hint:        "ops_...",
			Required:    true,
			Group:       GroupSecretManager,
			Probe:       managerTokenProbe(cfg),
		},
		{
			Key:         "TAILSCALE_AUTH_KEY",
			Description: "VPN mesh auth key",
			Hint:        "tskey-auth-...",
			Required:    true,
			Group:       GroupVPNMesh,
			ManagerItem: "tailscale-auth-key",
			// No probe: joining the mesh is itself the check.
		},
		{
			Key:         "OUTLINE_API_KEY",
			Description: "Document service API key",
			Hint:        "ol_api_...",
			Group:       GroupDocuments,
			ManagerItem: "outline-api-key",
			Probe:       outlineProbe(cfg),
		},
		{
			Key:         "TODOIST_API_TOKEN",
			Description: "Task service API token",
			Group:       GroupTasks,
			ManagerItem: "todoist-api-token",
			Probe:       todoist.ProbeToken,
		},
		{
			Key:         "GMAIL_APP_PASSWORD",
			Description: "Email app password",
			Group:       GroupEmail,
			ManagerItem: "gmail-app-password",
			// No probe: the gateway resolves this through the secret manager
			// at runtime, not at configure time.
		},
	}
	return specs
}

// newTokenProbeRunner builds a runner whose environment carries only the
// token under test; tests swap it out.
var newTokenProbeRunner = func(token string) host.CommandRunner {
	return &host.ExecRunner{Env: []string{"OP_SERVICE_ACCOUNT_TOKEN=" + token}}
}

// managerTokenProbe validates the 1Password service-account token by listing
// vaults with it through the op CLI: a usable token sees at least one vault.
// The gateway resolves its runtime secrets through op no matter which backend
// clawup uses for its own lookups, so the token is always checked against op
// itself rather than the configured backend.
func managerTokenProbe(cfg *config.Config) secrets.Probe {
	return func(ctx context.Context, token string) error {
		runner := newTokenProbeRunner(token)
		if _, err := runner.LookPath("op"); err != nil {
			return fmt.Errorf("op CLI not installed, token not validated: %w", err)
		}
		vaults, err := secretmgr.NewOpCLI(runner, cfg.SecretManager.OpVault).ListVaults(ctx)
		if err != nil {
			return err
		}
		if len(vaults) == 0 {
			return fmt.Errorf("token lists no vaults")
		}
		return nil
	}
}

// outlineProbe is only possible when the self-hosted document service URL is
// configured.
func outlineProbe(cfg *config.Config) secrets.Probe {
	if cfg.Integrations.OutlineURL == "" {
		return nil
	}
	outline := &clients.OutlineClient{BaseURL: cfg.Integrations.OutlineURL}
	return outline.ProbeKey
}
