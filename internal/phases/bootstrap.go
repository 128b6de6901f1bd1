package phases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clawops/clawup/internal/engine"
	"github.com/clawops/clawup/internal/envfile"
	"github.com/clawops/clawup/internal/service"
	"github.com/clawops/clawup/internal/utils"
)

// minNodeMajor is the oldest Node.js release the gateway supports.
const minNodeMajor = 20

var basePackages = []string{"git", "curl", "ca-certificates", "ufw"}

// Bootstrap provisions a fresh host end to end. Every step checks before it
// acts, so re-running against an already-provisioned host skips everything
// and still ends with a running service.
func Bootstrap(ctx context.Context, rc *RunContext) (*engine.RunReport, error) {
	rc.Printer.Banner("Bootstrapping OpenClaw gateway host")

	report := engine.NewRunner(rc.Printer).Run(ctx, BootstrapSteps(rc))

	switch report.Status {
	case engine.StatusAborted:
		rc.Printer.Info("")
		rc.Printer.Fail("Bootstrap aborted at step '%s'.", report.FailedStep.ID)
		rc.Printer.Info("💡 Fix the failure above and re-run 'clawup bootstrap'; completed steps will be skipped.")
		return report, fmt.Errorf("bootstrap aborted at step %s", report.FailedStep.ID)
	case engine.StatusWithWarnings:
		rc.Printer.Info("")
		rc.Printer.Warn("Bootstrap finished with warnings (%d steps skipped as already satisfied).", report.Skipped())
	default:
		rc.Printer.Info("")
		rc.Printer.OK("Bootstrap complete (%d steps skipped as already satisfied).", report.Skipped())
	}
	rc.Printer.Info("👉 Next: run 'clawup configure' to connect integrations.")
	return report, nil
}

// BootstrapSteps declares the bootstrap sequence. Order matters: the service
// user must exist before its files are written, the runtime before the
// gateway, the gateway before its service definition.
func BootstrapSteps(rc *RunContext) []engine.Step {
	return []engine.Step{
		systemPackagesStep(rc),
		nodeRuntimeStep(rc),
		serviceUserStep(rc),
		secretStoreStep(rc),
		gatewayInstallStep(rc),
		serviceInstallStep(rc),
		firewallStep(rc),
		vpnMeshStep(rc),
		backupTimerStep(rc),
		serviceStartStep(rc),
	}
}

func systemPackagesStep(rc *RunContext) engine.Step {
	return engine.Step{
		ID:       "system-packages",
		Label:    "Base system packages installed",
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			for _, pkg := range basePackages {
				if err := rc.Runner.Run(ctx, "dpkg", "-s", pkg); err != nil {
					return false, nil
				}
			}
			return true, nil
		},
		Run: func(ctx context.Context) error {
			if err := rc.Runner.Stream(ctx, "apt-get", "update"); err != nil {
				return err
			}
			args := append([]string{"install", "-y"}, basePackages...)
			return rc.Runner.Stream(ctx, "apt-get", args...)
		},
		Verify: func(ctx context.Context) (bool, error) {
			for _, pkg := range basePackages {
				if err := rc.Runner.Run(ctx, "dpkg", "-s", pkg); err != nil {
					return false, nil
				}
			}
			return true, nil
		},
	}
}

func nodeRuntimeStep(rc *RunContext) engine.Step {
	nodeOK := func(ctx context.Context) (bool, error) {
		out, err := rc.Runner.Output(ctx, "node", "--version")
		if err != nil {
			return false, nil
		}
		return nodeVersionSupported(string(out)), nil
	}
	return engine.Step{
		ID:       "node-runtime",
		Label:    fmt.Sprintf("Node.js runtime (>= v%d)", minNodeMajor),
		Critical: true,
		Check:    nodeOK,
		Run: func(ctx context.Context) error {
			// NodeSource setup script then the package itself, as upstream
			// documents it.
			if err := rc.Runner.Stream(ctx, "bash", "-c",
				"curl -fsSL https://deb.nodesource.com/setup_22.x | bash -"); err != nil {
				return err
			}
			return rc.Runner.Stream(ctx, "apt-get", "install", "-y", "nodejs")
		},
		Verify: nodeOK,
	}
}

func nodeVersionSupported(version string) bool {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.SplitN(v, ".", 2)
	if len(parts) == 0 {
		return false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	return major >= minNodeMajor
}

func serviceUserStep(rc *RunContext) engine.Step {
	user := rc.Cfg.Service.User
	return engine.Step{
		ID:       "service-user",
		Label:    fmt.Sprintf("Service account '%s' exists", user),
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "id", "-u", user) == nil, nil
		},
		Run: func(ctx context.Context) error {
			return rc.Runner.Run(ctx, "useradd", "--create-home", "--shell", "/bin/bash", user)
		},
		Verify: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "id", "-u", user) == nil, nil
		},
	}
}

// secretStoreStep seeds the persisted secret store with the two credentials
// the gateway generates rather than the operator: its own API token and the
// keyring password. Existing values are never regenerated.
func secretStoreStep(rc *RunContext) engine.Step {
	path := rc.Cfg.Paths.EnvFile
	seeded := func() (bool, error) {
		if err := envfile.CheckMode(path); err != nil {
			return false, nil
		}
		store, err := envfile.Load(path)
		if err != nil {
			return false, err
		}
		_, hasToken := store.Get(KeyGatewayToken)
		_, hasKeyring := store.Get(KeyKeyringPassword)
		return hasToken && hasKeyring, nil
	}
	return engine.Step{
		ID:       "secret-store",
		Label:    "Secret store initialized",
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			return seeded()
		},
		Run: func(ctx context.Context) error {
			if err := os.MkdirAll(rc.Cfg.Paths.StateDir, 0o700); err != nil {
				return err
			}
			store, err := envfile.Load(path)
			if err != nil {
				return err
			}
			for _, key := range []string{KeyGatewayToken, KeyKeyringPassword} {
				if _, ok := store.Get(key); ok {
					continue
				}
				token, err := utils.GenerateToken(32)
				if err != nil {
					return err
				}
				store.Set(key, token)
			}
			return store.Save(path)
		},
		Verify: func(ctx context.Context) (bool, error) {
			return seeded()
		},
	}
}

func gatewayInstallStep(rc *RunContext) engine.Step {
	return engine.Step{
		ID:       "gateway-install",
		Label:    "OpenClaw gateway package installed",
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "npm", "ls", "-g", "openclaw", "--depth=0") == nil, nil
		},
		Run: func(ctx context.Context) error {
			return rc.Runner.Stream(ctx, "npm", "install", "-g", "openclaw@latest")
		},
		Verify: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "npm", "ls", "-g", "openclaw", "--depth=0") == nil, nil
		},
	}
}

func serviceInstallStep(rc *RunContext) engine.Step {
	return engine.Step{
		ID:       "service-install",
		Label:    fmt.Sprintf("Service definition registered (%s)", rc.Ctrl.Backend()),
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			return rc.Ctrl.Installed(ctx)
		},
		Run: func(ctx context.Context) error {
			_, err := rc.Ctrl.Install(ctx)
			return err
		},
		Verify: func(ctx context.Context) (bool, error) {
			return rc.Ctrl.Installed(ctx)
		},
	}
}

func firewallStep(rc *RunContext) engine.Step {
	active := func(ctx context.Context) (bool, error) {
		out, err := rc.Runner.Output(ctx, "ufw", "status")
		if err != nil {
			return false, err
		}
		return strings.Contains(string(out), "Status: active"), nil
	}
	return engine.Step{
		ID:    "firewall",
		Label: "Firewall active (SSH only inbound)",
		Check: active,
		Run: func(ctx context.Context) error {
			for _, args := range [][]string{
				{"default", "deny", "incoming"},
				{"default", "allow", "outgoing"},
				{"allow", "OpenSSH"},
				{"--force", "enable"},
			} {
				if err := rc.Runner.Run(ctx, "ufw", args...); err != nil {
					return err
				}
			}
			return nil
		},
		Verify: active,
	}
}

func vpnMeshStep(rc *RunContext) engine.Step {
	return engine.Step{
		ID:    "vpn-mesh",
		Label: "VPN mesh joined",
		Check: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "tailscale", "status") == nil, nil
		},
		Run: func(ctx context.Context) error {
			key := rc.Preload["TAILSCALE_AUTH_KEY"]
			if key == "" {
				key = os.Getenv("TAILSCALE_AUTH_KEY")
			}
			if key == "" {
				return fmt.Errorf("TAILSCALE_AUTH_KEY not set; preload it or join later via 'clawup configure'")
			}
			return rc.Runner.Run(ctx, "tailscale", "up", "--auth-key", key)
		},
		Verify: func(ctx context.Context) (bool, error) {
			return rc.Runner.Run(ctx, "tailscale", "status") == nil, nil
		},
	}
}

// backupTimerStep installs a user timer that runs 'clawup backup --prune'
// daily, keeping the 14-day retention in force without operator attention.
func backupTimerStep(rc *RunContext) engine.Step {
	serviceUnit := `[Unit]
Description=OpenClaw state backup

[Service]
Type=oneshot
ExecStart=clawup backup --prune
`
	timerUnit := `[Unit]
Description=Daily OpenClaw state backup

[Timer]
OnCalendar=daily
Persistent=true

[Install]
WantedBy=timers.target
`
	enabled := func(ctx context.Context) (bool, error) {
		out, _ := rc.Runner.Output(ctx, "systemctl", "--user", "is-enabled", "clawup-backup.timer")
		return strings.TrimSpace(string(out)) == "enabled", nil
	}
	return engine.Step{
		ID:    "backup-timer",
		Label: "Backup timer installed",
		Check: enabled,
		Run: func(ctx context.Context) error {
			if err := os.MkdirAll(rc.UserUnitDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(rc.UserUnitDir, "clawup-backup.service"), []byte(serviceUnit), 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(rc.UserUnitDir, "clawup-backup.timer"), []byte(timerUnit), 0o644); err != nil {
				return err
			}
			if err := rc.Runner.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
				return err
			}
			return rc.Runner.Run(ctx, "systemctl", "--user", "enable", "--now", "clawup-backup.timer")
		},
		Verify: enabled,
	}
}

func serviceStartStep(rc *RunContext) engine.Step {
	return engine.Step{
		ID:       "service-start",
		Label:    "Gateway running and healthy",
		Critical: true,
		Check: func(ctx context.Context) (bool, error) {
			snap, err := rc.Ctrl.Status(ctx)
			if err != nil {
				return false, err
			}
			return snap.State == service.StateRunning, nil
		},
		Run: func(ctx context.Context) error {
			return rc.Ctrl.Start(ctx)
		},
		Verify: func(ctx context.Context) (bool, error) {
			probe := service.HTTPProbe(rc.Cfg.Service.Port)
			state := service.AwaitHealthy(ctx, rc.Ctrl, probe, 60*time.Second, 2*time.Second)
			return state == service.StateRunning, nil
		},
	}
}
