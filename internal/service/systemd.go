package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
	"github.com/clawops/clawup/internal/models"
)

// SystemdUnit manages the gateway as an unprivileged user unit. The unit
// consumes the secret store through EnvironmentFile, so the service manager
// only ever reads the fully-written, 0600 file.
type SystemdUnit struct {
	cfg     config.ServiceConfig
	envFile string
	runner  host.CommandRunner

	// UnitDir is where the user unit file lives; defaults to the systemd
	// user-unit directory under the operator's home.
	UnitDir string
}

func NewSystemdUnit(cfg config.ServiceConfig, envFile string, runner host.CommandRunner) *SystemdUnit {
	home, _ := os.UserHomeDir()
	return &SystemdUnit{
		cfg:     cfg,
		envFile: envFile,
		runner:  runner,
		UnitDir: filepath.Join(home, ".config", "systemd", "user"),
	}
}

func (s *SystemdUnit) Backend() string { return "systemd" }

func (s *SystemdUnit) unitPath() string {
	return filepath.Join(s.UnitDir, s.cfg.Name+".service")
}

func (s *SystemdUnit) unitContent() string {
	return fmt.Sprintf(`[Unit]
Description=OpenClaw gateway (managed by clawup)
After=network-online.target

[Service]
ExecStart=%s
EnvironmentFile=%s
Restart=always
RestartSec=5

[Install]
WantedBy=default.target
`, s.cfg.Command, s.envFile)
}

func (s *SystemdUnit) Installed(ctx context.Context) (bool, error) {
	existing, err := os.ReadFile(s.unitPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// A unit file with stale content counts as not installed so Install
	// rewrites and reloads it.
	return string(existing) == s.unitContent(), nil
}

func (s *SystemdUnit) Install(ctx context.Context) (bool, error) {
	installed, err := s.Installed(ctx)
	if err == nil && installed {
		return false, nil
	}

	if err := os.MkdirAll(s.UnitDir, 0o755); err != nil {
		return false, &models.BackendError{Backend: "systemd", Operation: "install", Cause: err}
	}
	if err := os.WriteFile(s.unitPath(), []byte(s.unitContent()), 0o644); err != nil {
		return false, &models.BackendError{Backend: "systemd", Operation: "install", Cause: err}
	}
	if err := s.runner.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
		return false, &models.BackendError{Backend: "systemd", Operation: "install", Cause: err}
	}
	if err := s.runner.Run(ctx, "systemctl", "--user", "enable", s.cfg.Name); err != nil {
		return false, &models.BackendError{Backend: "systemd", Operation: "install", Cause: err}
	}
	return true, nil
}

func (s *SystemdUnit) Start(ctx context.Context) error {
	if err := s.runner.Run(ctx, "systemctl", "--user", "start", s.cfg.Name); err != nil {
		return &models.BackendError{Backend: "systemd", Operation: "start", Cause: err}
	}
	return nil
}

func (s *SystemdUnit) Stop(ctx context.Context) error {
	if err := s.runner.Run(ctx, "systemctl", "--user", "stop", s.cfg.Name); err != nil {
		return &models.BackendError{Backend: "systemd", Operation: "stop", Cause: err}
	}
	return nil
}

func (s *SystemdUnit) Restart(ctx context.Context) error {
	if err := s.runner.Run(ctx, "systemctl", "--user", "restart", s.cfg.Name); err != nil {
		return &models.BackendError{Backend: "systemd", Operation: "restart", Cause: err}
	}
	return nil
}

func (s *SystemdUnit) Status(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Name: s.cfg.Name, State: StateUnknown}

	// is-active exits nonzero for anything but "active"; the word on stdout
	// is still the authoritative answer.
	out, err := s.runner.Output(ctx, "systemctl", "--user", "is-active", s.cfg.Name)
	state := strings.TrimSpace(string(out))
	if err != nil && state == "" {
		return snap, &models.BackendError{Backend: "systemd", Operation: "status", Cause: err}
	}

	snap.Detail = state
	switch state {
	case "active":
		snap.State = StateRunning
	case "activating":
		snap.State = StateStarting
	case "inactive":
		snap.State = StateStopped
	case "failed":
		snap.State = StateFailed
	}
	return snap, nil
}

func (s *SystemdUnit) Logs(ctx context.Context, n int) (string, error) {
	out, err := s.runner.Output(ctx, "journalctl", "--user-unit", s.cfg.Name,
		"-n", fmt.Sprintf("%d", n), "--no-pager")
	if err != nil {
		return "", &models.BackendError{Backend: "systemd", Operation: "logs", Cause: err}
	}
	return string(out), nil
}
