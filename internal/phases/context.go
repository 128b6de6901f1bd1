// Package phases wires the step engine, secret resolution, and service
// control into the two operator-facing workflows: bootstrap and configure.
package phases

import (
	"os"
	"path/filepath"

	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
	"github.com/clawops/clawup/internal/secretmgr"
	"github.com/clawops/clawup/internal/secrets"
	"github.com/clawops/clawup/internal/service"
	"github.com/clawops/clawup/internal/ui"
)

// RunContext carries everything a phase needs, built once per run. Steps
// receive it explicitly; there is no ambient global state.
type RunContext struct {
	Cfg     *config.Config
	Runner  host.CommandRunner
	Printer *ui.Console
	Ctrl    service.Controller

	// Preload holds --set KEY=VALUE overrides; they outrank the environment.
	Preload map[string]string

	// NonInteractive disables the secret prompt; required secrets must then
	// come from preload, environment, or the secret manager.
	NonInteractive bool

	// UserUnitDir is where per-user systemd units (backup timer) are written.
	UserUnitDir string
}

// NewRunContext assembles the default production wiring.
func NewRunContext(cfg *config.Config, preload map[string]string, nonInteractive bool) *RunContext {
	runner := host.NewExecRunner()
	home, _ := os.UserHomeDir()
	return &RunContext{
		Cfg:            cfg,
		Runner:         runner,
		Printer:        ui.NewConsole(),
		Ctrl:           service.New(cfg.Service, cfg.Paths.EnvFile, runner),
		Preload:        preload,
		NonInteractive: nonInteractive,
		UserUnitDir:    filepath.Join(home, ".config", "systemd", "user"),
	}
}

// NewResolver builds the secret resolver for this run. The secret manager
// client is constructed lazily here because its own credential may be one of
// the secrets being resolved; an unusable manager simply drops out of the
// chain.
func (rc *RunContext) NewResolver() *secrets.Resolver {
	r := &secrets.Resolver{Preload: rc.Preload}
	if mgr, err := secretmgr.New(rc.Cfg.SecretManager, rc.Runner); err == nil {
		r.Manager = mgr
	}
	if !rc.NonInteractive {
		r.Prompt = secrets.SurveyPrompt
	}
	return r
}
