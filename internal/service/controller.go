// Package service controls the managed gateway process through a uniform
// interface, regardless of whether a container engine or a process supervisor
// sits underneath. The orchestration layer never knows which backend it has.
package service

import (
	"context"

	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
)

// State is the observed lifecycle state of the managed service.
type State string

const (
	StateUnknown  State = "unknown"
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateFailed   State = "failed"
)

// Snapshot is a point-in-time view of the managed service.
type Snapshot struct {
	Name   string
	State  State
	Detail string // backend-reported detail for humans
}

// Controller is the uniform control surface over the service backend.
type Controller interface {
	// Backend returns the backend identifier ("systemd", "docker").
	Backend() string

	// Installed reports whether the service definition is already registered.
	Installed(ctx context.Context) (bool, error)

	// Install idempotently registers the service definition; fresh reports
	// whether a new registration occurred.
	Install(ctx context.Context) (fresh bool, err error)

	// Start/Stop/Restart issue the backend command without blocking beyond it.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error

	// Status observes the current state.
	Status(ctx context.Context) (Snapshot, error)

	// Logs returns the most recent n log lines for troubleshooting.
	Logs(ctx context.Context, n int) (string, error)
}

// New builds the configured backend.
func New(cfg config.ServiceConfig, envFile string, runner host.CommandRunner) Controller {
	if cfg.Backend == "docker" {
		return NewDockerContainer(cfg, envFile, runner)
	}
	return NewSystemdUnit(cfg, envFile, runner)
}
