package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/host"
	"github.com/clawops/clawup/internal/models"
)

// DockerContainer manages the gateway as a container. The secret store is
// handed over with --env-file at creation time, so secrets never appear in
// the container's command line or image.
type DockerContainer struct {
	cfg     config.ServiceConfig
	envFile string
	runner  host.CommandRunner
}

func NewDockerContainer(cfg config.ServiceConfig, envFile string, runner host.CommandRunner) *DockerContainer {
	return &DockerContainer{cfg: cfg, envFile: envFile, runner: runner}
}

func (d *DockerContainer) Backend() string { return "docker" }

func (d *DockerContainer) Installed(ctx context.Context) (bool, error) {
	err := d.runner.Run(ctx, "docker", "inspect", "--type", "container", d.cfg.Name)
	return err == nil, nil
}

func (d *DockerContainer) Install(ctx context.Context) (bool, error) {
	installed, err := d.Installed(ctx)
	if err == nil && installed {
		return false, nil
	}

	if err := d.runner.Stream(ctx, "docker", "pull", d.cfg.Image); err != nil {
		return false, &models.BackendError{Backend: "docker", Operation: "install", Cause: err}
	}
	args := []string{
		"create",
		"--name", d.cfg.Name,
		"--env-file", d.envFile,
		"--restart", "unless-stopped",
		"-p", fmt.Sprintf("127.0.0.1:%d:%d", d.cfg.Port, d.cfg.Port),
		d.cfg.Image,
	}
	if err := d.runner.Run(ctx, "docker", args...); err != nil {
		return false, &models.BackendError{Backend: "docker", Operation: "install", Cause: err}
	}
	return true, nil
}

func (d *DockerContainer) Start(ctx context.Context) error {
	if err := d.runner.Run(ctx, "docker", "start", d.cfg.Name); err != nil {
		return &models.BackendError{Backend: "docker", Operation: "start", Cause: err}
	}
	return nil
}

func (d *DockerContainer) Stop(ctx context.Context) error {
	if err := d.runner.Run(ctx, "docker", "stop", d.cfg.Name); err != nil {
		return &models.BackendError{Backend: "docker", Operation: "stop", Cause: err}
	}
	return nil
}

// Restart recreates the container so a changed env file is picked up; docker
// only reads --env-file at creation.
func (d *DockerContainer) Restart(ctx context.Context) error {
	_ = d.runner.Run(ctx, "docker", "rm", "-f", d.cfg.Name)
	if _, err := d.Install(ctx); err != nil {
		return &models.BackendError{Backend: "docker", Operation: "restart", Cause: err}
	}
	return d.Start(ctx)
}

func (d *DockerContainer) Status(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Name: d.cfg.Name, State: StateUnknown}

	out, err := d.runner.Output(ctx, "docker", "inspect", "-f", "{{.State.Status}}", d.cfg.Name)
	state := strings.TrimSpace(string(out))
	if err != nil {
		if strings.Contains(err.Error(), "No such") {
			snap.State = StateStopped
			snap.Detail = "container not created"
			return snap, nil
		}
		return snap, &models.BackendError{Backend: "docker", Operation: "status", Cause: err}
	}

	snap.Detail = state
	switch state {
	case "running":
		snap.State = StateRunning
	case "created", "exited":
		snap.State = StateStopped
	case "restarting":
		snap.State = StateStarting
	case "dead":
		snap.State = StateFailed
	}
	return snap, nil
}

func (d *DockerContainer) Logs(ctx context.Context, n int) (string, error) {
	out, err := d.runner.Output(ctx, "docker", "logs", "--tail", fmt.Sprintf("%d", n), d.cfg.Name)
	if err != nil {
		return "", &models.BackendError{Backend: "docker", Operation: "logs", Cause: err}
	}
	return string(out), nil
}
