package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawops/clawup/internal/config"
)

func dockerTestConfig() config.ServiceConfig {
	return config.ServiceConfig{
		Backend: "docker",
		Name:    "openclaw-gateway",
		Image:   "openclaw/gateway:latest",
		Port:    18789,
	}
}

func TestDockerInstallPullsAndCreates(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"docker inspect --type container openclaw-gateway": errors.New("No such container"),
	}}
	d := NewDockerContainer(dockerTestConfig(), "/etc/openclaw/gateway.env", runner)

	fresh, err := d.Install(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, runner.called("docker pull openclaw/gateway:latest"))
	assert.True(t, runner.called("docker create --name openclaw-gateway --env-file /etc/openclaw/gateway.env"))
}

func TestDockerInstallSkipsExistingContainer(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDockerContainer(dockerTestConfig(), "/etc/openclaw/gateway.env", runner)

	fresh, err := d.Install(context.Background())
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.False(t, runner.called("docker pull"), "no pull when the container already exists")
}

func TestDockerStatusMapping(t *testing.T) {
	cases := []struct {
		stdout string
		want   State
	}{
		{"running\n", StateRunning},
		{"exited\n", StateStopped},
		{"created\n", StateStopped},
		{"restarting\n", StateStarting},
		{"dead\n", StateFailed},
	}

	for _, tc := range cases {
		runner := &fakeRunner{outputs: map[string]string{
			"docker inspect -f {{.State.Status}} openclaw-gateway": tc.stdout,
		}}
		d := NewDockerContainer(dockerTestConfig(), "/etc/openclaw/gateway.env", runner)

		snap, err := d.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.want, snap.State, "stdout %q", tc.stdout)
	}
}

func TestDockerStatusMissingContainerIsStopped(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"docker inspect -f {{.State.Status}} openclaw-gateway": errors.New("Error: No such object: openclaw-gateway"),
	}}
	d := NewDockerContainer(dockerTestConfig(), "/etc/openclaw/gateway.env", runner)

	snap, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateStopped, snap.State)
}

func TestNewSelectsBackend(t *testing.T) {
	runner := &fakeRunner{}
	assert.Equal(t, "docker", New(dockerTestConfig(), "/e", runner).Backend())
	assert.Equal(t, "systemd", New(testServiceConfig(), "/e", runner).Backend())
}
