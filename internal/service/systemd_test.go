package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawops/clawup/internal/config"
)

// fakeRunner scripts command results by joined argv.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) key(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	k := f.key(name, args)
	f.calls = append(f.calls, k)
	return f.errs[k]
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	k := f.key(name, args)
	f.calls = append(f.calls, k)
	return []byte(f.outputs[k]), f.errs[k]
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args ...string) error {
	return f.Run(ctx, name, args...)
}

func (f *fakeRunner) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func (f *fakeRunner) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func testServiceConfig() config.ServiceConfig {
	return config.ServiceConfig{
		Backend: "systemd",
		Name:    "openclaw-gateway",
		Command: "openclaw gateway run",
		Port:    18789,
	}
}

func newTestUnit(t *testing.T, runner *fakeRunner) *SystemdUnit {
	t.Helper()
	unit := NewSystemdUnit(testServiceConfig(), "/home/openclaw/.openclaw/gateway.env", runner)
	unit.UnitDir = t.TempDir()
	return unit
}

func TestSystemdInstallWritesUnitAndReloads(t *testing.T) {
	runner := &fakeRunner{}
	unit := newTestUnit(t, runner)

	fresh, err := unit.Install(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, runner.called("systemctl --user daemon-reload"))
	assert.True(t, runner.called("systemctl --user enable openclaw-gateway"))

	installed, err := unit.Installed(context.Background())
	require.NoError(t, err)
	assert.True(t, installed)
}

func TestSystemdInstallIsIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	unit := newTestUnit(t, runner)

	_, err := unit.Install(context.Background())
	require.NoError(t, err)
	callsAfterFirst := len(runner.calls)

	fresh, err := unit.Install(context.Background())
	require.NoError(t, err)
	assert.False(t, fresh, "second install must report an existing registration")
	assert.Equal(t, callsAfterFirst, len(runner.calls), "no backend commands on a no-op install")
}

func TestSystemdInstallRewritesStaleUnit(t *testing.T) {
	runner := &fakeRunner{}
	unit := newTestUnit(t, runner)

	_, err := unit.Install(context.Background())
	require.NoError(t, err)

	// Config change makes the existing unit stale.
	unit.cfg.Command = "openclaw gateway run --verbose"
	fresh, err := unit.Install(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestSystemdStatusMapping(t *testing.T) {
	cases := []struct {
		stdout string
		err    error
		want   State
	}{
		{"active\n", nil, StateRunning},
		{"activating\n", errors.New("exit status 3"), StateStarting},
		{"inactive\n", errors.New("exit status 3"), StateStopped},
		{"failed\n", errors.New("exit status 3"), StateFailed},
	}

	for _, tc := range cases {
		runner := &fakeRunner{
			outputs: map[string]string{"systemctl --user is-active openclaw-gateway": tc.stdout},
			errs:    map[string]error{"systemctl --user is-active openclaw-gateway": tc.err},
		}
		unit := newTestUnit(t, runner)

		snap, err := unit.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.want, snap.State, "stdout %q", tc.stdout)
	}
}

func TestSystemdLogsUsesJournal(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"journalctl --user-unit openclaw-gateway -n 50 --no-pager": "line1\nline2\n",
	}}
	unit := newTestUnit(t, runner)

	logs, err := unit.Logs(context.Background(), 50)
	require.NoError(t, err)
	assert.Contains(t, logs, "line2")
}

// fakeController drives AwaitHealthy without a backend.
type fakeController struct {
	states []State
	idx    int
}

func (f *fakeController) Backend() string                              { return "fake" }
func (f *fakeController) Installed(ctx context.Context) (bool, error)  { return true, nil }
func (f *fakeController) Install(ctx context.Context) (bool, error)    { return false, nil }
func (f *fakeController) Start(ctx context.Context) error              { return nil }
func (f *fakeController) Stop(ctx context.Context) error               { return nil }
func (f *fakeController) Restart(ctx context.Context) error            { return nil }
func (f *fakeController) Logs(ctx context.Context, n int) (string, error) { return "", nil }

func (f *fakeController) Status(ctx context.Context) (Snapshot, error) {
	s := f.states[f.idx]
	if f.idx < len(f.states)-1 {
		f.idx++
	}
	return Snapshot{Name: "fake", State: s}, nil
}

func TestAwaitHealthyReachesRunning(t *testing.T) {
	ctrl := &fakeController{states: []State{StateStarting, StateStarting, StateRunning}}
	probe := func(ctx context.Context) error { return nil }

	state := AwaitHealthy(context.Background(), ctrl, probe, time.Second, time.Millisecond)
	assert.Equal(t, StateRunning, state)
}

func TestAwaitHealthyTimesOutToFailed(t *testing.T) {
	ctrl := &fakeController{states: []State{StateStarting}}

	state := AwaitHealthy(context.Background(), ctrl, nil, 20*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, StateFailed, state)
}

func TestAwaitHealthyFailedStateIsTerminal(t *testing.T) {
	ctrl := &fakeController{states: []State{StateStarting, StateFailed}}

	state := AwaitHealthy(context.Background(), ctrl, nil, time.Second, time.Millisecond)
	assert.Equal(t, StateFailed, state)
}

func TestAwaitHealthyProbeMustAlsoPass(t *testing.T) {
	ctrl := &fakeController{states: []State{StateRunning}}
	probe := func(ctx context.Context) error { return errors.New("connection refused") }

	state := AwaitHealthy(context.Background(), ctrl, probe, 20*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, StateFailed, state, "backend-active alone is not healthy")
}
