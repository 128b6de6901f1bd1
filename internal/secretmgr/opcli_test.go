package secretmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts command output by joined argv.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
	missing []string // binaries absent from PATH
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
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[k]), nil
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args ...string) error {
	return f.Run(ctx, name, args...)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	for _, m := range f.missing {
		if m == name {
			return "", fmt.Errorf("%s: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

func TestOpCLIListVaults(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"op vault list --format=json": `[{"id":"v1","name":"OpenClaw"},{"id":"v2","name":"Personal"}]`,
	}}

	vaults, err := NewOpCLI(runner, "OpenClaw").ListVaults(context.Background())
	require.NoError(t, err)
	require.Len(t, vaults, 2)
	assert.Equal(t, "OpenClaw", vaults[0].Name)
}

func TestOpCLIReadItem(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"op read op://OpenClaw/telegram-bot/credential": "123456:bot-token\n",
	}}

	v, err := NewOpCLI(runner, "OpenClaw").ReadItem(context.Background(), "telegram-bot", "credential")
	require.NoError(t, err)
	assert.Equal(t, "123456:bot-token", v, "value must be trimmed")
}

func TestOpCLIReadItemNotFound(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"op read op://OpenClaw/nope/credential": errors.New(`op read failed: exit status 1` + "\n" + `Output: "nope" isn't an item in the "OpenClaw" vault`),
	}}

	_, err := NewOpCLI(runner, "OpenClaw").ReadItem(context.Background(), "nope", "credential")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestOpCLIAvailable(t *testing.T) {
	runner := &fakeRunner{}
	assert.True(t, NewOpCLI(runner, "OpenClaw").Available(context.Background()))

	runner = &fakeRunner{missing: []string{"op"}}
	assert.False(t, NewOpCLI(runner, "OpenClaw").Available(context.Background()), "missing binary means unavailable")

	runner = &fakeRunner{errs: map[string]error{"op whoami": errors.New("not signed in")}}
	assert.False(t, NewOpCLI(runner, "OpenClaw").Available(context.Background()))
}
