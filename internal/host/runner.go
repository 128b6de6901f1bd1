// Package host is the single boundary through which clawup shells out to the
// machine it manages. Everything above this package works against the
// CommandRunner interface so step logic stays testable without a real host.
package host

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner executes external commands on the managed host.
type CommandRunner interface {
	// Run executes a command and returns an error carrying combined output on
	// nonzero exit.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes a command and returns its stdout. On nonzero exit the
	// captured stdout is still returned alongside the error; commands like
	// `systemctl is-active` report their answer on stdout and their verdict
	// in the exit code.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Stream executes a command and forwards its output line by line to the
	// terminal. Used for long package-manager style operations.
	Stream(ctx context.Context, name string, args ...string) error

	// LookPath reports whether a binary is available on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands via os/exec with optional extra environment.
type ExecRunner struct {
	Env []string // appended to the ambient environment
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.Env...)
	return cmd
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s failed: %w\nOutput: %s", name, strings.Join(args, " "), err, string(bytes.TrimSpace(output)))
	}
	return nil
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = bytes.TrimSpace(ee.Stderr)
		}
		return out, fmt.Errorf("%s %s failed: %w\nOutput: %s", name, strings.Join(args, " "), err, string(stderr))
	}
	return out, nil
}

// Stream forwards stdout and stderr to the user as the command runs.
func (r *ExecRunner) Stream(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
	}()
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			fmt.Fprintf(os.Stderr, "%s\n", scanner.Text())
		}
	}()

	return cmd.Wait()
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
