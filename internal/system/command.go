// Package system wraps the host collaborators the provisioning run depends on:
// external commands and the filesystem.
package system

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"setup-dotfiles/internal/logger"
)

// CommandResult is the outcome of one external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner invokes external commands and resolves binaries on PATH.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs real commands through os/exec.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command, blocking until it exits.
// A non-zero exit is reported through CommandResult.ExitCode, not as an error.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			logger.Debug("[DEBUG] %s exited with %d: %s\n", name, result.ExitCode, strings.TrimSpace(result.Stderr))
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// LookPath resolves a binary on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

var _ CommandRunner = (*ExecRunner)(nil)
