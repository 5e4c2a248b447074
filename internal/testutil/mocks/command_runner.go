// Package mocks provides test doubles for the system package.
package mocks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"setup-dotfiles/internal/system"
)

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// String renders the call the way it would be typed.
func (c CommandCall) String() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// CommandRunner is a thread-safe test double for system.CommandRunner.
type CommandRunner struct {
	mu      sync.RWMutex
	results map[string]system.CommandResult
	errors  map[string]error
	hooks   map[string]func()
	paths   map[string]string
	calls   []CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results: make(map[string]system.CommandResult),
		errors:  make(map[string]error),
		hooks:   make(map[string]func()),
		paths:   make(map[string]string),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result system.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// AddHook registers a side effect run after the command is invoked,
// e.g. putting a freshly installed binary on the simulated PATH.
func (m *CommandRunner) AddHook(command string, args []string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[buildKey(command, args)] = fn
}

// SetPath makes LookPath resolve name to path.
func (m *CommandRunner) SetPath(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[name] = path
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (system.CommandResult, error) {
	key := buildKey(command, args)

	m.mu.Lock()
	m.calls = append(m.calls, CommandCall{Command: command, Args: args})
	hook := m.hooks[key]
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if hasErr {
		return system.CommandResult{}, err
	}
	if hasResult {
		return result, nil
	}
	return system.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
}

// LookPath resolves names registered with SetPath.
func (m *CommandRunner) LookPath(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Called reports whether the exact command line was invoked.
func (m *CommandRunner) Called(command string, args ...string) bool {
	key := buildKey(command, args)
	for _, c := range m.Calls() {
		if buildKey(c.Command, c.Args) == key {
			return true
		}
	}
	return false
}

// ResetCalls forgets recorded invocations but keeps registered results.
func (m *CommandRunner) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

var _ system.CommandRunner = (*CommandRunner)(nil)
