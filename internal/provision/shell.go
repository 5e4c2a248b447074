package provision

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/probe"
)

// zshStep makes sure zsh is installed.
func zshStep(env *Env) executor.Step {
	return executor.Step{
		Name:     StepZsh,
		After:    []string{StepPackages},
		Critical: true,
		Probe:    env.Prober.All(probe.CommandRef("zsh")),
		Action: func(ctx context.Context, _ *executor.Session) error {
			return env.install(ctx, nativePackage(env.Platform, "zsh"))
		},
	}
}

// defaultShellStep makes zsh the login shell. chsh may need a password or an
// /etc/shells entry, so problems become manual steps rather than failures.
func defaultShellStep(env *Env) executor.Step {
	return executor.Step{
		Name:  StepDefaultShell,
		After: []string{StepZsh},
		Probe: func(ctx context.Context) bool {
			return filepath.Base(env.loginShell(ctx)) == "zsh"
		},
		Action: func(ctx context.Context, s *executor.Session) error {
			zsh, err := env.Runner.LookPath("zsh")
			if err != nil {
				return fmt.Errorf("zsh not on PATH: %w", err)
			}

			if env.Platform.IsLinux() && !env.listedInShells(zsh) {
				logger.Warn("[WARN] %s is not listed in /etc/shells\n", zsh)
				s.Manual("Add %s to /etc/shells, then run: chsh -s %s", zsh, zsh)
				return nil
			}

			args := []string{"-s", zsh}
			cmd := "chsh"
			if env.Platform.IsLinux() {
				cmd = "sudo"
				args = []string{"chsh", "-s", zsh, env.User}
			}
			res, err := env.Runner.Run(ctx, cmd, args...)
			if err == nil && !res.Success() {
				err = fmt.Errorf("exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
			}
			if err != nil {
				logger.Warn("[WARN] Could not change the login shell: %v\n", err)
				s.Manual("Make zsh your login shell: chsh -s %s", zsh)
				return nil
			}
			logger.Info("[INFO] Login shell set to %s\n", zsh)
			return nil
		},
	}
}

// loginShell returns the user's login shell from the account database,
// falling back to $SHELL as captured at startup.
func (e *Env) loginShell(ctx context.Context) string {
	switch e.Platform {
	case platform.MacOS:
		res, err := e.Runner.Run(ctx, "dscl", ".", "-read", "/Users/"+e.User, "UserShell")
		if err == nil && res.Success() {
			if shell := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(res.Stdout), "UserShell:")); shell != "" {
				return shell
			}
		}
	case platform.Ubuntu, platform.Arch:
		res, err := e.Runner.Run(ctx, "getent", "passwd", e.User)
		if err == nil && res.Success() {
			fields := strings.Split(strings.TrimSpace(res.Stdout), ":")
			if len(fields) >= 7 && fields[6] != "" {
				return fields[6]
			}
		}
	}
	logger.Debug("[DEBUG] Falling back to $SHELL=%q for the login shell\n", e.Shell)
	return e.Shell
}

func (e *Env) listedInShells(shell string) bool {
	data, err := e.FS.ReadFile("/etc/shells")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == shell {
			return true
		}
	}
	return false
}
