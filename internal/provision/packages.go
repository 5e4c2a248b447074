package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/probe"
)

const homebrewInstallURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// homebrewPrefixes are where the installer puts brew when it is not yet on PATH.
var homebrewPrefixes = []string{"/opt/homebrew/bin", "/usr/local/bin"}

// installCommands maps each platform to the command line installing one package.
var installCommands = map[platform.Platform]func(pkg config.PackageSpec) []string{
	platform.MacOS: func(pkg config.PackageSpec) []string {
		if pkg.Kind == config.KindCask {
			return []string{"brew", "install", "--cask", pkg.Name}
		}
		return []string{"brew", "install", pkg.Name}
	},
	platform.Ubuntu: func(pkg config.PackageSpec) []string {
		return []string{"sudo", "apt-get", "install", "-y", pkg.Name}
	},
	platform.Arch: func(pkg config.PackageSpec) []string {
		return []string{"sudo", "pacman", "-S", "--noconfirm", "--needed", pkg.Name}
	},
}

// install installs one package through the host package manager.
func (e *Env) install(ctx context.Context, pkg config.PackageSpec) error {
	build, ok := installCommands[e.Platform]
	if !ok {
		return fmt.Errorf("no package manager for %s", e.Platform)
	}
	argv := build(pkg)
	logger.Info("[INFO] Installing %s...\n", pkg.Name)

	res, err := e.Runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	if !res.Success() {
		return fmt.Errorf("%s failed (exit %d): %s", strings.Join(argv, " "), res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	logger.Info("[INFO] Installed %s\n", pkg.Name)
	return nil
}

// nativePackage is the package spec a single tool is installed from on p.
func nativePackage(p platform.Platform, name string) config.PackageSpec {
	if p == platform.MacOS {
		return config.PackageSpec{Name: name, Kind: config.KindFormula}
	}
	return config.PackageSpec{Name: name, Kind: config.KindSystem}
}

// homebrewStep bootstraps the macOS package manager; everything after it assumes brew.
func homebrewStep(env *Env) executor.Step {
	return executor.Step{
		Name:      StepHomebrew,
		Platforms: macOnly(),
		Critical:  true,
		Probe:     env.Prober.All(probe.CommandRef("brew")),
		Action: func(ctx context.Context, s *executor.Session) error {
			script := fmt.Sprintf(`NONINTERACTIVE=1 /bin/bash -c "$(curl -fsSL %s)"`, homebrewInstallURL)
			res, err := env.Runner.Run(ctx, "/bin/bash", "-c", script)
			if err != nil {
				return fmt.Errorf("homebrew installer: %w", err)
			}
			if !res.Success() {
				return fmt.Errorf("homebrew installer failed (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr))
			}

			if _, err := env.Runner.LookPath("brew"); err == nil {
				return nil
			}
			for _, dir := range homebrewPrefixes {
				if env.FS.Exists(filepath.Join(dir, "brew")) {
					// Later steps in this process need brew on PATH.
					if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH")); err != nil {
						return err
					}
					s.Manual("Add Homebrew to your shell: echo 'eval \"$(%s/brew shellenv)\"' >> ~/.zprofile", dir)
					return nil
				}
			}
			return fmt.Errorf("homebrew installed but brew was not found on PATH or in %s", strings.Join(homebrewPrefixes, ", "))
		},
	}
}

// packagesStep installs the platform's package table, probing each package individually.
func packagesStep(cfg *config.Config, env *Env) executor.Step {
	pkgs := cfg.PackagesFor(env.Platform)
	refs := make([]probe.Ref, 0, len(pkgs))
	for _, pkg := range pkgs {
		refs = append(refs, probe.PackageRef(pkg))
	}

	return executor.Step{
		Name:     StepPackages,
		After:    []string{StepHomebrew},
		Critical: true,
		Probe:    env.Prober.All(refs...),
		Action: func(ctx context.Context, _ *executor.Session) error {
			missing := env.Prober.Missing(ctx, refs...)
			if len(missing) == 0 {
				return nil
			}

			if env.Platform == platform.Ubuntu {
				res, err := env.Runner.Run(ctx, "sudo", "apt-get", "update")
				if err != nil {
					return fmt.Errorf("apt-get update: %w", err)
				}
				if !res.Success() {
					return fmt.Errorf("apt-get update failed (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr))
				}
			}

			for _, ref := range missing {
				if err := env.install(ctx, ref.Package); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
