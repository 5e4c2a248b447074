// Package provision declares the ordered step list that provisions a workstation.
//
// Every step pairs a read-only probe with an action that establishes exactly what the
// probe checks, so the whole list can be re-run safely: steps whose postcondition
// already holds are skipped.
package provision

import (
	"context"
	"os"
	"os/user"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/github"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/probe"
	"setup-dotfiles/internal/system"
)

// Step names. Order in Steps is significant; After encodes the hard dependencies.
const (
	StepHomebrew           = "homebrew"
	StepPackages           = "packages"
	StepZsh                = "zsh"
	StepDefaultShell       = "default-shell"
	StepDotfiles           = "dotfiles"
	StepServices           = "services"
	StepIntegrityProtected = "integrity-protection"
	StepWallpaper          = "wallpaper"
	StepFonts              = "fonts"
	StepDefaults           = "macos-defaults"
)

// ReleaseFetcher resolves and downloads release assets.
type ReleaseFetcher interface {
	AssetURL(ctx context.Context, repo, tag, name string) (string, error)
	Download(ctx context.Context, url, destPath string) error
}

// Env is everything the steps need from the host.
type Env struct {
	Platform platform.Platform
	Home     string
	User     string
	// Shell is $SHELL at startup, the last-resort answer for the login shell.
	Shell    string
	TempDir  string
	Runner   system.CommandRunner
	FS       system.FileSystem
	Prober   *probe.Prober
	Releases ReleaseFetcher
}

// NewEnv wires an Env to the real host.
func NewEnv(p platform.Platform) (*Env, error) {
	u, err := user.Current()
	if err != nil {
		return nil, err
	}
	runner := system.NewExecRunner()
	fs := system.NewOSFileSystem()
	return &Env{
		Platform: p,
		Home:     u.HomeDir,
		User:     u.Username,
		Shell:    os.Getenv("SHELL"),
		TempDir:  os.TempDir(),
		Runner:   runner,
		FS:       fs,
		Prober:   probe.New(p, fs, runner),
		Releases: github.NewClient(),
	}, nil
}

// Steps returns the full ordered step list for cfg.
func Steps(cfg *config.Config, env *Env) []executor.Step {
	return []executor.Step{
		homebrewStep(env),
		packagesStep(cfg, env),
		zshStep(env),
		defaultShellStep(env),
		dotfilesStep(cfg, env),
		servicesStep(cfg, env),
		integrityProtectionStep(cfg, env),
		wallpaperStep(cfg, env),
		fontsStep(cfg, env),
		defaultsStep(cfg, env),
	}
}

func macOnly() config.Platforms {
	return config.Platforms{platform.MacOS}
}

func linuxOnly() config.Platforms {
	return config.Platforms{platform.Ubuntu, platform.Arch}
}
