// Package probe answers read-only "is this already in place?" questions about the host.
package probe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/system"
)

// Kind is the kind of resource a Ref names.
type Kind int

const (
	// Command is a binary resolvable on PATH.
	Command Kind = iota
	// Path is anything present at a filesystem path (symlinks are not followed).
	Path
	// Symlink is a symlink, optionally pointing at a specific target.
	Symlink
	// Package is a package installed through the host package manager.
	Package
)

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Path:
		return "path"
	case Symlink:
		return "symlink"
	case Package:
		return "package"
	default:
		return "unknown"
	}
}

// Ref names a resource to probe.
type Ref struct {
	Kind Kind
	// Name is the command name, the path, or the symlink location.
	Name string
	// Target is the expected symlink destination; empty accepts any target.
	Target string
	// Package is set for Package refs.
	Package config.PackageSpec
}

// CommandRef refers to a binary on PATH.
func CommandRef(name string) Ref {
	return Ref{Kind: Command, Name: name}
}

// PathRef refers to a filesystem path.
func PathRef(path string) Ref {
	return Ref{Kind: Path, Name: path}
}

// SymlinkRef refers to a symlink at link pointing at target.
func SymlinkRef(link, target string) Ref {
	return Ref{Kind: Symlink, Name: link, Target: target}
}

// PackageRef refers to an installed package.
func PackageRef(pkg config.PackageSpec) Ref {
	return Ref{Kind: Package, Name: pkg.Name, Package: pkg}
}

func (r Ref) String() string {
	if r.Kind == Symlink && r.Target != "" {
		return fmt.Sprintf("symlink %s -> %s", r.Name, r.Target)
	}
	return fmt.Sprintf("%s %s", r.Kind, r.Name)
}

// Prober checks Refs against the host. It never mutates state.
type Prober struct {
	platform platform.Platform
	fs       system.FileSystem
	runner   system.CommandRunner
}

// New creates a Prober for platform p.
func New(p platform.Platform, fs system.FileSystem, runner system.CommandRunner) *Prober {
	return &Prober{platform: p, fs: fs, runner: runner}
}

// IsSatisfied reports whether ref is already in place. Probe errors count as "not satisfied".
func (p *Prober) IsSatisfied(ctx context.Context, ref Ref) bool {
	ok := p.check(ctx, ref)
	logger.Debug("[DEBUG] probe %s: %t\n", ref, ok)
	return ok
}

func (p *Prober) check(ctx context.Context, ref Ref) bool {
	switch ref.Kind {
	case Command:
		_, err := p.runner.LookPath(ref.Name)
		return err == nil
	case Path:
		return p.fs.Exists(ref.Name)
	case Symlink:
		isLink, target := p.fs.IsSymlink(ref.Name)
		if !isLink {
			return false
		}
		return ref.Target == "" || filepath.Clean(target) == filepath.Clean(ref.Target)
	case Package:
		return p.packageInstalled(ctx, ref.Package)
	default:
		return false
	}
}

// All returns a probe that holds only when every ref is satisfied.
// With no refs it is vacuously satisfied.
func (p *Prober) All(refs ...Ref) func(context.Context) bool {
	return func(ctx context.Context) bool {
		for _, ref := range refs {
			if !p.IsSatisfied(ctx, ref) {
				return false
			}
		}
		return true
	}
}

// Missing returns the refs that are not satisfied, in input order.
func (p *Prober) Missing(ctx context.Context, refs ...Ref) []Ref {
	var out []Ref
	for _, ref := range refs {
		if !p.IsSatisfied(ctx, ref) {
			out = append(out, ref)
		}
	}
	return out
}

// packageInstalled asks the host package manager about pkg.
func (p *Prober) packageInstalled(ctx context.Context, pkg config.PackageSpec) bool {
	var (
		res system.CommandResult
		err error
	)
	switch {
	case pkg.Kind == config.KindFormula:
		res, err = p.runner.Run(ctx, "brew", "list", "--formula", "--versions", pkg.Name)
	case pkg.Kind == config.KindCask:
		res, err = p.runner.Run(ctx, "brew", "list", "--cask", "--versions", pkg.Name)
	case p.platform == platform.Ubuntu:
		res, err = p.runner.Run(ctx, "dpkg-query", "-W", "-f=${db:Status-Status}", pkg.Name)
		if err == nil && res.Success() {
			return strings.TrimSpace(res.Stdout) == "installed"
		}
	case p.platform == platform.Arch:
		res, err = p.runner.Run(ctx, "pacman", "-Qi", pkg.Name)
	default:
		return false
	}
	if err != nil {
		logger.Debug("[DEBUG] package query for %s failed: %v\n", pkg.Name, err)
		return false
	}
	return res.Success()
}
