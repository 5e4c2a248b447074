package provision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/probe"
)

// BackupSuffix is appended to anything moved out of the way of a dotfile symlink.
const BackupSuffix = ".backup"

// dotfilesStep links every dotfile from the source tree into $HOME.
// The probe checks symlink-ness and destination, not mere existence: a real
// directory at the target is backed up before linking.
func dotfilesStep(cfg *config.Config, env *Env) executor.Step {
	links := cfg.LinksFor(env.Platform)
	refs := make([]probe.Ref, 0, len(links))
	for _, l := range links {
		refs = append(refs, probe.SymlinkRef(l.Target, l.Source))
	}

	return executor.Step{
		Name:  StepDotfiles,
		Probe: env.Prober.All(refs...),
		Action: func(ctx context.Context, s *executor.Session) error {
			var errs []error
			for _, l := range links {
				if env.Prober.IsSatisfied(ctx, probe.SymlinkRef(l.Target, l.Source)) {
					continue
				}
				if err := env.link(s, l); err != nil {
					logger.Error("[ERROR] Failed to link %s: %v\n", l.Target, err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
}

// link points l.Target at l.Source, moving whatever is in the way.
func (e *Env) link(s *executor.Session, l config.Link) error {
	if !e.FS.Exists(l.Source) {
		s.Manual("Dotfile source %s is missing; link %s once it exists", l.Source, l.Target)
		return nil
	}
	if err := e.FS.MkdirAll(filepath.Dir(l.Target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(l.Target), err)
	}

	if isLink, old := e.FS.IsSymlink(l.Target); isLink {
		if err := e.FS.Remove(l.Target); err != nil {
			return fmt.Errorf("remove stale symlink %s: %w", l.Target, err)
		}
		s.Remediated("replaced symlink %s (was -> %s)", l.Target, old)
	} else if e.FS.Exists(l.Target) {
		backup := l.Target + BackupSuffix
		if e.FS.Exists(backup) {
			return fmt.Errorf("%s is in the way and %s already exists", l.Target, backup)
		}
		if err := e.FS.Rename(l.Target, backup); err != nil {
			return fmt.Errorf("back up %s: %w", l.Target, err)
		}
		logger.Warn("[WARN] Moved existing %s to %s\n", l.Target, backup)
		s.Remediated("backed up %s to %s", l.Target, backup)
	}

	if err := e.FS.CreateSymlink(l.Source, l.Target); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", l.Target, l.Source, err)
	}
	logger.Info("[INFO] Linked %s -> %s\n", l.Target, l.Source)
	return nil
}
