package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"setup-dotfiles/internal/archive"
	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/probe"
)

// fontsDir is where per-user fonts live on Linux.
func (e *Env) fontsDir() string {
	return filepath.Join(e.Home, ".local", "share", "fonts")
}

// fontsStep installs release-hosted fonts on Linux. macOS gets its fonts from casks.
func fontsStep(cfg *config.Config, env *Env) executor.Step {
	fonts := cfg.FontsFor(env.Platform)
	refs := make([]probe.Ref, 0, len(fonts))
	for _, f := range fonts {
		refs = append(refs, probe.PathRef(filepath.Join(env.fontsDir(), f.Name)))
	}

	return executor.Step{
		Name:      StepFonts,
		Platforms: linuxOnly(),
		After:     []string{StepPackages},
		Probe:     env.Prober.All(refs...),
		Action: func(ctx context.Context, _ *executor.Session) error {
			installed := 0
			for _, f := range fonts {
				dir := filepath.Join(env.fontsDir(), f.Name)
				if env.FS.Exists(dir) {
					continue
				}
				if err := env.installFont(ctx, f, dir); err != nil {
					return fmt.Errorf("font %s: %w", f.Name, err)
				}
				installed++
			}
			if installed == 0 {
				return nil
			}
			return env.runChecked(ctx, "fc-cache", "-f")
		},
	}
}

// installFont downloads f's release asset and unpacks it into dir. The archive is
// extracted beside dir first so a failed extraction never leaves dir half-populated.
func (e *Env) installFont(ctx context.Context, f config.Font, dir string) error {
	if !archive.IsSupported(f.Asset) {
		return fmt.Errorf("unsupported asset %s", f.Asset)
	}
	url, err := e.Releases.AssetURL(ctx, f.Repo, f.Tag, f.Asset)
	if err != nil {
		return err
	}

	download := filepath.Join(e.TempDir, f.Asset)
	if err := e.Releases.Download(ctx, url, download); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(download); err != nil {
			logger.Debug("[DEBUG] Could not remove %s: %v\n", download, err)
		}
	}()

	staging := dir + ".tmp"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	files, err := archive.Extract(download, staging)
	if err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	logger.Debug("[DEBUG] Extracted %d files from %s\n", len(files), f.Asset)

	if err := e.FS.Rename(staging, dir); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("move %s into place: %w", f.Name, err)
	}
	logger.Info("[INFO] Installed font %s %s\n", f.Name, f.Tag)
	return nil
}
