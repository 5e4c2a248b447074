package provision

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
)

// servicesStep keeps the window-manager companions running across reboots via brew services.
func servicesStep(cfg *config.Config, env *Env) executor.Step {
	services := cfg.ServicesFor(env.Platform)

	return executor.Step{
		Name:      StepServices,
		Platforms: macOnly(),
		After:     []string{StepPackages},
		Probe: func(ctx context.Context) bool {
			started, err := env.startedServices(ctx)
			if err != nil {
				return false
			}
			for _, svc := range services {
				if !started[svc.Name] {
					return false
				}
			}
			return true
		},
		Action: func(ctx context.Context, s *executor.Session) error {
			started, err := env.startedServices(ctx)
			if err != nil {
				return err
			}
			for _, svc := range services {
				if started[svc.Name] {
					continue
				}
				res, err := env.Runner.Run(ctx, "brew", "services", "start", svc.Name)
				if err != nil {
					return fmt.Errorf("brew services start %s: %w", svc.Name, err)
				}
				if !res.Success() {
					return fmt.Errorf("brew services start %s failed: %s", svc.Name, strings.TrimSpace(res.Stderr))
				}
				logger.Info("[INFO] Started service %s\n", svc.Name)
				s.Manual("Grant %s Accessibility access in System Settings > Privacy & Security", svc.Name)
			}
			return nil
		},
	}
}

// startedServices parses `brew services list` into the set of started services.
func (e *Env) startedServices(ctx context.Context) (map[string]bool, error) {
	res, err := e.Runner.Run(ctx, "brew", "services", "list")
	if err != nil {
		return nil, fmt.Errorf("brew services list: %w", err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("brew services list failed: %s", strings.TrimSpace(res.Stderr))
	}
	started := make(map[string]bool)
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "started" {
			started[fields[0]] = true
		}
	}
	return started, nil
}

// integrityProtectionStep reports, but never changes, System Integrity Protection.
// The window manager's scripting addition needs it partially disabled, which only
// a human in Recovery mode can do.
func integrityProtectionStep(cfg *config.Config, env *Env) executor.Step {
	return executor.Step{
		Name:      StepIntegrityProtected,
		Platforms: macOnly(),
		After:     []string{StepServices},
		Probe: func(ctx context.Context) bool {
			if len(cfg.ServicesFor(env.Platform)) == 0 {
				return true
			}
			res, err := env.Runner.Run(ctx, "csrutil", "status")
			if err != nil || !res.Success() {
				return false
			}
			return strings.Contains(strings.ToLower(res.Stdout), "disabled")
		},
		Action: func(_ context.Context, s *executor.Session) error {
			logger.Warn("[WARN] System Integrity Protection is enabled\n")
			s.Manual("Partially disable System Integrity Protection from Recovery mode to load the yabai scripting addition")
			return nil
		},
	}
}

// wallpaperStep sets the desktop picture. Probe and action are looked up per platform.
func wallpaperStep(cfg *config.Config, env *Env) executor.Step {
	path := cfg.Wallpaper

	probes := map[platform.Platform]func(ctx context.Context) bool{
		platform.MacOS: func(ctx context.Context) bool {
			res, err := env.Runner.Run(ctx, "osascript", "-e", `tell application "System Events" to get picture of current desktop`)
			return err == nil && res.Success() && strings.TrimSpace(res.Stdout) == path
		},
		platform.Ubuntu: func(ctx context.Context) bool {
			res, err := env.Runner.Run(ctx, "gsettings", "get", "org.gnome.desktop.background", "picture-uri")
			return err == nil && res.Success() && strings.TrimSpace(res.Stdout) == "'file://"+path+"'"
		},
		platform.Arch: func(context.Context) bool {
			data, err := env.FS.ReadFile(filepath.Join(env.Home, ".fehbg"))
			return err == nil && strings.Contains(string(data), "'"+path+"'")
		},
	}

	set := executor.ForPlatform(map[platform.Platform]executor.Action{
		platform.MacOS: func(ctx context.Context, _ *executor.Session) error {
			script := fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to %q`, path)
			return env.runChecked(ctx, "osascript", "-e", script)
		},
		platform.Ubuntu: func(ctx context.Context, _ *executor.Session) error {
			uri := "file://" + path
			if err := env.runChecked(ctx, "gsettings", "set", "org.gnome.desktop.background", "picture-uri", uri); err != nil {
				return err
			}
			return env.runChecked(ctx, "gsettings", "set", "org.gnome.desktop.background", "picture-uri-dark", uri)
		},
		platform.Arch: func(ctx context.Context, _ *executor.Session) error {
			return env.runChecked(ctx, "feh", "--bg-fill", path)
		},
	})

	return executor.Step{
		Name: StepWallpaper,
		Probe: func(ctx context.Context) bool {
			if path == "" {
				return true
			}
			probe, ok := probes[env.Platform]
			return ok && probe(ctx)
		},
		Action: func(ctx context.Context, s *executor.Session) error {
			if !env.FS.Exists(path) {
				logger.Warn("[WARN] Wallpaper %s not found\n", path)
				s.Manual("Wallpaper %s not found; set the desktop picture manually", path)
				return nil
			}
			if env.FS.IsDir(path) {
				logger.Warn("[WARN] Wallpaper %s is a directory, not an image\n", path)
				s.Manual("Wallpaper %s is a directory; point the wallpaper setting at an image file", path)
				return nil
			}
			if err := set(ctx, s); err != nil {
				return err
			}
			logger.Info("[INFO] Wallpaper set to %s\n", path)
			return nil
		},
	}
}

// runChecked runs a command and turns a non-zero exit into an error.
func (e *Env) runChecked(ctx context.Context, name string, args ...string) error {
	res, err := e.Runner.Run(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !res.Success() {
		return fmt.Errorf("%s %s failed (exit %d): %s", name, strings.Join(args, " "), res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
