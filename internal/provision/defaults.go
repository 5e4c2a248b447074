package provision

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
)

// defaultsStep applies macOS user defaults. Each setting is read back first and only
// written when the stored value differs.
func defaultsStep(cfg *config.Config, env *Env) executor.Step {
	settings := cfg.Settings

	return executor.Step{
		Name:      StepDefaults,
		Platforms: macOnly(),
		Probe: func(ctx context.Context) bool {
			for _, s := range settings {
				if !env.settingApplied(ctx, s) {
					return false
				}
			}
			return true
		},
		Action: func(ctx context.Context, _ *executor.Session) error {
			var failed []string
			for _, s := range settings {
				key := fmt.Sprintf("%s:%s", s.Domain, s.Key)
				if env.settingApplied(ctx, s) {
					logger.Debug("[DEBUG] Setting %s already %s\n", key, s.Value)
					continue
				}

				args := []string{"write", s.Domain, s.Key, "-" + settingType(s), s.Value}
				if err := env.runChecked(ctx, "defaults", args...); err != nil {
					logger.Error("[ERROR] Failed to apply setting %s: %v\n", key, err)
					failed = append(failed, key)
					continue
				}
				logger.Info("[INFO] Applied setting: %s = %s\n", key, s.Value)
			}
			if len(failed) > 0 {
				return fmt.Errorf("failed to apply %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}

// settingApplied compares `defaults read` output with the desired value.
func (e *Env) settingApplied(ctx context.Context, s config.Setting) bool {
	res, err := e.Runner.Run(ctx, "defaults", "read", s.Domain, s.Key)
	if err != nil || !res.Success() {
		return false
	}
	return canonical(s.Type, strings.TrimSpace(res.Stdout)) == readBack(s)
}

func settingType(s config.Setting) string {
	if s.Type == "" {
		return "string"
	}
	return s.Type
}

// readBack is how `defaults read` prints s.Value, in canonical form.
func readBack(s config.Setting) string {
	if s.Type != "bool" {
		return canonical(s.Type, s.Value)
	}
	switch strings.ToLower(s.Value) {
	case "true", "yes", "1":
		return "1"
	default:
		return "0"
	}
}

// canonical normalises numeric values so "02" matches "2" and "1.50" matches "1.5".
// Values that do not parse as their type are compared verbatim.
func canonical(typ, v string) string {
	switch typ {
	case "int":
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
	case "float":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return v
}
