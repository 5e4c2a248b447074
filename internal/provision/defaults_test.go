package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/system"
)

func defaultsConfig() *config.Config {
	return &config.Config{Settings: []config.Setting{
		{Domain: "com.apple.dock", Key: "autohide", Type: "bool", Value: "true"},
		{Domain: "NSGlobalDomain", Key: "KeyRepeat", Type: "int", Value: "2"},
	}}
}

func TestDefaultsStep_WritesOnlyMismatches(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)
	runner.AddResult("defaults", []string{"read", "com.apple.dock", "autohide"}, system.CommandResult{Stdout: "1\n"})
	runner.AddResult("defaults", []string{"read", "NSGlobalDomain", "KeyRepeat"}, system.CommandResult{Stdout: "6\n"})
	runner.AddResult("defaults", []string{"write", "NSGlobalDomain", "KeyRepeat", "-int", "2"}, exitOK)

	report := runStep(t, defaultsStep(defaultsConfig(), env), platform.MacOS)

	assert.Equal(t, []string{StepDefaults}, recordNames(report.Completed))
	assert.True(t, runner.Called("defaults", "write", "NSGlobalDomain", "KeyRepeat", "-int", "2"))
	assert.False(t, runner.Called("defaults", "write", "com.apple.dock", "autohide", "-bool", "true"))
}

func TestDefaultsStep_AllApplied(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)
	runner.AddResult("defaults", []string{"read", "com.apple.dock", "autohide"}, system.CommandResult{Stdout: "1\n"})
	runner.AddResult("defaults", []string{"read", "NSGlobalDomain", "KeyRepeat"}, system.CommandResult{Stdout: "2\n"})

	report := runStep(t, defaultsStep(defaultsConfig(), env), platform.MacOS)

	assert.Equal(t, []string{StepDefaults}, recordNames(report.Skipped))
}

func TestDefaultsStep_NumericFormsMatch(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)
	cfg := &config.Config{Settings: []config.Setting{
		{Domain: "com.apple.dock", Key: "autohide-delay", Type: "float", Value: "0.50"},
		{Domain: "com.apple.dock", Key: "autohide-time-modifier", Type: "float", Value: "1"},
		{Domain: "NSGlobalDomain", Key: "InitialKeyRepeat", Type: "int", Value: "015"},
	}}
	runner.AddResult("defaults", []string{"read", "com.apple.dock", "autohide-delay"}, system.CommandResult{Stdout: "0.5\n"})
	runner.AddResult("defaults", []string{"read", "com.apple.dock", "autohide-time-modifier"}, system.CommandResult{Stdout: "1\n"})
	runner.AddResult("defaults", []string{"read", "NSGlobalDomain", "InitialKeyRepeat"}, system.CommandResult{Stdout: "15\n"})

	report := runStep(t, defaultsStep(cfg, env), platform.MacOS)

	assert.Equal(t, []string{StepDefaults}, recordNames(report.Skipped))
	assert.False(t, runner.Called("defaults", "write", "com.apple.dock", "autohide-delay", "-float", "0.50"))
	assert.False(t, runner.Called("defaults", "write", "NSGlobalDomain", "InitialKeyRepeat", "-int", "015"))
}

func TestDefaultsStep_UnsetKeyIsWritten(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)
	cfg := &config.Config{Settings: []config.Setting{{Domain: "com.apple.finder", Key: "AppleShowAllFiles", Type: "bool", Value: "true"}}}
	runner.AddResult("defaults", []string{"read", "com.apple.finder", "AppleShowAllFiles"},
		system.CommandResult{ExitCode: 1, Stderr: "The domain/default pair does not exist"})
	runner.AddResult("defaults", []string{"write", "com.apple.finder", "AppleShowAllFiles", "-bool", "true"}, exitOK)

	report := runStep(t, defaultsStep(cfg, env), platform.MacOS)

	assert.Equal(t, []string{StepDefaults}, recordNames(report.Completed))
}

func TestDefaultsStep_WriteFailureWarns(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)
	runner.AddResult("defaults", []string{"read", "com.apple.dock", "autohide"}, exitFail)
	runner.AddResult("defaults", []string{"read", "NSGlobalDomain", "KeyRepeat"}, exitFail)
	runner.AddResult("defaults", []string{"write", "com.apple.dock", "autohide", "-bool", "true"}, exitFail)
	runner.AddResult("defaults", []string{"write", "NSGlobalDomain", "KeyRepeat", "-int", "2"}, exitOK)

	report := runStep(t, defaultsStep(defaultsConfig(), env), platform.MacOS)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "com.apple.dock:autohide")
	assert.True(t, runner.Called("defaults", "write", "NSGlobalDomain", "KeyRepeat", "-int", "2"))
}

func TestReadBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setting config.Setting
		want    string
	}{
		{config.Setting{Type: "bool", Value: "true"}, "1"},
		{config.Setting{Type: "bool", Value: "NO"}, "0"},
		{config.Setting{Type: "int", Value: "15"}, "15"},
		{config.Setting{Type: "int", Value: "02"}, "2"},
		{config.Setting{Type: "int", Value: "+7"}, "7"},
		{config.Setting{Type: "float", Value: "1.50"}, "1.5"},
		{config.Setting{Type: "float", Value: "2"}, "2"},
		{config.Setting{Type: "float", Value: "0.250"}, "0.25"},
		{config.Setting{Type: "int", Value: "fast"}, "fast"},
		{config.Setting{Value: "Nlsv"}, "Nlsv"},
		{config.Setting{Value: "02"}, "02"},
	}
	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, readBack(tt.setting))
	}
}
