package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/testutil/mocks"
)

func dotfilesConfig(links ...config.Link) *config.Config {
	return &config.Config{DotfilesRoot: "/home/dev/dotfiles", Links: links}
}

func TestDotfilesStep(t *testing.T) {
	t.Parallel()

	kitty := config.Link{Source: "/home/dev/dotfiles/kitty", Target: "/home/dev/.config/kitty"}

	tests := []struct {
		name             string
		setup            func(fs *mocks.FileSystem)
		wantSkipped      bool
		wantWarning      bool
		wantRemediations []string
		wantManual       int
		wantLinked       bool
	}{
		{
			name: "already linked",
			setup: func(fs *mocks.FileSystem) {
				fs.AddDir(kitty.Source)
				fs.AddSymlink(kitty.Target, kitty.Source)
			},
			wantSkipped: true,
			wantLinked:  true,
		},
		{
			name: "nothing at target",
			setup: func(fs *mocks.FileSystem) {
				fs.AddDir(kitty.Source)
			},
			wantLinked: true,
		},
		{
			name: "real directory is backed up",
			setup: func(fs *mocks.FileSystem) {
				fs.AddDir(kitty.Source)
				fs.AddDir(kitty.Target)
			},
			wantRemediations: []string{"backed up /home/dev/.config/kitty to /home/dev/.config/kitty.backup"},
			wantLinked:       true,
		},
		{
			name: "stale symlink is replaced",
			setup: func(fs *mocks.FileSystem) {
				fs.AddDir(kitty.Source)
				fs.AddSymlink(kitty.Target, "/old/dotfiles/kitty")
			},
			wantRemediations: []string{"replaced symlink /home/dev/.config/kitty (was -> /old/dotfiles/kitty)"},
			wantLinked:       true,
		},
		{
			name:       "missing source becomes manual",
			setup:      func(*mocks.FileSystem) {},
			wantManual: 1,
		},
		{
			name: "existing backup blocks the link",
			setup: func(fs *mocks.FileSystem) {
				fs.AddDir(kitty.Source)
				fs.AddFile(kitty.Target, "font_size 12\n")
				fs.AddFile(kitty.Target+BackupSuffix, "font_size 11\n")
			},
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, fs := newTestEnv(platform.Arch)
			tt.setup(fs)

			report := runStep(t, dotfilesStep(dotfilesConfig(kitty), env), platform.Arch)

			if tt.wantSkipped {
				assert.Equal(t, []string{StepDotfiles}, recordNames(report.Skipped))
			}
			if tt.wantWarning {
				require.Len(t, report.Warnings, 1)
				assert.Contains(t, report.Warnings[0].Message, "already exists")
			} else {
				assert.Empty(t, report.Warnings)
			}

			var got []string
			for _, r := range report.Remediations {
				got = append(got, r.Description)
			}
			assert.Equal(t, tt.wantRemediations, got)
			assert.Len(t, report.ManualSteps, tt.wantManual)

			isLink, target := fs.IsSymlink(kitty.Target)
			assert.Equal(t, tt.wantLinked, isLink && target == kitty.Source)
		})
	}
}

func TestDotfilesStep_ContinuesPastFailedLink(t *testing.T) {
	t.Parallel()

	blocked := config.Link{Source: "/home/dev/dotfiles/tmux", Target: "/home/dev/.tmux.conf"}
	fine := config.Link{Source: "/home/dev/dotfiles/zshrc", Target: "/home/dev/.zshrc"}

	env, _, fs := newTestEnv(platform.Ubuntu)
	fs.AddFile(blocked.Source, "")
	fs.AddFile(blocked.Target, "")
	fs.AddFile(blocked.Target+BackupSuffix, "")
	fs.AddFile(fine.Source, "")

	report := runStep(t, dotfilesStep(dotfilesConfig(blocked, fine), env), platform.Ubuntu)

	require.Len(t, report.Warnings, 1)
	isLink, _ := fs.IsSymlink(fine.Target)
	assert.True(t, isLink)
}
