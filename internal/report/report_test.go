package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/manual"
	"setup-dotfiles/internal/platform"
)

func sampleReport() *executor.Report {
	return &executor.Report{
		ID:        "3f2a9c1e-0000-4000-8000-000000000000",
		Platform:  platform.Ubuntu,
		StartedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Completed: []executor.StepRecord{
			{Name: "packages", Status: executor.StatusDone},
			{Name: "dotfiles", Status: executor.StatusDone},
		},
		Skipped:  []executor.StepRecord{{Name: "zsh", Status: executor.StatusSkipped}},
		Warnings: []executor.StepRecord{{Name: "wallpaper", Status: executor.StatusWarning, Message: "gsettings failed"}},
		Remediations: []executor.Remediation{
			{Step: "dotfiles", Description: "backed up /home/dev/.config/nvim to /home/dev/.config/nvim.backup"},
		},
		ManualSteps: []manual.Step{{Description: "Log out and back in to use zsh"}},
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	out := Summary(sampleReport())

	assert.Contains(t, out, "Provisioning ubuntu")
	assert.Contains(t, out, "3f2a9c1e")
	assert.Regexp(t, `completed\s+2`, out)
	assert.Regexp(t, `skipped\s+1`, out)
	assert.Regexp(t, `warnings\s+1`, out)
	assert.Regexp(t, `manual\s+1`, out)
	assert.Contains(t, out, "wallpaper: gsettings failed")
	assert.Contains(t, out, "nvim.backup")
	assert.NotContains(t, out, "aborted")
}

func TestSummary_Aborted(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.Aborted = true
	r.AbortReason = "packages: apt-get install failed"

	assert.Contains(t, Summary(r), "aborted: packages: apt-get install failed")
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "Manual steps remaining:\n  1. Log out and back in to use zsh\n")

	r := sampleReport()
	r.ManualSteps = nil
	buf.Reset()
	require.NoError(t, Print(&buf, r))
	assert.NotContains(t, buf.String(), "Manual steps remaining")
}

func TestSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, Save(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ubuntu", got["platform"])
	assert.Equal(t, false, got["aborted"])
	assert.Len(t, got["completed"], 2)
	assert.Len(t, got["manual_steps"], 1)
	assert.Contains(t, string(data), "\n  \"id\"")
}
