// Package report renders and persists the outcome of a provisioning run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/manual"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#8BC34A")).
	Padding(0, 1)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(12)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Summary renders the boxed run summary.
func Summary(r *executor.Report) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Provisioning %s", r.Platform)))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  run %s, %s", shortID(r.ID), r.Duration.Round(time.Millisecond))))
	sb.WriteString("\n\n")

	counts := []struct {
		label string
		n     int
	}{
		{"completed", len(r.Completed)},
		{"skipped", len(r.Skipped)},
		{"warnings", len(r.Warnings)},
		{"remediated", len(r.Remediations)},
		{"manual", len(r.ManualSteps)},
	}
	for _, c := range counts {
		sb.WriteString(labelStyle.Render(c.label))
		sb.WriteString(fmt.Sprintf("%d\n", c.n))
	}

	for _, w := range r.Warnings {
		sb.WriteString(fmt.Sprintf("\nwarning  %s: %s", w.Name, w.Message))
	}
	for _, rem := range r.Remediations {
		sb.WriteString(fmt.Sprintf("\nfixed    %s: %s", rem.Step, rem.Description))
	}
	if r.Aborted {
		sb.WriteString("\n")
		sb.WriteString(failureStyle.Render("aborted: " + r.AbortReason))
	}

	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// Print writes the summary box followed by the remaining manual steps.
func Print(w io.Writer, r *executor.Report) error {
	if _, err := fmt.Fprintln(w, Summary(r)); err != nil {
		return err
	}
	return manual.Render(w, r.ManualSteps)
}

// Save writes r to path as indented JSON, creating parent directories.
func Save(path string, r *executor.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	logger.Debug("[DEBUG] Writing report to %s\n", path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
