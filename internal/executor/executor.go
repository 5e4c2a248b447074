package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/manual"
	"setup-dotfiles/internal/platform"
)

// Run executes steps strictly in the given order on platform p and returns the report.
//
// Steps not applicable to p are skipped silently. For every other step the probe runs
// first; the action runs only when the probe reports the postcondition missing.
// A failing critical step aborts the run and Run returns a *CriticalStepError alongside
// the (partial) report. Non-critical failures become warnings and the run continues.
// Steps that name a warned step in After are not attempted.
func Run(ctx context.Context, steps []Step, p platform.Platform) (*Report, error) {
	report := &Report{
		ID:           uuid.NewString(),
		Platform:     p,
		StartedAt:    time.Now(),
		Completed:    []StepRecord{},
		Skipped:      []StepRecord{},
		Warnings:     []StepRecord{},
		Remediations: []Remediation{},
	}
	collector := manual.NewCollector()
	defer func() {
		report.ManualSteps = collector.All()
		report.Duration = time.Since(report.StartedAt)
	}()

	logger.Debug("[DEBUG] Run %s: %d steps on %s\n", report.ID, len(steps), p)

	if err := ValidateOrder(steps); err != nil {
		logger.Error("[ERROR] %v\n", err)
		report.Aborted = true
		report.AbortReason = err.Error()
		return report, err
	}

	warned := make(map[string]bool)

	for _, step := range steps {
		if !step.AppliesTo(p) {
			logger.Debug("[DEBUG] %s: not applicable on %s\n", step.Name, p)
			continue
		}

		if blocker := firstWarned(step.After, warned); blocker != "" {
			msg := fmt.Sprintf("prerequisite %q did not complete", blocker)
			rec := StepRecord{Name: step.Name, Status: StatusWarning, Message: msg, Blocked: true}
			if step.Critical {
				return abort(report, rec, errors.New(msg))
			}
			logger.Warn("[WARN] %s: skipped, %s\n", step.Name, msg)
			report.Warnings = append(report.Warnings, rec)
			warned[step.Name] = true
			continue
		}

		if step.Satisfied(ctx) {
			logger.Skip("[SKIP] %s: already done\n", step.Name)
			report.Skipped = append(report.Skipped, StepRecord{Name: step.Name, Status: StatusSkipped})
			continue
		}

		logger.Info("[INFO] %s: running\n", step.Name)
		session := &Session{
			Platform:     p,
			step:         step.Name,
			manual:       collector,
			remediations: &report.Remediations,
		}

		start := time.Now()
		err := runAction(ctx, step, session)
		duration := time.Since(start)

		if err == nil {
			logger.Info("[INFO] %s: done\n", step.Name)
			report.Completed = append(report.Completed, StepRecord{Name: step.Name, Status: StatusDone, Duration: duration})
			continue
		}

		rec := StepRecord{Name: step.Name, Message: err.Error(), Duration: duration}
		if step.Critical {
			return abort(report, rec, err)
		}

		logger.Warn("[WARN] %s failed, continuing: %v\n", step.Name, err)
		rec.Status = StatusWarning
		report.Warnings = append(report.Warnings, rec)
		warned[step.Name] = true
	}

	return report, nil
}

func runAction(ctx context.Context, step Step, s *Session) error {
	if step.Action == nil {
		return errors.New("step has no action")
	}
	return step.Action(ctx, s)
}

// abort marks the report as aborted by the given critical step.
func abort(report *Report, rec StepRecord, err error) (*Report, error) {
	logger.Error("[ERROR] Critical step %s failed, aborting: %v\n", rec.Name, err)
	rec.Status = StatusFailed
	report.Failed = &rec
	report.Aborted = true
	report.AbortReason = fmt.Sprintf("%s: %v", rec.Name, err)
	return report, &CriticalStepError{Step: rec.Name, Err: err}
}

func firstWarned(after []string, warned map[string]bool) string {
	for _, name := range after {
		if warned[name] {
			return name
		}
	}
	return ""
}

// ValidateOrder checks that step names are unique and non-empty, and that every
// name in After refers to a step declared earlier in the list.
func ValidateOrder(steps []Step) error {
	seen := make(map[string]bool, len(steps))
	for i, step := range steps {
		if step.Name == "" {
			return fmt.Errorf("%w: step %d has no name", ErrStepOrder, i)
		}
		if seen[step.Name] {
			return fmt.Errorf("%w: duplicate step %q", ErrStepOrder, step.Name)
		}
		for _, dep := range step.After {
			if !seen[dep] {
				return fmt.Errorf("%w: step %q must run after %q, which is not declared before it", ErrStepOrder, step.Name, dep)
			}
		}
		seen[step.Name] = true
	}
	return nil
}
