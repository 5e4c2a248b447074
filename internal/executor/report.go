package executor

import (
	"errors"
	"fmt"
	"time"

	"setup-dotfiles/internal/manual"
	"setup-dotfiles/internal/platform"
)

// Status is the outcome of a single step.
type Status string

const (
	// StatusDone means the action ran and succeeded.
	StatusDone Status = "done"
	// StatusSkipped means the probe found the postcondition already satisfied.
	StatusSkipped Status = "skipped"
	// StatusWarning means a non-critical step failed or was blocked; the run continued.
	StatusWarning Status = "warning"
	// StatusFailed means a critical step failed and the run was aborted.
	StatusFailed Status = "failed"
)

// StepRecord is the report entry for one step.
type StepRecord struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Blocked  bool          `json:"blocked,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Remediation is a corrective change made while establishing a postcondition.
type Remediation struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// Report is the structured result of a run.
type Report struct {
	ID           string            `json:"id"`
	Platform     platform.Platform `json:"platform"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration_ns"`
	Completed    []StepRecord      `json:"completed"`
	Skipped      []StepRecord      `json:"skipped"`
	Warnings     []StepRecord      `json:"warnings"`
	Failed       *StepRecord       `json:"failed,omitempty"`
	Remediations []Remediation     `json:"remediations"`
	ManualSteps  []manual.Step     `json:"manual_steps"`
	Aborted      bool              `json:"aborted"`
	AbortReason  string            `json:"abort_reason,omitempty"`
}

// ActionsTaken counts steps whose action ran, successfully or not.
func (r *Report) ActionsTaken() int {
	n := len(r.Completed)
	for _, w := range r.Warnings {
		if !w.Blocked {
			n++
		}
	}
	if r.Failed != nil {
		n++
	}
	return n
}

// ErrStepOrder is returned when a step depends on a step that does not precede it.
var ErrStepOrder = errors.New("invalid step order")

// CriticalStepError wraps the failure of a critical step.
type CriticalStepError struct {
	Step string
	Err  error
}

func (e *CriticalStepError) Error() string {
	return fmt.Sprintf("critical step %q failed: %v", e.Step, e.Err)
}

func (e *CriticalStepError) Unwrap() error {
	return e.Err
}
