// Package executor runs an ordered list of probe-guarded provisioning steps.
package executor

import (
	"context"
	"fmt"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/manual"
	"setup-dotfiles/internal/platform"
)

// Probe reports whether a step's postcondition already holds. It must not mutate anything.
type Probe func(ctx context.Context) bool

// Action establishes a step's postcondition.
type Action func(ctx context.Context, s *Session) error

// Step is one named provisioning unit.
type Step struct {
	Name string
	// Platforms restricts the step; empty means every platform.
	Platforms config.Platforms
	// After names earlier steps whose postconditions this step relies on.
	After []string
	// Critical steps abort the run when their action fails.
	Critical bool
	// Probe may be nil, in which case the action always runs.
	Probe  Probe
	Action Action
}

// AppliesTo reports whether the step is eligible on p.
func (s Step) AppliesTo(p platform.Platform) bool {
	return s.Platforms.Includes(p)
}

// Satisfied runs the probe; a nil probe is never satisfied.
func (s Step) Satisfied(ctx context.Context) bool {
	if s.Probe == nil {
		return false
	}
	return s.Probe(ctx)
}

// ForPlatform builds an action that dispatches on the session's platform.
// A platform missing from the table fails the step.
func ForPlatform(actions map[platform.Platform]Action) Action {
	return func(ctx context.Context, s *Session) error {
		action, ok := actions[s.Platform]
		if !ok {
			return fmt.Errorf("no action for platform %s", s.Platform)
		}
		return action(ctx, s)
	}
}

// Session is what an action sees of the run it belongs to.
type Session struct {
	Platform platform.Platform

	step         string
	manual       *manual.Collector
	remediations *[]Remediation
}

// Manual records a follow-up for the operator. It is not a failure.
func (s *Session) Manual(format string, args ...any) {
	s.manual.Record(fmt.Sprintf(format, args...))
}

// Remediated records a corrective change made on the way to the postcondition,
// such as backing up a directory that was in the way of a symlink.
func (s *Session) Remediated(format string, args ...any) {
	*s.remediations = append(*s.remediations, Remediation{
		Step:        s.step,
		Description: fmt.Sprintf(format, args...),
	})
}
