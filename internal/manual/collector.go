// Package manual collects follow-ups the run could not complete unattended.
package manual

import (
	"fmt"
	"io"
	"sync"
)

// Step is a human-actionable follow-up.
type Step struct {
	Description string `json:"description"`
}

// Collector is an append-only list of manual steps, kept in discovery order.
// Entries are never deduplicated; every run starts with a fresh Collector.
type Collector struct {
	mu    sync.Mutex
	steps []Step
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends a follow-up.
func (c *Collector) Record(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, Step{Description: description})
}

// All returns a copy of the recorded steps in the order they were recorded.
func (c *Collector) All() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Len returns the number of recorded steps.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

// Render writes steps as a numbered list. Nothing is written for an empty list.
func Render(w io.Writer, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Manual steps remaining:"); err != nil {
		return err
	}
	for i, s := range steps {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, s.Description); err != nil {
			return err
		}
	}
	return nil
}

// Render writes the collected steps as a numbered list.
func (c *Collector) Render(w io.Writer) error {
	return Render(w, c.All())
}
