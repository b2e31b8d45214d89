// Package emergency implements the node's two-state emergency machine.
// EMERGENCY is sticky: once entered, further threat or no-threat cycles keep
// the node in EMERGENCY, and only an explicit reset returns it to NORMAL.
package emergency

import (
	"log/slog"
	"strings"

	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/notification"
)

// State identifies the emergency machine state.
type State int

const (
	StateNormal State = iota
	StateEmergency
)

func (s State) String() string {
	if s == StateEmergency {
		return "EMERGENCY"
	}
	return "NORMAL"
}

// Controller drives the emergency state in the shared node state and emits
// the entry alert on each NORMAL to EMERGENCY transition.
type Controller struct {
	state    *nodestate.State
	notifier *notification.Service
	log      *slog.Logger
}

// New creates a Controller. The notifier may be nil; transitions are then
// only logged.
func New(state *nodestate.State, notifier *notification.Service) *Controller {
	log := logging.ForService("emergency")
	if log == nil {
		log = slog.Default()
	}
	return &Controller{state: state, notifier: notifier, log: log}
}

// Current returns the machine state.
func (c *Controller) Current() State {
	if c.state.EmergencyActive() {
		return StateEmergency
	}
	return StateNormal
}

// Trigger moves the machine to EMERGENCY. The entry alert fires only on the
// actual transition; triggering while already in EMERGENCY is a no-op, which
// keeps the sticky state idempotent under repeated threat cycles.
func (c *Controller) Trigger(source string, reasons ...string) {
	if !c.state.SetEmergency(true) {
		return
	}

	detail := strings.Join(reasons, ", ")
	if detail == "" {
		detail = source
	}
	c.log.Warn("entering emergency mode", "source", source, "reasons", reasons)

	if c.notifier != nil {
		if _, err := c.notifier.Send(notification.TypeEmergency, notification.PriorityCritical,
			"Emergency mode activated", detail); err != nil {
			c.log.Error("emergency alert delivery failed", "error", err)
		}
	}
}

// HandleVerdict applies one assessment cycle to the machine.
func (c *Controller) HandleVerdict(threat bool, reasons []string) {
	if threat {
		c.Trigger("assessment", reasons...)
	}
}

// Reset returns the machine to NORMAL together with the rest of the node
// state. Baseline, wildlife counter and emergency flag clear in one step so
// a cycle running concurrently cannot observe a half-reset node.
func (c *Controller) Reset() {
	c.state.Reset()
	c.log.Info("emergency state cleared, node state reset")
}
