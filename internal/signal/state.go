// Package signal implements the timed state machine that turns per-frame
// gesture signals into a single distress status per tracking session.
//
// States move NORMAL → ARMED → TRIGGERED → NORMAL. ARMED falls back to
// NORMAL when the arm window expires or the signal is lost for longer than
// the tolerance. There is no edge from TRIGGERED back to ARMED, so a
// sustained gesture raises one alert per cycle.
package signal

import (
	"time"

	"github.com/ayusman/handsignal/internal/gesture"
)

// Status is the session-level distress status.
type Status string

const (
	StatusNormal    Status = "NORMAL"
	StatusArmed     Status = "ARMED"
	StatusTriggered Status = "TRIGGERED"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusArmed, StatusTriggered:
		return true
	}
	return false
}

// Reason explains why a transition happened.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonArmed      Reason = "armed"
	ReasonTriggered  Reason = "triggered"
	ReasonTimeout    Reason = "arm_timeout"
	ReasonSignalLost Reason = "signal_lost"
	ReasonDisplayed  Reason = "display_elapsed"
)

// Timing holds the tunable windows of the state machine.
type Timing struct {
	// ArmWindow is how long after arming a closed fist still triggers.
	ArmWindow time.Duration `mapstructure:"arm_window"`
	// Tolerance is the grace period for momentary detection loss while armed.
	Tolerance time.Duration `mapstructure:"tolerance"`
	// DisplayWindow is how long TRIGGERED is held before resetting.
	DisplayWindow time.Duration `mapstructure:"display_window"`
}

// DefaultTiming returns the tuned default windows.
func DefaultTiming() Timing {
	return Timing{
		ArmWindow:     2000 * time.Millisecond,
		Tolerance:     500 * time.Millisecond,
		DisplayWindow: 4000 * time.Millisecond,
	}
}

// SessionState is the mutable state of one tracking session.
// ArmStart is zero whenever Status is not ARMED.
type SessionState struct {
	Status      Status
	ArmStart    time.Time
	LastSignal  time.Time
	LastTrigger time.Time
}

// NewSessionState returns the initial NORMAL state.
func NewSessionState() SessionState {
	return SessionState{Status: StatusNormal}
}

// Transition describes the result of one Step.
type Transition struct {
	From   Status
	To     Status
	Reason Reason
}

// Changed reports whether the status changed.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Dispatch reports whether this is the ARMED → TRIGGERED edge, the only
// point at which an alert is sent.
func (t Transition) Dispatch() bool {
	return t.From == StatusArmed && t.To == StatusTriggered
}

// Step evaluates one frame. It is a pure function: the returned state
// replaces s, and at most one status change happens per call.
func Step(s SessionState, f gesture.FrameSignals, now time.Time, timing Timing) (SessionState, Transition) {
	tr := Transition{From: s.Status, To: s.Status}

	switch s.Status {
	case StatusArmed:
		sinceArm := now.Sub(s.ArmStart)
		switch {
		case f.FistClosed && sinceArm < timing.ArmWindow:
			s.Status = StatusTriggered
			s.LastTrigger = now
			s.LastSignal = now
			s.ArmStart = time.Time{}
			tr.Reason = ReasonTriggered
		case sinceArm >= timing.ArmWindow:
			s.Status = StatusNormal
			s.ArmStart = time.Time{}
			tr.Reason = ReasonTimeout
		case !f.Silent():
			s.LastSignal = now
		case now.Sub(s.LastSignal) > timing.Tolerance:
			s.Status = StatusNormal
			s.ArmStart = time.Time{}
			tr.Reason = ReasonSignalLost
		}

	case StatusTriggered:
		if now.Sub(s.LastTrigger) >= timing.DisplayWindow {
			s.Status = StatusNormal
			tr.Reason = ReasonDisplayed
		}

	default:
		// Anything unknown is treated as NORMAL so the status never leaves
		// the three-state set.
		s.Status = StatusNormal
		tr.From = StatusNormal
		if f.Arming {
			s.Status = StatusArmed
			s.ArmStart = now
			s.LastSignal = now
			tr.Reason = ReasonArmed
		}
	}

	tr.To = s.Status
	return s, tr
}
