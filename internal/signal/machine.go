package signal

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ayusman/handsignal/internal/gesture"
)

// Snapshot is the read-only view of a session handed to display collaborators.
type Snapshot struct {
	Status    Status    `json:"status"`
	DebugText string    `json:"debug_text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Machine owns the SessionState of one tracking session.
//
// Update must be called from a single goroutine. Snapshot may be called from
// any goroutine and always observes the state as of a completed Update.
type Machine struct {
	timing Timing
	state  SessionState
	snap   atomic.Pointer[Snapshot]
}

// NewMachine creates a Machine in the NORMAL state.
func NewMachine(timing Timing) *Machine {
	m := &Machine{
		timing: timing,
		state:  NewSessionState(),
	}
	m.publish(time.Time{})
	return m
}

// Update applies one frame's signals at time now.
func (m *Machine) Update(f gesture.FrameSignals, now time.Time) Transition {
	next, tr := Step(m.state, f, now, m.timing)
	m.state = next
	m.publish(now)
	return tr
}

// State returns a copy of the current state. Only the writer goroutine
// should call it; readers use Snapshot.
func (m *Machine) State() SessionState {
	return m.state
}

// Snapshot returns the latest published view.
func (m *Machine) Snapshot() Snapshot {
	return *m.snap.Load()
}

// Timing returns the windows this machine was built with.
func (m *Machine) Timing() Timing {
	return m.timing
}

func (m *Machine) publish(now time.Time) {
	m.snap.Store(&Snapshot{
		Status:    m.state.Status,
		DebugText: DebugText(m.state.Status, m.timing),
		UpdatedAt: now,
	})
}

// DebugText is the human-readable line shown next to the video.
func DebugText(s Status, timing Timing) string {
	switch s {
	case StatusTriggered:
		return "DISTRESS ALERT!"
	case StatusArmed:
		return fmt.Sprintf("ARMED (%s...)", timing.ArmWindow)
	default:
		return "WAITING FOR GESTURE..."
	}
}
