// Package alert delivers distress notifications without blocking the frame
// loop.
package alert

import (
	"context"
	"errors"
	"time"
)

// TypeDistress is the only alert type the detector raises.
const TypeDistress = "distress"

// Alert is the record sent to notification collaborators.
type Alert struct {
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Type      string `json:"type"`
}

// NewAlert builds a distress alert for a session at the given time.
func NewAlert(sessionID string, at time.Time) Alert {
	return Alert{
		SessionID: sessionID,
		Timestamp: at.UnixMilli(),
		Type:      TypeDistress,
	}
}

// Time returns the alert timestamp as a time.Time.
func (a Alert) Time() time.Time {
	return time.UnixMilli(a.Timestamp)
}

// Notifier sends one alert to an external collaborator.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, a Alert) error

// Notify calls f(ctx, a).
func (f NotifierFunc) Notify(ctx context.Context, a Alert) error {
	return f(ctx, a)
}

// Multi sends every alert to each notifier in order and joins their errors.
// One failing notifier does not stop the others.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
