// Package detector provides hand detection interfaces and types for the distress-signal pipeline.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the estimator.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// ErrMalformedHand is returned when a hand observation cannot be used.
var ErrMalformedHand = errors.New("malformed hand observation")

// Point3D represents a landmark position. X and Y are normalized to the
// frame width and height, Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one hand observed in one frame.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Validate reports whether the observation has exactly NumLandmarks finite
// points and a known handedness label. An empty label is accepted and
// treated as HandRight by Side.
func (h *HandLandmarks) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil hand", ErrMalformedHand)
	}
	if len(h.Points) != NumLandmarks {
		return fmt.Errorf("%w: got %d landmarks, want %d", ErrMalformedHand, len(h.Points), NumLandmarks)
	}
	switch h.Handedness {
	case "", HandLeft, HandRight:
	default:
		return fmt.Errorf("%w: unknown handedness %q", ErrMalformedHand, h.Handedness)
	}
	for i, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return fmt.Errorf("%w: landmark %d is not finite", ErrMalformedHand, i)
		}
	}
	return nil
}

// Side returns the handedness label, defaulting to HandRight when the
// estimator did not report one.
func (h *HandLandmarks) Side() string {
	if h.Handedness == "" {
		return HandRight
	}
	return h.Handedness
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
