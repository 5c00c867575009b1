// Package testdata builds recorded frame streams for replay tests.
package testdata

import (
	"encoding/json"
	"io"

	"github.com/ayusman/handsignal/internal/detector"
)

// FrameInterval is the spacing of generated frames (~15 FPS).
const FrameInterval = 66

// Pose is what the hand in a generated frame shows.
type Pose int

const (
	Empty Pose = iota
	Arming
	Fist
	OpenPalm
)

// Segment holds one pose from From up to, not including, To (ms).
type Segment struct {
	From, To int64
	Pose     Pose
}

// Hands returns the landmarks for a pose.
func (p Pose) Hands() []detector.HandLandmarks {
	switch p {
	case Arming:
		return []detector.HandLandmarks{detector.ArmingLandmarks()}
	case Fist:
		return []detector.HandLandmarks{detector.FistLandmarks()}
	case OpenPalm:
		return []detector.HandLandmarks{detector.OpenPalmLandmarks()}
	default:
		return []detector.HandLandmarks{}
	}
}

// Frames expands segments into frames every FrameInterval ms, offset by
// base (unix ms).
func Frames(base int64, segments ...Segment) []detector.Frame {
	var frames []detector.Frame
	for _, s := range segments {
		for t := s.From; t < s.To; t += FrameInterval {
			frames = append(frames, detector.Frame{Timestamp: base + t, Hands: s.Pose.Hands()})
		}
	}
	return frames
}

// WriteFrames writes frames as newline-delimited JSON.
func WriteFrames(w io.Writer, frames []detector.Frame) error {
	enc := json.NewEncoder(w)
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// Recorded scenarios.
var (
	// Distress holds the arming pose, closes the fist within the window and
	// then leaves the frame.
	Distress = []Segment{
		{From: 0, To: 990, Pose: Arming},
		{From: 990, To: 1650, Pose: Fist},
		{From: 1650, To: 6600, Pose: Empty},
	}

	// SlowFist holds the arming pose until the window has run out, then
	// closes the fist.
	SlowFist = []Segment{
		{From: 0, To: 2046, Pose: Arming},
		{From: 2046, To: 3300, Pose: Fist},
	}

	// Dropout raises the arming pose, then the hand leaves.
	Dropout = []Segment{
		{From: 0, To: 330, Pose: Arming},
		{From: 330, To: 1320, Pose: Empty},
	}

	// Wave shows an open palm only.
	Wave = []Segment{
		{From: 0, To: 1980, Pose: OpenPalm},
	}
)
