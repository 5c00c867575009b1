// Package gesture turns hand landmarks into the arming and closed-fist
// signals that drive the distress state machine.
package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/handsignal/internal/detector"
)

// Finger positions in FeatureSet.FingerOpen.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// tipIDs are the fingertip landmark indices, ordered thumb to pinky.
var tipIDs = [NumFingers]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// FeatureSet is the compact geometry of one hand in one frame.
type FeatureSet struct {
	FingerOpen      [NumFingers]bool
	PalmWidth       float64 // index MCP to pinky MCP
	FingertipSpread float64 // index tip to middle tip
	ThumbTuck       float64 // thumb tip to pinky MCP
}

// Extractor computes FeatureSets. Landmarks are normalized to the frame, so
// FrameWidth and FrameHeight scale them back to pixels before distances are
// measured; a non-square frame otherwise distorts the palm-relative ratios.
// Zero dimensions measure in normalized space.
type Extractor struct {
	FrameWidth  float64
	FrameHeight float64
}

// NewExtractor returns an Extractor for frames of the given size in pixels.
func NewExtractor(width, height int) Extractor {
	return Extractor{FrameWidth: float64(width), FrameHeight: float64(height)}
}

// Extract computes the feature set for one hand. It returns an error
// wrapping detector.ErrMalformedHand when the observation is unusable.
func (e Extractor) Extract(hand *detector.HandLandmarks) (FeatureSet, error) {
	if err := hand.Validate(); err != nil {
		return FeatureSet{}, fmt.Errorf("extract features: %w", err)
	}

	p := hand.Points
	var fs FeatureSet

	fs.FingerOpen[Thumb] = ThumbOpen(hand.Side(), p[detector.ThumbTip], p[detector.ThumbIP])
	for f := Index; f < NumFingers; f++ {
		tip := tipIDs[f]
		// Image Y grows downward: a raised tip sits above its PIP joint.
		fs.FingerOpen[f] = p[tip].Y < p[tip-2].Y
	}

	fs.PalmWidth = e.distance(p[detector.IndexMCP], p[detector.PinkyMCP])
	fs.FingertipSpread = e.distance(p[detector.IndexTip], p[detector.MiddleTip])
	fs.ThumbTuck = e.distance(p[detector.ThumbTip], p[detector.PinkyMCP])

	return fs, nil
}

// ThumbOpen reports whether the thumb is extended sideways. The estimator
// labels the subject's own hand, so the open direction flips with
// handedness: a right thumb opens toward smaller X, a left one toward
// larger X.
func ThumbOpen(handedness string, tip, ip detector.Point3D) bool {
	if handedness == detector.HandLeft {
		return tip.X > ip.X
	}
	return tip.X < ip.X
}

func (e Extractor) distance(a, b detector.Point3D) float64 {
	sx, sy := e.FrameWidth, e.FrameHeight
	if sx <= 0 || sy <= 0 {
		sx, sy = 1, 1
	}
	return math.Hypot((a.X-b.X)*sx, (a.Y-b.Y)*sy)
}
