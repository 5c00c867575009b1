package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handsignal/internal/detector"
)

func TestThumbOpen(t *testing.T) {
	left := detector.Point3D{X: 0.40, Y: 0.5}
	right := detector.Point3D{X: 0.60, Y: 0.5}

	tests := []struct {
		name       string
		handedness string
		tip, ip    detector.Point3D
		want       bool
	}{
		{"right hand tip left of joint is open", detector.HandRight, left, right, true},
		{"right hand tip right of joint is closed", detector.HandRight, right, left, false},
		{"left hand tip right of joint is open", detector.HandLeft, right, left, true},
		{"left hand tip left of joint is closed", detector.HandLeft, left, right, false},
		{"right hand equal X is closed", detector.HandRight, left, left, false},
		{"left hand equal X is closed", detector.HandLeft, left, left, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThumbOpen(tt.handedness, tt.tip, tt.ip))
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("arming pose has four raised fingers", func(t *testing.T) {
		hand := detector.ArmingLandmarks()

		fs, err := Extractor{}.Extract(&hand)
		require.NoError(t, err)

		assert.True(t, fs.FingerOpen[Index])
		assert.True(t, fs.FingerOpen[Middle])
		assert.True(t, fs.FingerOpen[Ring])
		assert.True(t, fs.FingerOpen[Pinky])
	})

	t.Run("fist has every finger closed", func(t *testing.T) {
		hand := detector.FistLandmarks()

		fs, err := Extractor{}.Extract(&hand)
		require.NoError(t, err)

		for f, open := range fs.FingerOpen {
			assert.False(t, open, "finger %d should be closed", f)
		}
	})

	t.Run("distances in normalized space", func(t *testing.T) {
		hand := detector.ArmingLandmarks()

		fs, err := Extractor{}.Extract(&hand)
		require.NoError(t, err)

		p := hand.Points
		assert.InDelta(t, math.Hypot(p[detector.IndexMCP].X-p[detector.PinkyMCP].X, p[detector.IndexMCP].Y-p[detector.PinkyMCP].Y), fs.PalmWidth, 1e-9)
		assert.InDelta(t, math.Hypot(p[detector.IndexTip].X-p[detector.MiddleTip].X, p[detector.IndexTip].Y-p[detector.MiddleTip].Y), fs.FingertipSpread, 1e-9)
		assert.InDelta(t, math.Hypot(p[detector.ThumbTip].X-p[detector.PinkyMCP].X, p[detector.ThumbTip].Y-p[detector.PinkyMCP].Y), fs.ThumbTuck, 1e-9)
	})

	t.Run("distances scale to pixels", func(t *testing.T) {
		hand := detector.ArmingLandmarks()

		fs, err := NewExtractor(640, 480).Extract(&hand)
		require.NoError(t, err)

		p := hand.Points
		dx := (p[detector.IndexMCP].X - p[detector.PinkyMCP].X) * 640
		dy := (p[detector.IndexMCP].Y - p[detector.PinkyMCP].Y) * 480
		assert.InDelta(t, math.Hypot(dx, dy), fs.PalmWidth, 1e-9)
	})

	t.Run("thumb direction follows handedness", func(t *testing.T) {
		right := detector.ArmingLandmarks()
		left := detector.Mirror(right)

		rfs, err := Extractor{}.Extract(&right)
		require.NoError(t, err)
		lfs, err := Extractor{}.Extract(&left)
		require.NoError(t, err)

		// The mirrored pose is the same gesture on the other hand.
		assert.Equal(t, rfs.FingerOpen, lfs.FingerOpen)
		assert.InDelta(t, rfs.PalmWidth, lfs.PalmWidth, 1e-9)
	})

	t.Run("missing handedness is treated as right", func(t *testing.T) {
		hand := detector.ArmingLandmarks()
		hand.Handedness = ""

		fs, err := Extractor{}.Extract(&hand)
		require.NoError(t, err)

		want := ThumbOpen(detector.HandRight, hand.Points[detector.ThumbTip], hand.Points[detector.ThumbIP])
		assert.Equal(t, want, fs.FingerOpen[Thumb])
	})

	t.Run("rejects incomplete landmarks", func(t *testing.T) {
		hand := detector.ArmingLandmarks()
		hand.Points = hand.Points[:15]

		_, err := Extractor{}.Extract(&hand)
		assert.ErrorIs(t, err, detector.ErrMalformedHand)
	})
}

func allFingersUp() [NumFingers]bool {
	return [NumFingers]bool{false, true, true, true, true}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name       string
		fs         FeatureSet
		arming     bool
		fistClosed bool
	}{
		{
			name:   "fingers together and thumb tucked arms",
			fs:     FeatureSet{FingerOpen: allFingersUp(), PalmWidth: 100, FingertipSpread: 40, ThumbTuck: 80},
			arming: true,
		},
		{
			name: "fingers apart does not arm",
			fs:   FeatureSet{FingerOpen: allFingersUp(), PalmWidth: 100, FingertipSpread: 50, ThumbTuck: 80},
		},
		{
			name: "spread exactly at threshold does not arm",
			fs:   FeatureSet{FingerOpen: allFingersUp(), PalmWidth: 100, FingertipSpread: 45, ThumbTuck: 80},
		},
		{
			name: "thumb not tucked does not arm",
			fs:   FeatureSet{FingerOpen: allFingersUp(), PalmWidth: 100, FingertipSpread: 40, ThumbTuck: 95},
		},
		{
			name: "one finger down does not arm",
			fs:   FeatureSet{FingerOpen: [NumFingers]bool{false, true, true, false, true}, PalmWidth: 100, FingertipSpread: 40, ThumbTuck: 80},
		},
		{
			name:   "thumb state does not affect arming",
			fs:     FeatureSet{FingerOpen: [NumFingers]bool{true, true, true, true, true}, PalmWidth: 100, FingertipSpread: 40, ThumbTuck: 80},
			arming: true,
		},
		{
			name:       "all fingers closed is a fist",
			fs:         FeatureSet{PalmWidth: 100, FingertipSpread: 10, ThumbTuck: 30},
			fistClosed: true,
		},
		{
			name: "open thumb is not a fist",
			fs:   FeatureSet{FingerOpen: [NumFingers]bool{true}, PalmWidth: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.fs)
			assert.Equal(t, tt.arming, got.Arming, "arming")
			assert.Equal(t, tt.fistClosed, got.FistClosed, "fistClosed")
		})
	}
}

func TestClassifier_CustomThresholds(t *testing.T) {
	fs := FeatureSet{FingerOpen: allFingersUp(), PalmWidth: 100, FingertipSpread: 50, ThumbTuck: 80}

	assert.False(t, NewClassifier(DefaultThresholds()).Classify(fs).Arming)
	assert.True(t, NewClassifier(Thresholds{SpreadRatio: 0.6, TuckRatio: 0.9}).Classify(fs).Arming)
}

func TestRecognizer_Frame(t *testing.T) {
	for _, ex := range []Extractor{{}, NewExtractor(640, 480)} {
		r := NewRecognizer(ex, NewClassifier(DefaultThresholds()), nil)

		t.Run("no hands is silent", func(t *testing.T) {
			got := r.Frame(nil)
			assert.True(t, got.Silent())
			assert.Zero(t, got.Hands)
		})

		t.Run("arming pose", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{detector.ArmingLandmarks()})
			assert.True(t, got.Arming)
			assert.False(t, got.FistClosed)
		})

		t.Run("left hand arming pose", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{detector.Mirror(detector.ArmingLandmarks())})
			assert.True(t, got.Arming)
		})

		t.Run("fist", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{detector.FistLandmarks()})
			assert.False(t, got.Arming)
			assert.True(t, got.FistClosed)
		})

		t.Run("left fist", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{detector.Mirror(detector.FistLandmarks())})
			assert.True(t, got.FistClosed)
		})

		t.Run("open palm is neither", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
			assert.True(t, got.Silent())
			assert.Equal(t, 1, got.Hands)
		})

		t.Run("signals are ORed across hands", func(t *testing.T) {
			got := r.Frame([]detector.HandLandmarks{
				detector.OpenPalmLandmarks(),
				detector.ArmingLandmarks(),
				detector.Mirror(detector.FistLandmarks()),
			})
			assert.True(t, got.Arming)
			assert.True(t, got.FistClosed)
			assert.Equal(t, 3, got.Hands)
		})

		t.Run("malformed hand is skipped", func(t *testing.T) {
			broken := detector.ArmingLandmarks()
			broken.Points = broken.Points[:20]

			got := r.Frame([]detector.HandLandmarks{broken, detector.FistLandmarks()})
			assert.False(t, got.Arming)
			assert.True(t, got.FistClosed)
			assert.Equal(t, 1, got.Hands)
			assert.Equal(t, 1, got.Rejected)
		})
	}
}
