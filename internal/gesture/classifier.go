package gesture

import (
	"log/slog"

	"github.com/ayusman/handsignal/internal/detector"
)

// Thresholds are the tuned ratios against palm width used by the arming
// test. They are heuristics, not derived constants.
type Thresholds struct {
	// SpreadRatio bounds the index-to-middle tip distance for "fingers together".
	SpreadRatio float64 `mapstructure:"spread_ratio"`
	// TuckRatio bounds the thumb-tip-to-pinky-base distance for "thumb folded".
	TuckRatio float64 `mapstructure:"tuck_ratio"`
}

// DefaultThresholds returns the tuned default ratios.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpreadRatio: 0.45,
		TuckRatio:   0.9,
	}
}

// Signals are the per-hand classification results.
type Signals struct {
	Arming     bool
	FistClosed bool
}

// Classifier maps a FeatureSet to Signals.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Classify evaluates one hand. Arming is four fingers raised and held
// together with the thumb folded into the palm; FistClosed is every finger
// folded.
func (c *Classifier) Classify(fs FeatureSet) Signals {
	fourUp := fs.FingerOpen[Index] && fs.FingerOpen[Middle] && fs.FingerOpen[Ring] && fs.FingerOpen[Pinky]
	together := fs.FingertipSpread < c.thresholds.SpreadRatio*fs.PalmWidth
	tucked := fs.ThumbTuck < c.thresholds.TuckRatio*fs.PalmWidth

	closed := true
	for _, open := range fs.FingerOpen {
		if open {
			closed = false
			break
		}
	}

	return Signals{
		Arming:     fourUp && together && tucked,
		FistClosed: closed,
	}
}

// FrameSignals aggregate every hand of one frame. The session reacts to
// whether a gesture was present anywhere in the frame, not to which hand
// showed it.
type FrameSignals struct {
	Arming     bool
	FistClosed bool
	// Hands is the number of usable hands that were classified.
	Hands int
	// Rejected is the number of hands skipped as malformed.
	Rejected int
}

// Silent reports whether no hand showed either signal.
func (f FrameSignals) Silent() bool {
	return !f.Arming && !f.FistClosed
}

// Recognizer runs extraction and classification over all hands in a frame.
type Recognizer struct {
	extractor  Extractor
	classifier *Classifier
	logger     *slog.Logger
}

// NewRecognizer creates a Recognizer. A nil logger uses slog.Default().
func NewRecognizer(e Extractor, c *Classifier, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{extractor: e, classifier: c, logger: logger}
}

// Frame classifies every hand and ORs the results. Malformed hands count as
// absent for this frame. A frame with no hands yields silent signals.
func (r *Recognizer) Frame(hands []detector.HandLandmarks) FrameSignals {
	var out FrameSignals

	for i := range hands {
		fs, err := r.extractor.Extract(&hands[i])
		if err != nil {
			out.Rejected++
			r.logger.Debug("skipping hand", "index", i, "error", err)
			continue
		}

		s := r.classifier.Classify(fs)
		out.Hands++
		out.Arming = out.Arming || s.Arming
		out.FistClosed = out.FistClosed || s.FistClosed
	}

	return out
}
