package app

import (
	"time"

	"github.com/ayusman/handsignal/internal/capture"
	"github.com/ayusman/handsignal/internal/metrics"
)

// runPipeline is the capture loop. Each tick reads one frame, detects hands
// and evaluates them at the tick time. A slow frame delays the next one;
// missed ticks are dropped, never queued.
//
// Every frame reaches the state machine, including frames without hands,
// since the arming and display windows are measured on frame arrival.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := a.config.Camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	ticker := a.clock.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if !a.IsEnabled() {
				continue
			}
			a.captureFrame()
		}
	}
}

// captureFrame handles one tick of the loop.
func (a *App) captureFrame() {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		a.logger.Warn("error reading frame", "error", err)
		return
	}

	hands, err := a.config.Detector.Detect(frame)
	frame.Close()

	if err != nil {
		metrics.DetectorErrors.Inc()
		a.logger.Warn("error detecting hands", "error", err)
		hands = nil
	}

	a.ProcessFrame(a.clock.Now(), hands)
}
