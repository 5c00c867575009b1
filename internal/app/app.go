// Package app wires capture, detection, recognition, the signal state
// machine and alert dispatch into one tracking session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ayusman/handsignal/internal/alert"
	"github.com/ayusman/handsignal/internal/capture"
	"github.com/ayusman/handsignal/internal/detector"
	"github.com/ayusman/handsignal/internal/gesture"
	"github.com/ayusman/handsignal/internal/metrics"
	"github.com/ayusman/handsignal/internal/signal"
	"github.com/ayusman/handsignal/internal/store"
)

// ErrNoCamera is returned by Start when the app was built without a camera.
var ErrNoCamera = errors.New("no camera configured")

// Config holds configuration options for the application.
type Config struct {
	// Store is optional. When set, sessions are persisted.
	Store *store.Store
	// Camera and Detector are required by Start only; ProcessFrame works
	// without them.
	Camera   capture.Camera
	Detector detector.Detector
	// FrameWidth and FrameHeight scale landmark distances. They default to
	// the camera's size; zero with no camera keeps normalized coordinates.
	FrameWidth  int
	FrameHeight int

	Thresholds gesture.Thresholds
	Timing     signal.Timing

	// Dispatcher delivers alerts. Nil logs and drops them.
	Dispatcher *alert.Dispatcher
	Clock      clockwork.Clock
	Logger     *slog.Logger
}

// Status is the display view of the current session.
type Status struct {
	signal.Snapshot
	SessionID string `json:"session_id"`
}

// App is the main application that runs one tracking session at a time.
type App struct {
	config     Config
	clock      clockwork.Clock
	logger     *slog.Logger
	recognizer *gesture.Recognizer
	dispatcher *alert.Dispatcher

	mu        sync.RWMutex
	enabled   bool
	machine   *signal.Machine
	sessionID string
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Thresholds == (gesture.Thresholds{}) {
		config.Thresholds = gesture.DefaultThresholds()
	}
	if config.Timing == (signal.Timing{}) {
		config.Timing = signal.DefaultTiming()
	}
	if config.FrameWidth == 0 && config.FrameHeight == 0 && config.Camera != nil {
		config.FrameWidth, config.FrameHeight = config.Camera.Size()
	}
	if config.Dispatcher == nil {
		config.Dispatcher = alert.NewDispatcher(alert.DispatcherConfig{Logger: config.Logger})
	}

	extractor := gesture.NewExtractor(config.FrameWidth, config.FrameHeight)

	return &App{
		config:     config,
		clock:      config.Clock,
		logger:     config.Logger,
		recognizer: gesture.NewRecognizer(extractor, gesture.NewClassifier(config.Thresholds), config.Logger),
		dispatcher: config.Dispatcher,
		enabled:    true,
		machine:    signal.NewMachine(config.Timing),
	}
}

// BeginSession starts a fresh session with its own id and a NORMAL state
// machine, replacing any previous one.
func (a *App) BeginSession(source string) (string, error) {
	id := uuid.New().String()

	if a.config.Store != nil {
		sess := &store.Session{ID: id, Source: source, StartedAt: a.clock.Now()}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
	}

	a.mu.Lock()
	a.machine = signal.NewMachine(a.config.Timing)
	a.sessionID = id
	a.mu.Unlock()

	a.logger.Info("session started", "session_id", id, "source", source)
	return id, nil
}

// EndSession marks the current session as finished.
func (a *App) EndSession() {
	a.mu.Lock()
	id := a.sessionID
	a.sessionID = ""
	a.mu.Unlock()

	if id == "" {
		return
	}

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().End(id, a.clock.Now()); err != nil {
			a.logger.Warn("failed to end session", "session_id", id, "error", err)
		}
	}
	a.logger.Info("session ended", "session_id", id)
}

// ProcessFrame runs one frame's hands through recognition and the state
// machine at time now. Frames must be passed in timestamp order from a
// single goroutine. A transition out of ARMED into TRIGGERED hands one alert
// to the dispatcher and returns without waiting for it.
func (a *App) ProcessFrame(now time.Time, hands []detector.HandLandmarks) signal.Transition {
	a.mu.RLock()
	m, sessionID := a.machine, a.sessionID
	a.mu.RUnlock()

	frame := a.recognizer.Frame(hands)
	metrics.FramesProcessed.Inc()
	if frame.Rejected > 0 {
		metrics.HandsRejected.Add(float64(frame.Rejected))
	}

	tr := m.Update(frame, now)
	if !tr.Changed() {
		return tr
	}

	metrics.StateTransitions.WithLabelValues(string(tr.From), string(tr.To), string(tr.Reason)).Inc()
	a.logger.Info("signal state changed",
		"session_id", sessionID,
		"from", tr.From,
		"to", tr.To,
		"reason", tr.Reason,
	)

	if tr.Dispatch() {
		a.logger.Warn("distress signal detected", "session_id", sessionID)
		a.dispatcher.Dispatch(alert.NewAlert(sessionID, now))
	}

	return tr
}

// Status returns the current session's display view. Safe for concurrent use.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Status{
		Snapshot:  a.machine.Snapshot(),
		SessionID: a.sessionID,
	}
}

// SessionID returns the current session id, empty between sessions.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// SetEnabled enables or disables frame processing. While disabled, frames
// are neither read nor evaluated.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether the capture loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Start opens the camera, begins a new session and runs the capture loop.
func (a *App) Start() error {
	if a.config.Camera == nil || a.config.Detector == nil {
		return ErrNoCamera
	}
	if a.IsRunning() {
		return nil
	}

	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	if _, err := a.BeginSession(store.SourceCamera); err != nil {
		a.config.Camera.Close()
		return err
	}

	a.mu.Lock()
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	stop, done := a.stopCh, a.doneCh
	a.mu.Unlock()

	go a.runPipeline(stop, done)

	a.logger.Info("detection pipeline started", "fps", a.config.Camera.FPS())
	return nil
}

// Stop halts the capture loop, then releases the camera and the detector
// and ends the session. Alerts already handed to the dispatcher keep going.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done

	if err := a.config.Camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "error", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		a.logger.Warn("error closing detector", "error", err)
	}

	a.EndSession()
	a.logger.Info("detection pipeline stopped")
}

// Shutdown stops the loop and waits up to ctx for in-flight alerts.
func (a *App) Shutdown(ctx context.Context) error {
	a.Stop()
	return a.dispatcher.Wait(ctx)
}
