package alert

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/handsignal/internal/metrics"
)

// DefaultTimeout bounds a single send.
const DefaultTimeout = 5 * time.Second

// Delivery results, used as metric labels and recorded outcomes.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
)

// ErrNoNotifier is recorded for alerts raised while delivery is disabled.
var ErrNoNotifier = errors.New("no notifier configured")

// Recorder persists the outcome of a send. err is nil when delivered.
type Recorder interface {
	RecordAlert(a Alert, err error) error
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Notifier receives alerts. Nil disables delivery; alerts are still
	// logged and recorded.
	Notifier Notifier
	// Timeout bounds each send (default: DefaultTimeout).
	Timeout time.Duration
	// Recorder is optional.
	Recorder Recorder
	Logger   *slog.Logger
}

// Dispatcher fires alerts asynchronously. Each Dispatch starts an
// independent goroutine; the caller never waits for it and a failure is
// never retried.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		notifier: cfg.Notifier,
		timeout:  timeout,
		recorder: cfg.Recorder,
		logger:   logger,
	}
}

// Dispatch sends a in the background and returns immediately.
func (d *Dispatcher) Dispatch(a Alert) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(a)
	}()
}

// Wait blocks until every in-flight send has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) send(a Alert) {
	logger := d.logger.With("session_id", a.SessionID, "timestamp", a.Timestamp)

	if d.notifier == nil {
		metrics.AlertsTotal.WithLabelValues(ResultSkipped).Inc()
		logger.Warn("distress alert raised but no notifier is configured")
		d.record(logger, a, ErrNoNotifier)
		return
	}

	// Detached from the frame loop: tearing the pipeline down does not
	// cancel a send already in flight.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Notify(ctx, a)
	metrics.AlertDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AlertsTotal.WithLabelValues(ResultFailed).Inc()
		logger.Error("distress alert delivery failed", "error", err)
	} else {
		metrics.AlertsTotal.WithLabelValues(ResultDelivered).Inc()
		logger.Info("distress alert delivered", "duration", time.Since(start))
	}

	d.record(logger, a, err)
}

func (d *Dispatcher) record(logger *slog.Logger, a Alert, sendErr error) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordAlert(a, sendErr); err != nil {
		logger.Warn("failed to record alert", "error", err)
	}
}
