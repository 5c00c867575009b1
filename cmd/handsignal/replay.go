package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsignal/internal/alert"
	"github.com/ayusman/handsignal/internal/app"
	"github.com/ayusman/handsignal/internal/detector"
	"github.com/ayusman/handsignal/internal/store"
)

var (
	replayDryRun  bool
	replayPersist bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Run recorded frames through the detector",
	Long: `Replay feeds newline-delimited JSON frames ({"timestamp": <unix ms>,
"hands": [...]}) through recognition and the signal state machine, using the
frame timestamps as the clock, and prints every state change. Use "-" to
read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var st *store.Store
		if replayPersist {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			if st, err = store.New(cfg.DBPath()); err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()
		}

		var notifier alert.Notifier
		if !replayDryRun {
			notifier = newNotifier(cfg.Alert, logger)
		}

		dcfg := alert.DispatcherConfig{
			Notifier: notifier,
			Timeout:  cfg.Alert.Timeout,
			Logger:   logger,
		}
		if st != nil {
			dcfg.Recorder = st
		}
		dispatcher := alert.NewDispatcher(dcfg)

		a := app.New(app.Config{
			Store:       st,
			FrameWidth:  cfg.Camera.Width,
			FrameHeight: cfg.Camera.Height,
			Thresholds:  cfg.Gesture,
			Timing:      cfg.Timing,
			Dispatcher:  dispatcher,
			Logger:      logger,
		})

		stats, err := replay(a, in, cmd.OutOrStdout(), cfg.Camera.FPS)
		drain(dispatcher.Wait, cfg.Alert.Timeout, logger)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d frames, %d transitions, %d alerts\n", stats.Frames, stats.Transitions, stats.Alerts)
		return nil
	},
}

func init() {
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "do not deliver alerts")
	replayCmd.Flags().BoolVar(&replayPersist, "persist", false, "record the session and its alerts in the store")
}

// ErrOutOfOrder is returned when a recording goes back in time.
var ErrOutOfOrder = errors.New("frame timestamps out of order")

type replayStats struct {
	Frames      int
	Transitions int
	Alerts      int
}

// replay runs every frame of r through a in one session and writes each
// transition to out, timed relative to the first frame. Frames without a
// timestamp are placed one frame interval after the previous one.
func replay(a *app.App, r io.Reader, out io.Writer, fps int) (replayStats, error) {
	var stats replayStats

	if fps <= 0 {
		fps = 15
	}
	interval := int64(1000 / fps)

	if _, err := a.BeginSession(store.SourceReplay); err != nil {
		return stats, err
	}
	defer a.EndSession()

	fr := detector.NewFrameReader(r)
	var first, prev int64

	for {
		f, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		ts := f.Timestamp
		if ts == 0 {
			ts = prev + interval
		}
		if stats.Frames == 0 {
			first = ts
		} else if ts < prev {
			return stats, fmt.Errorf("%w: %d after %d", ErrOutOfOrder, ts, prev)
		}
		prev = ts
		stats.Frames++

		tr := a.ProcessFrame(time.UnixMilli(ts), f.Hands)
		if !tr.Changed() {
			continue
		}

		stats.Transitions++
		if tr.Dispatch() {
			stats.Alerts++
		}
		fmt.Fprintf(out, "%7dms  %-9s -> %-9s  %s\n", ts-first, tr.From, tr.To, tr.Reason)
	}
}
