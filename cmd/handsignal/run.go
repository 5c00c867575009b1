package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	ossignal "os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsignal/internal/alert"
	"github.com/ayusman/handsignal/internal/app"
	"github.com/ayusman/handsignal/internal/capture"
	"github.com/ayusman/handsignal/internal/config"
	"github.com/ayusman/handsignal/internal/detector"
	"github.com/ayusman/handsignal/internal/server"
	"github.com/ayusman/handsignal/internal/store"
	"github.com/ayusman/handsignal/internal/tray"
)

var withTray bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the camera and serve the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return run(cfg, logger)
	},
}

func init() {
	runCmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray indicator")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	det, err := detector.NewMediaPipeDetector(cfg.Detector, logger)
	if err != nil {
		return fmt.Errorf("hand detector unavailable: %w", err)
	}

	notifier := newNotifier(cfg.Alert, logger)
	if notifier == nil {
		logger.Warn("no alert endpoint or command configured; alerts will only be logged")
	}

	dispatcher := alert.NewDispatcher(alert.DispatcherConfig{
		Notifier: notifier,
		Timeout:  cfg.Alert.Timeout,
		Recorder: st,
		Logger:   logger,
	})

	application := app.New(app.Config{
		Store:      st,
		Camera:     capture.NewCamera(cfg.Camera),
		Detector:   det,
		Thresholds: cfg.Gesture,
		Timing:     cfg.Timing,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		logger.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Tracker:   application,
		Logger:    logger,
	})

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr)
		serveErr <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	if withTray {
		go func() {
			if err := <-serveErr; err != nil {
				logger.Error("server failed", "error", err)
				stop()
			}
		}()
		runTray(ctx, stop, application, dashboardURL(cfg.ListenAddr), logger)
	} else {
		select {
		case <-ctx.Done():
		case err = <-serveErr:
			if err != nil {
				logger.Error("server failed", "error", err)
			}
		}
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	application.Stop()
	drain(dispatcher.Wait, cfg.Alert.Timeout, logger)

	return err
}

// runTray blocks on the tray's event loop until Quit is chosen or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, url string, logger *slog.Logger) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnDashboard(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn("failed to open dashboard", "url", url, "error", err)
		}
	})
	t.OnQuit(stop)

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				st := a.Status()
				t.SetStatus(st.Status, st.DebugText)
			}
		}
	}()

	t.Run()
}

func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
