package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsignal/internal/alert"
	"github.com/ayusman/handsignal/internal/config"
	"github.com/ayusman/handsignal/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "handsignal",
	Short: "Distress hand signal detector",
	Long: `handsignal watches a camera for the distress hand signal: four fingers
raised with the thumb tucked, then closed into a fist. A completed signal
raises one alert to the configured webhook or command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.handsignal/config.yaml)")

	rootCmd.AddCommand(runCmd, replayCmd, versionCmd)
}

// setup loads the configuration and installs the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return cfg, logger, nil
}

// newNotifier builds the alert targets named in cfg; nil when none are.
func newNotifier(cfg config.AlertConfig, logger *slog.Logger) alert.Notifier {
	var targets alert.Multi
	if cfg.Endpoint != "" {
		targets = append(targets, alert.NewWebhookNotifier(cfg.Endpoint, cfg.Timeout, logger))
	}
	if cfg.Command != "" {
		targets = append(targets, alert.NewCommandNotifier(cfg.Command, cfg.Timeout))
	}

	switch len(targets) {
	case 0:
		return nil
	case 1:
		return targets[0]
	default:
		return targets
	}
}

// drain waits for in-flight alerts, bounded by the alert timeout.
func drain(wait func(context.Context) error, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout+time.Second)
	defer cancel()

	if err := wait(ctx); err != nil {
		logger.Warn("alerts still in flight at exit", "error", err)
	}
}
