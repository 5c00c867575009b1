// Package config loads handsignal settings from defaults, an optional YAML
// file and HANDSIGNAL_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayusman/handsignal/internal/capture"
	"github.com/ayusman/handsignal/internal/detector"
	"github.com/ayusman/handsignal/internal/gesture"
	"github.com/ayusman/handsignal/internal/signal"
)

// EnvPrefix prefixes environment overrides, e.g. HANDSIGNAL_TIMING_ARM_WINDOW.
const EnvPrefix = "HANDSIGNAL"

// Config represents the complete handsignal configuration
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`
	// StaticDir serves a dashboard when set.
	StaticDir string `mapstructure:"static_dir"`

	Camera   capture.Config     `mapstructure:"camera"`
	Detector detector.Config    `mapstructure:"detector"`
	Gesture  gesture.Thresholds `mapstructure:"gesture"`
	Timing   signal.Timing      `mapstructure:"timing"`
	Alert    AlertConfig        `mapstructure:"alert"`
	Log      LogConfig          `mapstructure:"log"`
}

// AlertConfig selects where distress alerts are delivered. Both targets may
// be set; with neither, alerts are only logged and recorded.
type AlertConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Command  string        `mapstructure:"command"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DBPath returns the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "handsignal.db")
}

// DefaultDataDir returns ~/.handsignal, or .handsignal when there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handsignal"
	}
	return filepath.Join(home, ".handsignal")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DataDir:    DefaultDataDir(),
		Camera:     capture.DefaultConfig(),
		Detector:   detector.DefaultConfig(),
		Gesture:    gesture.DefaultThresholds(),
		Timing:     signal.DefaultTiming(),
		Alert: AlertConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("static_dir", defaults.StaticDir)

	// Camera defaults
	v.SetDefault("camera.device_id", defaults.Camera.DeviceID)
	v.SetDefault("camera.fps", defaults.Camera.FPS)
	v.SetDefault("camera.width", defaults.Camera.Width)
	v.SetDefault("camera.height", defaults.Camera.Height)

	// Detector defaults
	v.SetDefault("detector.max_hands", defaults.Detector.MaxHands)
	v.SetDefault("detector.min_confidence", defaults.Detector.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", defaults.Detector.MinTrackingConf)

	// Gesture defaults
	v.SetDefault("gesture.spread_ratio", defaults.Gesture.SpreadRatio)
	v.SetDefault("gesture.tuck_ratio", defaults.Gesture.TuckRatio)

	// Timing defaults
	v.SetDefault("timing.arm_window", defaults.Timing.ArmWindow)
	v.SetDefault("timing.tolerance", defaults.Timing.Tolerance)
	v.SetDefault("timing.display_window", defaults.Timing.DisplayWindow)

	// Alert defaults
	v.SetDefault("alert.endpoint", defaults.Alert.Endpoint)
	v.SetDefault("alert.command", defaults.Alert.Command)
	v.SetDefault("alert.timeout", defaults.Alert.Timeout)

	// Logging defaults
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}

// Load reads the configuration and validates it. An explicit path must
// exist; with an empty path, config.yaml is looked up in the default data
// directory and the working directory, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDataDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}
