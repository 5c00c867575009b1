package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config key (e.g., "timing.arm_window")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if c.ListenAddr == "" {
		add("listen_addr", c.ListenAddr, "must not be empty")
	}
	if c.DataDir == "" {
		add("data_dir", c.DataDir, "must not be empty")
	}

	// Camera
	if c.Camera.DeviceID < 0 {
		add("camera.device_id", c.Camera.DeviceID, "must be non-negative")
	}
	if c.Camera.FPS <= 0 || c.Camera.FPS > 60 {
		add("camera.fps", c.Camera.FPS, "must be between 1 and 60")
	}
	if c.Camera.Width <= 0 {
		add("camera.width", c.Camera.Width, "must be positive")
	}
	if c.Camera.Height <= 0 {
		add("camera.height", c.Camera.Height, "must be positive")
	}

	// Detector
	if c.Detector.MaxHands < 1 {
		add("detector.max_hands", c.Detector.MaxHands, "must be at least 1")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		add("detector.min_confidence", c.Detector.MinConfidence, "must be between 0 and 1")
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		add("detector.min_tracking_confidence", c.Detector.MinTrackingConf, "must be between 0 and 1")
	}

	// Gesture
	if c.Gesture.SpreadRatio <= 0 {
		add("gesture.spread_ratio", c.Gesture.SpreadRatio, "must be positive")
	}
	if c.Gesture.TuckRatio <= 0 {
		add("gesture.tuck_ratio", c.Gesture.TuckRatio, "must be positive")
	}

	// Timing
	if c.Timing.ArmWindow <= 0 {
		add("timing.arm_window", c.Timing.ArmWindow, "must be positive")
	}
	if c.Timing.Tolerance <= 0 {
		add("timing.tolerance", c.Timing.Tolerance, "must be positive")
	} else if c.Timing.Tolerance >= c.Timing.ArmWindow {
		add("timing.tolerance", c.Timing.Tolerance, "must be shorter than timing.arm_window")
	}
	if c.Timing.DisplayWindow <= 0 {
		add("timing.display_window", c.Timing.DisplayWindow, "must be positive")
	}

	// Alert
	if c.Alert.Endpoint != "" {
		u, err := url.Parse(c.Alert.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("alert.endpoint", c.Alert.Endpoint, "must be an http or https URL")
		}
	}
	if c.Alert.Timeout <= 0 {
		add("alert.timeout", c.Alert.Timeout, "must be positive")
	}

	// Logging
	if !slices.Contains(ValidLogLevels(), c.Log.Level) {
		add("log.level", c.Log.Level, fmt.Sprintf("must be one of %v", ValidLogLevels()))
	}
	if !slices.Contains(ValidLogFormats(), c.Log.Format) {
		add("log.format", c.Log.Format, fmt.Sprintf("must be one of %v", ValidLogFormats()))
	}

	return errs
}
