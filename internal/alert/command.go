package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// CommandNotifier runs a local executable per alert, writing the alert JSON
// to its stdin. A non-zero exit status is a failed delivery.
type CommandNotifier struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewCommandNotifier creates a notifier that runs path with args.
func NewCommandNotifier(path string, timeout time.Duration, args ...string) *CommandNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandNotifier{
		path:    path,
		args:    args,
		timeout: timeout,
	}
}

// Notify implements Notifier.
func (c *CommandNotifier) Notify(ctx context.Context, a Alert) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("alert command timeout after %s", c.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return fmt.Errorf("alert command failed: %w, stderr: %s", err, s)
		}
		return fmt.Errorf("alert command failed: %w", err)
	}

	return nil
}
