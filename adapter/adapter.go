// Package adapter defines the boundary for publishing command completions
// to downstream systems.
//
// Adapters are optional. The dispatcher publishes one event per synchronous
// command after its response channel has been removed; a publish failure
// never changes the command's result.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// EventType is the event_type of every CommandCompletedEvent.
const EventType = "command_completed"

// CommandCompletedEvent is the payload published when a synchronous command
// finishes, whatever its outcome.
type CommandCompletedEvent struct {
	EventType  string `json:"event_type"` // always "command_completed"
	Command    string `json:"command"`
	Eq         int32  `json:"eq"`
	Slot       int32  `json:"slot,omitempty"`
	VSN        string `json:"vsn,omitempty"`
	RequestID  string `json:"request_id"`       // p<pid>t<tid>.<seq>
	Outcome    string `json:"outcome"`          // completed, failed, timed_out, etc.
	Code       int32  `json:"code"`             // daemon completion code
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Host       string `json:"host,omitempty"`
	Timestamp  string `json:"timestamp"` // RFC 3339
	DurationMs int64  `json:"duration_ms"`
}

// Adapter publishes command completion events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and
	// deadlines.
	Publish(ctx context.Context, event *CommandCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the pause before retry number n (1-based): 500ms doubled
// for each further retry.
func Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return time.Duration(1<<uint(n-1)) * 500 * time.Millisecond
}

// Retry calls fn up to 1+retries times with Backoff between attempts. It
// stops early when ctx is done or when permanent reports the error cannot
// succeed on retry. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, permanent func(error) bool, fn func(context.Context) error) error {
	attempts := 1 + retries
	var lastErr error

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}
		if i > 0 {
			t := time.NewTimer(Backoff(i))
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-t.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
