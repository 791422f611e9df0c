// Package botutil provides small helpers shared across the engine:
// performance timing, rate limiting, clamping, and panic-safe goroutines.
//
// Timer objects are used around the capture and match heavy operations
// (screenshot, template search, OCR) so that slow iterations show up in
// the debug log with a name attached.
//
// SafeGo wraps every long-lived goroutine in the process. A panic inside
// a worker must never take the whole application down; it is logged and
// the goroutine terminates while the rest of the bot keeps running.
package botutil

import (
	"fmt"
	"sync"
	"time"

	"osbc/internal/logging"
)

// Timer provides performance timing functionality.
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Log logs the elapsed time with the timer name.
func (t *Timer) Log() {
	logging.Debug("Timer [%s]: %v", t.name, t.Elapsed())
}

// FormatDuration formats a duration into a human-readable string.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Clamp restricts a value between min and max.
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampFloat restricts a float value between min and max.
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SafeGo runs a function in a goroutine with panic recovery. The name
// identifies the goroutine in the panic log.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Panic recovered in %s: %v", name, r)
			}
		}()
		fn()
	}()
}

// RateLimiter enforces a minimum interval between operations.
type RateLimiter struct {
	lastExec time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the specified interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
	}
}

// Allow checks if enough time has passed since the last execution.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastExec) >= rl.interval {
		rl.lastExec = now
		return true
	}
	return false
}

// Reset resets the rate limiter.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.lastExec = time.Time{}
}
