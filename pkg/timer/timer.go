package timer

import (
	"context"
	"log/slog"
	"time"
)

// SlowThreshold is the duration above which Track logs at warn level.
var SlowThreshold = 500 * time.Millisecond

// Track returns a function that, when executed, logs the duration at debug
// level, or at warn level when the call took longer than SlowThreshold.
// Usage: defer timer.Track(log, "ContactService.List")()
func Track(log *slog.Logger, name string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		level := slog.LevelDebug
		if elapsed > SlowThreshold {
			level = slog.LevelWarn
		}
		log.Log(context.Background(), level, "timing", "op", name, "duration_ms", elapsed.Milliseconds())
	}
}

// Stopwatch is useful for measuring multiple steps within one function.
type Stopwatch struct {
	log   *slog.Logger
	start time.Time
	last  time.Time
}

// NewStopwatch starts the clock.
func NewStopwatch(log *slog.Logger) *Stopwatch {
	now := time.Now()
	return &Stopwatch{log: log, start: now, last: now}
}

// Lap logs the time taken since the last Lap call and returns it.
func (s *Stopwatch) Lap(step string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now
	s.log.Debug("timing step", "step", step, "duration_ms", elapsed.Milliseconds(), "total_ms", now.Sub(s.start).Milliseconds())
	return elapsed
}

// Total logs the total time since the stopwatch started and returns it.
func (s *Stopwatch) Total(name string) time.Duration {
	total := time.Since(s.start)
	s.log.Info("timing total", "op", name, "duration_ms", total.Milliseconds())
	return total
}
