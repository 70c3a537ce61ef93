package limiter

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"

	// SafetyMargin is added to every reset wait; client and server clocks drift.
	SafetyMargin = 60 * time.Second
)

// State is the quota snapshot carried by one response.
type State struct {
	Remaining    int
	Reset        time.Time
	HasRemaining bool
	HasReset     bool
}

func ParseState(h http.Header) State {
	var s State
	if raw := strings.TrimSpace(h.Get(HeaderRemaining)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			s.Remaining = n
			s.HasRemaining = true
		}
	}
	if raw := strings.TrimSpace(h.Get(HeaderReset)); raw != "" {
		if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.Reset = time.Unix(epoch, 0)
			s.HasReset = true
		}
	}
	return s
}

// Exhausted is true only when the server said zero (or fewer) calls remain.
func (s State) Exhausted() bool {
	return s.HasRemaining && s.Remaining <= 0
}

// RemainingString renders the remaining count for log lines.
func (s State) RemainingString() string {
	if !s.HasRemaining {
		return "unknown"
	}
	return strconv.Itoa(s.Remaining)
}

// SleepDuration is reset - now + SafetyMargin in whole seconds, never negative.
func SleepDuration(reset, now time.Time) time.Duration {
	d := time.Duration(reset.Unix()-now.Unix())*time.Second + SafetyMargin
	if d < 0 {
		return 0
	}
	return d
}

// SleepContext waits for d on a timer and returns early with ctx.Err().
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResetWaiter suspends the caller until the quota window resets.
type ResetWaiter struct {
	Now      func() time.Time
	Sleep    func(ctx context.Context, d time.Duration) error
	Fallback time.Duration
}

func NewResetWaiter(fallback time.Duration) *ResetWaiter {
	return &ResetWaiter{
		Now:      time.Now,
		Sleep:    SleepContext,
		Fallback: fallback,
	}
}

// Duration returns how long Wait would block for s.
func (w *ResetWaiter) Duration(s State) time.Duration {
	if !s.Exhausted() {
		return 0
	}
	if !s.HasReset {
		return w.Fallback
	}
	return SleepDuration(s.Reset, w.Now())
}

// Wait blocks for Duration(s). It returns the planned duration even when
// ctx ends the wait early.
func (w *ResetWaiter) Wait(ctx context.Context, s State) (time.Duration, error) {
	d := w.Duration(s)
	if d <= 0 {
		return 0, nil
	}
	return d, w.Sleep(ctx, d)
}
