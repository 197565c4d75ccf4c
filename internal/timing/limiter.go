package timing

import (
	"time"

	"resonance/internal/config"
)

// spinWindow is how close to the deadline Wait stops sleeping and polls.
const spinWindow = 200 * time.Microsecond

// FrameLimiter paces the main loop to the configured frame cap.
type FrameLimiter struct {
	deadline time.Time
	// limit returns the frame cap; 0 disables limiting.
	limit func() int
}

// NewFrameLimiter follows config.GetFPSLimit, so cap changes apply on the
// next frame.
func NewFrameLimiter() *FrameLimiter {
	return &FrameLimiter{limit: config.GetFPSLimit}
}

// Target is the frame duration for the current cap, or 0 when uncapped.
func (f *FrameLimiter) Target() time.Duration {
	limit := f.limit()
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// Wait returns when the current frame's slot has elapsed.
func (f *FrameLimiter) Wait() {
	frame := f.Target()
	if frame == 0 {
		f.deadline = time.Time{}
		return
	}

	if f.deadline.IsZero() {
		f.deadline = time.Now()
	}
	f.deadline = f.deadline.Add(frame)
	sleepUntil(f.deadline)

	// A frame that overran by more than a slot starts a fresh schedule
	// instead of rushing the missed ones.
	if now := time.Now(); now.Sub(f.deadline) > frame {
		f.deadline = now.Add(frame)
	}
}

// sleepUntil sleeps to within spinWindow of t and polls the rest.
func sleepUntil(t time.Time) {
	for left := time.Until(t); left > 0; left = time.Until(t) {
		if left > spinWindow {
			time.Sleep(left - spinWindow)
		}
	}
}
