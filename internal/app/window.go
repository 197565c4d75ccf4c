package app

import (
	"time"

	"resonance/internal/input"
)

// Window is what the frame loop needs from the platform window.
type Window interface {
	// Size is the drawable size in pixels.
	Size() (width, height int)
	KeyPressed(key input.Key) bool
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
}

// Clock returns monotonic seconds.
type Clock func() float64

func wallClock() Clock {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}
