package timing

import (
	"math"
	"testing"
	"time"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAdvanceScaledAndUnscaled(t *testing.T) {
	tm := New()
	tm.SetTimeScale(0.5)

	tm.Advance(0.1)
	tm.Advance(0.2)

	if !almost(tm.UnscaledDeltaTime(), 0.2) || !almost(tm.DeltaTime(), 0.1) {
		t.Errorf("delta = %v scaled / %v unscaled", tm.DeltaTime(), tm.UnscaledDeltaTime())
	}
	if !almost(tm.UnscaledTimeSinceAppLoad(), 0.3) || !almost(tm.TimeSinceAppLoad(), 0.15) {
		t.Errorf("app time = %v scaled / %v unscaled", tm.TimeSinceAppLoad(), tm.UnscaledTimeSinceAppLoad())
	}
	if !almost(tm.UnscaledTimeSinceSceneLoad(), 0.3) || !almost(tm.TimeSinceSceneLoad(), 0.15) {
		t.Errorf("scene time = %v scaled / %v unscaled", tm.TimeSinceSceneLoad(), tm.UnscaledTimeSinceSceneLoad())
	}
}

func TestResetSceneTimeKeepsAppTime(t *testing.T) {
	tm := New()
	tm.Advance(1)
	tm.ResetSceneTime()
	tm.Advance(0.25)

	if !almost(tm.TimeSinceSceneLoad(), 0.25) {
		t.Errorf("scene time = %v, want 0.25", tm.TimeSinceSceneLoad())
	}
	if !almost(tm.TimeSinceAppLoad(), 1.25) {
		t.Errorf("app time = %v, want 1.25", tm.TimeSinceAppLoad())
	}
}

func TestNegativeInputsClamp(t *testing.T) {
	tm := New()
	tm.SetTimeScale(-2)
	if tm.TimeScale() != 0 {
		t.Errorf("time scale = %v, want 0", tm.TimeScale())
	}
	tm.SetTimeScale(1)
	tm.Advance(-1)
	if tm.UnscaledDeltaTime() != 0 || tm.TimeSinceAppLoad() != 0 {
		t.Errorf("negative dt leaked into the clock")
	}
}

func TestFrameLimiterUncapped(t *testing.T) {
	f := &FrameLimiter{limit: func() int { return 0 }}
	start := time.Now()
	f.Wait()
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("uncapped Wait blocked")
	}
	if f.Target() != 0 {
		t.Errorf("Target = %v, want 0", f.Target())
	}
}

func TestFrameLimiterPacesFrames(t *testing.T) {
	f := &FrameLimiter{limit: func() int { return 100 }}
	if f.Target() != 10*time.Millisecond {
		t.Fatalf("Target = %v", f.Target())
	}
	start := time.Now()
	for i := 0; i < 3; i++ {
		f.Wait()
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("3 frames at 100fps took %v", elapsed)
	}
}

func TestFrameLimiterResyncsAfterStall(t *testing.T) {
	f := &FrameLimiter{limit: func() int { return 100 }}
	f.deadline = time.Now().Add(-time.Second)
	start := time.Now()
	f.Wait()
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("Wait after a stall blocked")
	}
	if !f.deadline.After(start) {
		t.Errorf("deadline %v still behind the clock", f.deadline)
	}
}
