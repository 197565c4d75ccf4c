package timing

// Timing tracks per-frame delta time and accumulated elapsed time, both
// scaled by TimeScale and unscaled. The Application advances it exactly once
// per frame; everything else only reads it.
type Timing struct {
	deltaTime         float64
	unscaledDeltaTime float64

	timeSinceAppLoad         float64
	unscaledTimeSinceAppLoad float64

	timeSinceSceneLoad         float64
	unscaledTimeSinceSceneLoad float64

	timeScale float64
}

func New() *Timing {
	return &Timing{timeScale: 1}
}

// Advance moves the clock forward by dt seconds of wall time.
func (t *Timing) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	scaled := dt * t.timeScale

	t.unscaledDeltaTime = dt
	t.deltaTime = scaled
	t.timeSinceAppLoad += scaled
	t.unscaledTimeSinceAppLoad += dt
	t.timeSinceSceneLoad += scaled
	t.unscaledTimeSinceSceneLoad += dt
}

// ResetSceneTime zeroes both scene-relative accumulators.
func (t *Timing) ResetSceneTime() {
	t.timeSinceSceneLoad = 0
	t.unscaledTimeSinceSceneLoad = 0
}

// SetTimeScale sets the multiplier for scaled time. Negative values clamp to 0.
func (t *Timing) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	t.timeScale = scale
}

func (t *Timing) TimeScale() float64                  { return t.timeScale }
func (t *Timing) DeltaTime() float64                  { return t.deltaTime }
func (t *Timing) UnscaledDeltaTime() float64          { return t.unscaledDeltaTime }
func (t *Timing) TimeSinceAppLoad() float64           { return t.timeSinceAppLoad }
func (t *Timing) UnscaledTimeSinceAppLoad() float64   { return t.unscaledTimeSinceAppLoad }
func (t *Timing) TimeSinceSceneLoad() float64         { return t.timeSinceSceneLoad }
func (t *Timing) UnscaledTimeSinceSceneLoad() float64 { return t.unscaledTimeSinceSceneLoad }
