package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestFrameBuckets(t *testing.T) {
	f := NewFrame()
	f.Reset()

	f.mu.Lock()
	f.totals["app.Update"] = 2 * time.Millisecond
	f.totals["app.Render"] = 5 * time.Millisecond
	f.totals["layer.Render.OnRender"] = 1500 * time.Microsecond
	f.mu.Unlock()

	if got := f.SumWithPrefix("app."); got != 7*time.Millisecond {
		t.Errorf("SumWithPrefix(app.) = %v, want 7ms", got)
	}

	top := f.TopN(2)
	if top != "app.Render:5ms, app.Update:2ms" {
		t.Errorf("TopN(2) = %q", top)
	}

	if all := f.TopN(10); !strings.Contains(all, "layer.Render.OnRender:1.5ms") {
		t.Errorf("TopN(10) missing layer bucket: %q", all)
	}

	f.Reset()
	if len(f.Snapshot()) != 0 {
		t.Errorf("Reset did not clear buckets")
	}
}

func TestTrackRecords(t *testing.T) {
	f := NewFrame()
	stop := f.Track("app.PreRender")
	stop()
	if _, ok := f.Snapshot()["app.PreRender"]; !ok {
		t.Fatalf("Track did not record bucket")
	}
}
