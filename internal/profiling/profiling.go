package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Frame accumulates CPU time per named bucket for the current frame.
// Bucket names are dotted, e.g. "app.Render" or "layer.RenderLayer.OnRender".
type Frame struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	start  time.Time
}

func NewFrame() *Frame {
	return &Frame{totals: make(map[string]time.Duration)}
}

// Track returns a stop function that records the elapsed time under name.
// Usage: defer frame.Track("app.Update")()
func (f *Frame) Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		f.mu.Lock()
		f.totals[name] += d
		f.mu.Unlock()
	}
}

// Reset clears the buckets and marks the start of a new frame.
func (f *Frame) Reset() {
	f.mu.Lock()
	clear(f.totals)
	f.start = time.Now()
	f.mu.Unlock()
}

// Elapsed is the wall time since the last Reset.
func (f *Frame) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.start.IsZero() {
		return 0
	}
	return time.Since(f.start)
}

func (f *Frame) Snapshot() map[string]time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]time.Duration, len(f.totals))
	for k, v := range f.totals {
		out[k] = v
	}
	return out
}

// SumWithPrefix adds up every bucket whose name starts with prefix.
func (f *Frame) SumWithPrefix(prefix string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum time.Duration
	for k, v := range f.totals {
		if strings.HasPrefix(k, prefix) {
			sum += v
		}
	}
	return sum
}

// TopN formats the n most expensive buckets, e.g. "app.Render:4.2ms, app.Update:1ms".
func (f *Frame) TopN(n int) string {
	ss := f.Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	s := fmt.Sprintf("%.1f", float64(d.Microseconds())/1000.0)
	return strings.TrimSuffix(s, ".0") + "ms"
}
