package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForChange(t *testing.T, w *Watcher, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, p := range w.Drain(0) {
			if p == want {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no change reported for %s", want)
}

func TestReportsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "basic.frag")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.AddFile(path); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := w.AddFile(path); err != nil {
		t.Fatalf("second AddFile: %v", err)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	waitForChange(t, w, abs)
}

func TestDrainHoldsUnsettledChanges(t *testing.T) {
	w := &Watcher{changed: map[string]time.Time{
		"/tmp/old.frag":   time.Now().Add(-time.Second),
		"/tmp/fresh.frag": time.Now(),
	}}
	got := w.Drain(200 * time.Millisecond)
	if len(got) != 1 || got[0] != "/tmp/old.frag" {
		t.Fatalf("Drain = %v, want only the settled file", got)
	}
	if _, ok := w.changed["/tmp/fresh.frag"]; !ok {
		t.Error("unsettled change was dropped")
	}
	if _, ok := w.changed["/tmp/old.frag"]; ok {
		t.Error("reported change was kept")
	}
}

func TestIgnoresUnwatchedSiblings(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.vert")
	other := filepath.Join(dir, "notes.txt")
	os.WriteFile(watched, []byte("x"), 0o644)

	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.AddFile(watched); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(other, []byte("y"), 0o644)
	os.WriteFile(watched, []byte("z"), 0o644)
	abs, _ := filepath.Abs(watched)
	waitForChange(t, w, abs)

	otherAbs, _ := filepath.Abs(other)
	for _, p := range w.Drain(0) {
		if p == otherAbs {
			t.Errorf("unwatched file reported")
		}
	}
}

func TestAddAfterClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := w.AddFile(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrClosed) {
		t.Errorf("AddFile after Close = %v, want ErrClosed", err)
	}
}
