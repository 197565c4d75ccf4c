package input

import "testing"

type heldKeys map[Key]bool

func (h heldKeys) KeyPressed(k Key) bool { return h[k] }

func TestPollEdges(t *testing.T) {
	m := NewManager()
	keys := heldKeys{}

	m.Poll(keys)
	if m.IsActive(ActionPause) || m.JustPressed(ActionPause) {
		t.Fatal("nothing held yet")
	}

	keys[KeyEscape] = true
	m.Poll(keys)
	if !m.JustPressed(ActionPause) || !m.IsActive(ActionPause) {
		t.Fatal("escape press should register an edge")
	}

	m.Poll(keys)
	if m.JustPressed(ActionPause) {
		t.Error("held key must not re-trigger")
	}
	if !m.IsActive(ActionPause) {
		t.Error("held key should stay active")
	}

	delete(keys, KeyEscape)
	m.Poll(keys)
	if !m.JustReleased(ActionPause) || m.IsActive(ActionPause) {
		t.Error("release edge missing")
	}
}

func TestMultipleKeysSameAction(t *testing.T) {
	m := NewManager()
	m.Poll(heldKeys{KeyUp: true})
	if !m.IsActive(ActionMoveForward) {
		t.Error("arrow key should drive forward")
	}
	m.Poll(heldKeys{KeyW: true, KeyUp: true})
	if m.JustPressed(ActionMoveForward) {
		t.Error("second key for an active action is not a new edge")
	}
}

func TestOneKeyManyActions(t *testing.T) {
	m := NewManager()
	m.Poll(heldKeys{KeySpace: true})
	if !m.IsActive(ActionConfirm) || !m.IsActive(ActionMoveUp) {
		t.Error("space should drive confirm and move up")
	}
}

func TestUnbindAndReset(t *testing.T) {
	m := NewManager()
	m.UnbindKey(KeyE)
	m.Poll(heldKeys{KeyE: true})
	if m.IsActive(ActionReload) {
		t.Error("unbound key still active")
	}

	m.BindKey(KeyR, ActionReload)
	m.Poll(heldKeys{KeyR: true})
	if !m.JustPressed(ActionReload) {
		t.Error("rebound key should register")
	}
	m.Reset()
	if m.IsActive(ActionReload) || m.JustPressed(ActionReload) {
		t.Error("Reset should clear state")
	}

	if m.IsActive(ActionCount) || m.JustPressed(-1) {
		t.Error("out of range actions are never active")
	}
}
