package input

import (
	"sync"
)

// Action represents a logical engine action, not a physical key
type Action int

const (
	// ActionConfirm leaves the start screen.
	ActionConfirm Action = iota
	// ActionPause toggles the pause overlay.
	ActionPause
	// ActionReload restarts the level when the scene asks for it.
	ActionReload
	ActionMoveForward
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionToggleWireframe
	ActionToggleProfiling
	ActionCount // Sentinel value for array sizing
)

// KeyState reports whether a physical key is currently held.
type KeyState interface {
	KeyPressed(key Key) bool
}

// Manager maps physical keys to logical actions and tracks per-frame edges.
type Manager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[Key][]Action

	currentState [ActionCount]bool
	prevState    [ActionCount]bool

	// Just pressed/released flags, valid until the next Poll
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager creates a Manager with the default key bindings.
func NewManager() *Manager {
	m := &Manager{
		keyToActions: make(map[Key][]Action),
	}

	m.BindKey(KeySpace, ActionConfirm)
	m.BindKey(KeyEscape, ActionPause)
	m.BindKey(KeyE, ActionReload)
	m.BindKey(KeyW, ActionMoveForward)
	m.BindKey(KeyUp, ActionMoveForward)
	m.BindKey(KeyS, ActionMoveBackward)
	m.BindKey(KeyDown, ActionMoveBackward)
	m.BindKey(KeyA, ActionMoveLeft)
	m.BindKey(KeyLeft, ActionMoveLeft)
	m.BindKey(KeyD, ActionMoveRight)
	m.BindKey(KeyRight, ActionMoveRight)
	m.BindKey(KeySpace, ActionMoveUp)
	m.BindKey(KeyLeftShift, ActionMoveDown)
	m.BindKey(KeyF, ActionToggleWireframe)
	m.BindKey(KeyV, ActionToggleProfiling)

	return m
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (m *Manager) BindKey(key Key, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (m *Manager) UnbindKey(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keyToActions, key)
}

// Poll samples every bound key and recomputes action state and edges. The
// Application calls it once per frame, after the window processed events.
func (m *Manager) Poll(keys KeyState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next [ActionCount]bool
	for key, actions := range m.keyToActions {
		if !keys.KeyPressed(key) {
			continue
		}
		for _, act := range actions {
			next[act] = true
		}
	}

	for i := range ActionCount {
		m.prevState[i] = m.currentState[i]
		m.currentState[i] = next[i]
		m.justPressed[i] = next[i] && !m.prevState[i]
		m.justReleased[i] = !next[i] && m.prevState[i]
	}
}

// Reset forgets all held keys, so a key held across a scene change does not
// produce an edge afterwards.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = [ActionCount]bool{}
	m.prevState = [ActionCount]bool{}
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

// IsActive returns true if the action is currently being held down
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.justReleased[action]
}
