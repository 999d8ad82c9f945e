package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionAscend
	ActionDescend
	ActionBoost
	ActionReleaseCursor
	ActionToggleOverlay
	ActionToggleBoxes
	ActionToggleVSync
	ActionWorkersUp
	ActionWorkersDown
	ActionDistanceUp
	ActionDistanceDown
	ActionCount // Sentinel value for array sizing
)

// Manager maps physical keys to logical actions and tracks per-frame
// pressed/released edges. Key events may arrive from the GLFW callback
// while the frame loop reads state, hence the lock.
type Manager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[glfw.Key][]Action

	// Current state indexed by Action
	currentState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager creates a Manager with the default key bindings.
func NewManager() *Manager {
	m := &Manager{
		keyToActions: make(map[glfw.Key][]Action),
	}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionAscend)
	m.BindKey(glfw.KeyLeftShift, ActionDescend)
	m.BindKey(glfw.KeyLeftControl, ActionBoost)
	m.BindKey(glfw.KeyEscape, ActionReleaseCursor)
	m.BindKey(glfw.KeyF3, ActionToggleOverlay)
	m.BindKey(glfw.KeyF4, ActionToggleBoxes)
	m.BindKey(glfw.KeyV, ActionToggleVSync)
	m.BindKey(glfw.KeyRightBracket, ActionWorkersUp)
	m.BindKey(glfw.KeyLeftBracket, ActionWorkersDown)
	m.BindKey(glfw.KeyEqual, ActionDistanceUp)
	m.BindKey(glfw.KeyMinus, ActionDistanceDown)

	return m
}

// BindKey binds a physical key to a logical action. Multiple keys can be
// bound to the same action.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keyToActions, key)
}

// HandleKeyEvent processes a key event and updates internal state.
// Called from the GLFW key callback.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.RLock()
	actions, exists := m.keyToActions[key]
	m.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press || action == glfw.Repeat

	m.mu.Lock()
	for _, act := range actions {
		// Detect edges immediately when the event arrives
		if isPressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		if !isPressed && m.currentState[act] {
			m.justReleased[act] = true
		}
		m.currentState[act] = isPressed
	}
	m.mu.Unlock()
}

// SetKeyCallback installs the GLFW key callback for this manager.
func (m *Manager) SetKeyCallback(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
}

// PostUpdate clears the edge flags. Call once at the end of each frame,
// after all input checks are done.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := Action(0); i < ActionCount; i++ {
		m.justPressed[i] = false
		m.justReleased[i] = false
	}
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

// Axis folds a positive and negative action into a -1..1 input value.
func (m *Manager) Axis(pos, neg Action) float32 {
	var v float32
	if m.IsActive(pos) {
		v++
	}
	if m.IsActive(neg) {
		v--
	}
	return v
}
