package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a host command, not a physical key
type Action int

const (
	ActionRestart Action = iota
	ActionToggleCompact
	ActionToggleStats
	ActionToggleFloor
	ActionQuit
	ActionCount // sentinel for array sizing
)

var actionNames = [ActionCount]string{
	ActionRestart:       "restart",
	ActionToggleCompact: "toggle-compact",
	ActionToggleStats:   "toggle-stats",
	ActionToggleFloor:   "toggle-floor",
	ActionQuit:          "quit",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Manager maps keys to actions and tracks per-frame press edges.
// Key events arrive from the GLFW callback; the host reads edges once per frame
// and then calls PostUpdate.
type Manager struct {
	mu sync.RWMutex

	keyToActions map[glfw.Key][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool
}

// NewManager creates a Manager with the default bindings:
// R restart, C compact layout, F3 stats overlay, F2 floor wireframe, Esc quit.
func NewManager() *Manager {
	m := &Manager{keyToActions: make(map[glfw.Key][]Action)}
	m.BindKey(glfw.KeyR, ActionRestart)
	m.BindKey(glfw.KeyC, ActionToggleCompact)
	m.BindKey(glfw.KeyF3, ActionToggleStats)
	m.BindKey(glfw.KeyF2, ActionToggleFloor)
	m.BindKey(glfw.KeyEscape, ActionQuit)
	return m
}

// BindKey binds key to action. A key may drive several actions.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes every action bound to key
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// HandleKeyEvent records a key transition
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pressed := action == glfw.Press || action == glfw.Repeat
	for _, act := range m.keyToActions[key] {
		if pressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		m.currentState[act] = pressed
	}
}

// PostUpdate clears the press edges; call it once at the end of each frame
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.justPressed[:])
}

// IsActive reports whether the action's key is held down
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState[action]
}

// JustPressed reports whether the action was pressed during the current frame
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}
