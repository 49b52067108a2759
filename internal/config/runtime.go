package config

import "sync"

// Toggles holds debug switches the host flips at runtime from key presses
type Toggles struct {
	mu        sync.RWMutex
	showStats bool
	showFloor bool
}

var globalToggles = &Toggles{}

// InitToggles seeds the runtime toggles from loaded settings
func InitToggles(r Render) {
	globalToggles.mu.Lock()
	defer globalToggles.mu.Unlock()
	globalToggles.showStats = r.ShowStats
	globalToggles.showFloor = r.ShowFloor
}

// ShowStats returns whether the stats overlay is drawn
func ShowStats() bool {
	globalToggles.mu.RLock()
	defer globalToggles.mu.RUnlock()
	return globalToggles.showStats
}

// ToggleStats flips the stats overlay and returns the new state
func ToggleStats() bool {
	globalToggles.mu.Lock()
	defer globalToggles.mu.Unlock()
	globalToggles.showStats = !globalToggles.showStats
	return globalToggles.showStats
}

// ShowFloor returns whether the floor wireframe is drawn
func ShowFloor() bool {
	globalToggles.mu.RLock()
	defer globalToggles.mu.RUnlock()
	return globalToggles.showFloor
}

// ToggleFloor flips the floor wireframe and returns the new state
func ToggleFloor() bool {
	globalToggles.mu.Lock()
	defer globalToggles.mu.Unlock()
	globalToggles.showFloor = !globalToggles.showFloor
	return globalToggles.showFloor
}
