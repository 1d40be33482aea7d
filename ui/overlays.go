package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayHUD         OverlayID = "hud"
	OverlayReserve     OverlayID = "reserve"
	OverlayGlow        OverlayID = "glow"
	OverlayHover       OverlayID = "hover_marker"
	OverlayBackdrop    OverlayID = "backdrop"
	OverlayFullDensity OverlayID = "full_density"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "H", "G")
	Category    string      // Grouping (e.g., "view", "debug")
	Default     bool        // Enabled at startup
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayHUD,
		Name:        "HUD",
		Description: "Mode, weights, bloom and burst counters",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "view",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayGlow,
		Name:        "Spark Glow",
		Description: "Halo over each live spark head",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "view",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayBackdrop,
		Name:        "Backdrop",
		Description: "Gradient tinted by the dominant shape",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "view",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayHover,
		Name:        "Hover Marker",
		Description: "Wire sphere at the pointer's plane point",
		Key:         rl.KeyM,
		KeyLabel:    "M",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayFullDensity,
		Name:        "Full Density",
		Description: "Draw every particle instead of the configured stride",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayReserve,
		Name:        "Reserve Panel",
		Description: "Reserve occupancy, burst capacity and these keys",
		Key:         rl.KeyTab,
		KeyLabel:    "Tab",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns every overlay in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor { return r.descriptors }

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// Keys returns every bound toggle key.
func (r *OverlayRegistry) Keys() []int32 {
	keys := make([]int32, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.Key != 0 {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}
