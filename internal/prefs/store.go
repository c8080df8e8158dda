// Package prefs persists player preferences. Only one preference exists:
// whether sound is enabled. It defaults to true when nothing was stored.
package prefs

import "context"

// Store reads and writes the sound preference.
type Store interface {
	SoundEnabled(ctx context.Context) (bool, error)
	SetSoundEnabled(ctx context.Context, enabled bool) error
	ToggleSound(ctx context.Context) (bool, error)
}

// DefaultKeyPrefix namespaces preference keys.
const DefaultKeyPrefix = "biocon-"

const soundKey = "sound-enabled"
