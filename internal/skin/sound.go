package skin

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Cue names a sound effect.
type Cue string

const (
	CueWaiting    Cue = "waiting"
	CueRiding     Cue = "riding"
	CueFallen     Cue = "fallen"
	CueMissed     Cue = "missed"
	CueSuccess    Cue = "success"
	CueFailure    Cue = "failure"
	CueGameOver   Cue = "gameOver"
	CueSoundtrack Cue = "soundtrack"
)

// AllCues lists every cue, in the order they are stopped on reset.
var AllCues = []Cue{CueWaiting, CueRiding, CueFallen, CueMissed, CueSuccess, CueFailure, CueGameOver, CueSoundtrack}

// CueFiles maps cues to the asset paths the browser plays.
var CueFiles = map[Cue]string{
	CueWaiting:    "/sounds/waiting.mp3",
	CueRiding:     "/sounds/riding.mp3",
	CueFallen:     "/sounds/fallen.mp3",
	CueMissed:     "/sounds/missed.mp3",
	CueSuccess:    "/sounds/success.mp3",
	CueFailure:    "/sounds/failure.mp3",
	CueGameOver:   "/sounds/game-over.mp3",
	CueSoundtrack: "/sounds/soundtrack.mp3",
}

// SoundCommand instructs a client to play or stop a cue.
type SoundCommand struct {
	Cue    Cue     `json:"cue"`
	File   string  `json:"file"`
	Play   bool    `json:"play"`
	Volume float64 `json:"volume,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
}

// SoundSink receives sound commands.
type SoundSink interface {
	Sound(cmd SoundCommand)
}

// Preference reports whether sound is enabled.
type Preference interface {
	SoundEnabled(ctx context.Context) (bool, error)
}

// Mixer gates play commands on a cached sound flag. Stop commands always
// pass through. The flag is seeded by Load and kept current by Switch; Play
// never reads the preference store.
type Mixer struct {
	sink SoundSink
	log  zerolog.Logger

	enabled atomic.Bool

	mu      sync.Mutex
	playing map[Cue]bool
}

// NewMixer creates a Mixer with sound enabled.
func NewMixer(sink SoundSink, log zerolog.Logger) *Mixer {
	m := &Mixer{sink: sink, log: log, playing: make(map[Cue]bool)}
	m.enabled.Store(true)
	return m
}

// Load seeds the flag from pref. A failed read keeps the current value.
func (m *Mixer) Load(ctx context.Context, pref Preference) {
	on, err := pref.SoundEnabled(ctx)
	if err != nil {
		m.log.Warn().Err(err).Bool("enabled", m.Enabled()).Msg("read sound preference failed, keeping current setting")
		return
	}
	m.enabled.Store(on)
}

// Enabled reports the cached sound flag.
func (m *Mixer) Enabled() bool { return m.enabled.Load() }

// SetEnabled updates the flag. Disabling stops every cue.
func (m *Mixer) SetEnabled(on bool) {
	m.enabled.Store(on)
	if !on {
		m.StopAll()
	}
}

// Play starts a cue if sound is enabled.
func (m *Mixer) Play(cue Cue, volume float64, loop bool) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	m.playing[cue] = true
	m.mu.Unlock()
	m.sink.Sound(SoundCommand{Cue: cue, File: CueFiles[cue], Play: true, Volume: volume, Loop: loop})
}

// Stop halts a cue.
func (m *Mixer) Stop(cue Cue) {
	m.mu.Lock()
	delete(m.playing, cue)
	m.mu.Unlock()
	m.sink.Sound(SoundCommand{Cue: cue, File: CueFiles[cue]})
}

// StopAll halts every cue.
func (m *Mixer) StopAll() {
	for _, c := range AllCues {
		m.Stop(c)
	}
}

// Playing reports whether a cue was started and not stopped since.
func (m *Mixer) Playing(cue Cue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing[cue]
}

// PreferenceStore is a writable sound preference.
type PreferenceStore interface {
	Preference
	SetSoundEnabled(ctx context.Context, enabled bool) error
	ToggleSound(ctx context.Context) (bool, error)
}

// Switch persists the sound preference and mirrors it into the mixer.
type Switch struct {
	PreferenceStore
	Mixer *Mixer
}

func (s *Switch) SetSoundEnabled(ctx context.Context, enabled bool) error {
	if err := s.PreferenceStore.SetSoundEnabled(ctx, enabled); err != nil {
		return err
	}
	if s.Mixer != nil {
		s.Mixer.SetEnabled(enabled)
	}
	return nil
}

func (s *Switch) ToggleSound(ctx context.Context) (bool, error) {
	on, err := s.PreferenceStore.ToggleSound(ctx)
	if err != nil {
		return on, err
	}
	if s.Mixer != nil {
		s.Mixer.SetEnabled(on)
	}
	return on, nil
}
