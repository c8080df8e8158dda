package skin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

type failingPref struct{}

func (failingPref) SoundEnabled(context.Context) (bool, error) {
	return false, errors.New("store unavailable")
}

func TestMixer_PlayAndStop(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewMixer(sink, zerolog.Nop())

	m.Play(CueRiding, 0.4, true)
	if !m.Playing(CueRiding) {
		t.Fatal("expected riding to be playing")
	}
	if len(sink.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(sink.cmds))
	}
	cmd := sink.cmds[0]
	if !cmd.Play || !cmd.Loop || cmd.File != "/sounds/riding.mp3" || cmd.Volume != 0.4 {
		t.Errorf("unexpected command %+v", cmd)
	}

	m.Stop(CueRiding)
	if m.Playing(CueRiding) {
		t.Error("expected riding to be stopped")
	}
	if last := sink.cmds[len(sink.cmds)-1]; last.Play || last.Cue != CueRiding {
		t.Errorf("expected stop command, got %+v", last)
	}
}

func TestMixer_StopPassesThroughWhenMuted(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewMixer(sink, zerolog.Nop())
	m.Load(context.Background(), staticPref(false))
	m.Play(CueSuccess, 0.6, false)
	m.StopAll()
	if len(sink.cmds) != len(AllCues) {
		t.Fatalf("expected only %d stop commands, got %d", len(AllCues), len(sink.cmds))
	}
	for _, c := range sink.cmds {
		if c.Play {
			t.Errorf("unexpected play command %+v", c)
		}
	}
}

func TestMixer_PreferenceErrorKeepsSoundOn(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewMixer(sink, zerolog.Nop())
	m.Load(context.Background(), failingPref{})
	if !m.Enabled() {
		t.Fatal("failed preference read should keep sound on")
	}
	m.Play(CueGameOver, 0.6, false)
	if got := sink.played(); len(got) != 1 || got[0] != CueGameOver {
		t.Errorf("expected game over cue, got %v", got)
	}
}

type memPrefs struct{ on bool }

func (m *memPrefs) SoundEnabled(context.Context) (bool, error) { return m.on, nil }
func (m *memPrefs) SetSoundEnabled(_ context.Context, on bool) error {
	m.on = on
	return nil
}
func (m *memPrefs) ToggleSound(context.Context) (bool, error) {
	m.on = !m.on
	return m.on, nil
}

func TestSwitch_DisablingStopsAllCues(t *testing.T) {
	ctx := context.Background()
	sink := &sinkRecorder{}
	store := &memPrefs{on: true}
	m := NewMixer(sink, zerolog.Nop())
	m.Load(ctx, store)
	sw := &Switch{PreferenceStore: store, Mixer: m}

	m.Play(CueRiding, 0.4, true)
	on, err := sw.ToggleSound(ctx)
	if err != nil || on {
		t.Fatalf("expected sound off, got %v %v", on, err)
	}
	if m.Playing(CueRiding) {
		t.Error("riding should stop when sound is disabled")
	}
	if len(sink.cmds) != 1+len(AllCues) {
		t.Errorf("expected play plus %d stops, got %d commands", len(AllCues), len(sink.cmds))
	}

	before := len(sink.cmds)
	if err := sw.SetSoundEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}
	if len(sink.cmds) != before {
		t.Error("enabling sound should not emit commands")
	}
	m.Play(CueSuccess, 0.6, false)
	if got := sink.played(); got[len(got)-1] != CueSuccess {
		t.Errorf("expected success to play after re-enabling, got %v", got)
	}
}

type countingPref struct {
	on    bool
	calls atomic.Int32
}

func (p *countingPref) SoundEnabled(context.Context) (bool, error) {
	p.calls.Add(1)
	return p.on, nil
}

func TestMixer_PlayUsesCachedFlag(t *testing.T) {
	sink := &sinkRecorder{}
	pref := &countingPref{on: false}
	m := NewMixer(sink, zerolog.Nop())
	m.Load(context.Background(), pref)

	m.Play(CueSuccess, 0.6, false)
	m.Play(CueGameOver, 0.6, false)
	if got := sink.played(); len(got) != 0 {
		t.Errorf("expected no cues while muted, got %v", got)
	}
	if n := pref.calls.Load(); n != 1 {
		t.Errorf("expected a single preference read, got %d", n)
	}

	m.SetEnabled(true)
	m.Play(CueSuccess, 0.6, false)
	if got := sink.played(); len(got) != 1 || got[0] != CueSuccess {
		t.Errorf("expected success after enabling, got %v", got)
	}
}
