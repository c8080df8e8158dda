package skin

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

type sinkRecorder struct {
	cmds []SoundCommand
}

func (s *sinkRecorder) Sound(cmd SoundCommand) { s.cmds = append(s.cmds, cmd) }

func (s *sinkRecorder) played() []Cue {
	var out []Cue
	for _, c := range s.cmds {
		if c.Play {
			out = append(out, c.Cue)
		}
	}
	return out
}

type staticPref bool

func (p staticPref) SoundEnabled(context.Context) (bool, error) { return bool(p), nil }

func newTestAvatar(enabled bool) (*Avatar, *sinkRecorder) {
	sink := &sinkRecorder{}
	mixer := NewMixer(sink, zerolog.Nop())
	mixer.Load(context.Background(), staticPref(enabled))
	a := NewAvatar(Theme{PausePrice: 390, TargetPrice: 400}, mixer, zerolog.Nop())
	a.now = func() time.Time { return time.Unix(1700000000, 0) }
	return a, sink
}

func guessEvent(index int, guess model.Direction, next float64) model.Event {
	out := model.GuessOutcome{
		Index:   index,
		Guess:   guess,
		NextBar: model.Bar{Close: next},
	}
	out.Actual = model.Down
	if next > 400 {
		out.Actual = model.Up
	}
	out.IsCorrect = out.Actual == guess
	return model.Event{Kind: model.EventGuessEvaluated, Mode: model.ModePausedForGuess, Index: index, Outcome: &out}
}

func barEvent(index int, close float64) model.Event {
	b := model.Bar{Close: close}
	return model.Event{Kind: model.EventBarRevealed, Mode: model.ModeRunning, Index: index, Bar: &b}
}

func TestAvatar_GuessOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		guess     model.Direction
		next      float64
		state     PlayerState
		event     EventType
		wantCues  []Cue
		intensity float64
	}{
		{"up and above", model.Up, 420, Riding, EventMount, []Cue{CueSuccess, CueRiding}, 0.6},
		{"up and below", model.Up, 395, Fallen, EventFall, []Cue{CueFallen}, 0.1},
		{"down and below", model.Down, 380, Waiting, EventSuccess, []Cue{CueSuccess}, 0.2},
		{"down and above", model.Down, 450, Missed, EventMiss, nil, 1},
		{"next equals pause", model.Down, 390, Waiting, EventSuccess, []Cue{CueSuccess}, 0.5},
	}
	for _, tt := range tests {
		a, sink := newTestAvatar(true)
		a.OnEvent(guessEvent(5, tt.guess, tt.next))
		s := a.State()
		if s.PlayerState != tt.state {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.state, s.PlayerState)
		}
		if len(s.Events) != 1 || s.Events[0].Type != tt.event {
			t.Errorf("%s: expected one %s event, got %+v", tt.name, tt.event, s.Events)
		} else if s.Events[0].Position != (Position{X: 5, Y: tt.next}) {
			t.Errorf("%s: unexpected position %+v", tt.name, s.Events[0].Position)
		}
		if s.Narrative == "" {
			t.Errorf("%s: expected narrative", tt.name)
		}
		got := sink.played()
		if len(got) != len(tt.wantCues) {
			t.Errorf("%s: expected cues %v, got %v", tt.name, tt.wantCues, got)
		} else {
			for i := range got {
				if got[i] != tt.wantCues[i] {
					t.Errorf("%s: cue %d: expected %s, got %s", tt.name, i, tt.wantCues[i], got[i])
				}
			}
		}
		if diff := s.DragonIntensity - tt.intensity; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: expected intensity %.2f, got %.2f", tt.name, tt.intensity, s.DragonIntensity)
		}
	}
}

func TestAvatar_RideTracking(t *testing.T) {
	a, sink := newTestAvatar(true)
	a.OnEvent(guessEvent(3, model.Up, 410))
	s := a.State()
	if s.RideStartIndex == nil || *s.RideStartIndex != 3 || s.RideEndIndex != nil {
		t.Fatalf("expected ride start at 3, got %v/%v", s.RideStartIndex, s.RideEndIndex)
	}

	// Still riding on the next reveal above target.
	a.OnEvent(barEvent(4, 410))
	a.OnEvent(barEvent(5, 405))
	if a.State().PlayerState != Riding {
		t.Fatalf("expected still riding, got %s", a.State().PlayerState)
	}

	// Dropping below target throws the rider off.
	a.OnEvent(barEvent(6, 398))
	s = a.State()
	if s.PlayerState != Fallen {
		t.Fatalf("expected fallen, got %s", s.PlayerState)
	}
	if s.RideEndIndex == nil || *s.RideEndIndex != 6 {
		t.Fatalf("expected ride end at 6, got %v", s.RideEndIndex)
	}
	if last := s.Events[len(s.Events)-1]; last.Type != EventFall || last.Position.X != 6 {
		t.Errorf("expected fall event at 6, got %+v", last)
	}
	if a.mixer.Playing(CueRiding) {
		t.Error("riding loop should stop when the ride ends")
	}
	if got := sink.played(); len(got) != 2 || got[0] != CueSuccess || got[1] != CueRiding {
		t.Errorf("price-driven fall should not play a cue, got %v", got)
	}
}

func TestAvatar_MissWhileWaiting(t *testing.T) {
	a, sink := newTestAvatar(true)
	a.OnEvent(barEvent(0, 395))
	a.OnEvent(barEvent(1, 405))
	s := a.State()
	if s.PlayerState != Missed {
		t.Fatalf("expected missed, got %s", s.PlayerState)
	}
	if got := sink.played(); len(got) != 0 {
		t.Errorf("price-driven miss should be silent, got %v", got)
	}
}

func TestAvatar_IntensityFollowsMoves(t *testing.T) {
	a, _ := newTestAvatar(true)
	a.OnEvent(barEvent(0, 380))
	if got := a.State().DragonIntensity; got != 0.5 {
		t.Fatalf("first bar keeps initial intensity, got %v", got)
	}
	a.OnEvent(barEvent(1, 381))
	if got := a.State().DragonIntensity; got != 0.3 {
		t.Errorf("small move should clamp to 0.3, got %v", got)
	}
	a.OnEvent(barEvent(2, 386))
	if got := a.State().DragonIntensity; got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
	a.OnEvent(barEvent(3, 370))
	if got := a.State().DragonIntensity; got != 1 {
		t.Errorf("large move should clamp to 1, got %v", got)
	}
}

func TestAvatar_ResetAndGameOver(t *testing.T) {
	a, sink := newTestAvatar(true)
	a.OnEvent(guessEvent(1, model.Up, 420))
	a.OnEvent(model.Event{Kind: model.EventGameOver, Mode: model.ModePausedAtEnd})
	if got := sink.played(); got[len(got)-1] != CueGameOver {
		t.Errorf("expected game over cue last, got %v", got)
	}

	before := len(sink.cmds)
	a.OnEvent(model.Event{Kind: model.EventReset, Mode: model.ModeIdle})
	s := a.State()
	if s.PlayerState != Waiting || len(s.Events) != 0 || s.RideStartIndex != nil || s.DragonIntensity != 0.5 {
		t.Fatalf("reset did not restore initial state: %+v", s)
	}
	stops := 0
	for _, c := range sink.cmds[before:] {
		if !c.Play {
			stops++
		}
	}
	if stops != len(AllCues) {
		t.Errorf("expected %d stop commands, got %d", len(AllCues), stops)
	}
}

func TestMixer_RespectsPreference(t *testing.T) {
	a, sink := newTestAvatar(false)
	a.OnEvent(guessEvent(1, model.Up, 420))
	if got := sink.played(); len(got) != 0 {
		t.Fatalf("sound disabled but played %v", got)
	}
	if a.State().PlayerState != Riding {
		t.Error("state must update even when muted")
	}
}
