package skin

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

// Theme holds the prices and currency symbol the narrative refers to.
type Theme struct {
	PausePrice  float64
	TargetPrice float64
	Currency    string
}

// Avatar is the dragon-riding skin. It implements the engine observer
// contract and only reacts to mode and outcome transitions.
type Avatar struct {
	theme Theme
	mixer *Mixer
	log   zerolog.Logger
	now   func() time.Time

	mu        sync.Mutex
	state     State
	prevClose *float64
}

// NewAvatar creates the skin. mixer may be nil to run silently.
func NewAvatar(theme Theme, mixer *Mixer, log zerolog.Logger) *Avatar {
	if theme.Currency == "" {
		theme.Currency = "₹"
	}
	return &Avatar{
		theme: theme,
		mixer: mixer,
		log:   log,
		now:   time.Now,
		state: initialState(),
	}
}

// State returns a copy of the skin state.
func (a *Avatar) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Events = append([]GameEvent(nil), a.state.Events...)
	if a.state.RideStartIndex != nil {
		v := *a.state.RideStartIndex
		s.RideStartIndex = &v
	}
	if a.state.RideEndIndex != nil {
		v := *a.state.RideEndIndex
		s.RideEndIndex = &v
	}
	return s
}

// OnEvent updates the skin from an engine event.
func (a *Avatar) OnEvent(evt model.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.LastMode = evt.Mode
	switch evt.Kind {
	case model.EventBarRevealed:
		if evt.Bar != nil {
			a.onPriceLocked(evt.Index, evt.Bar.Close)
		}
	case model.EventGuessEvaluated:
		if evt.Outcome != nil {
			a.onGuessLocked(*evt.Outcome)
		}
	case model.EventGameOver:
		a.play(CueGameOver, 0.6, false)
	case model.EventReset:
		if a.mixer != nil {
			a.mixer.StopAll()
		}
		a.state = initialState()
		a.prevClose = nil
	}
}

func (a *Avatar) onGuessLocked(out model.GuessOutcome) {
	next := out.NextBar.Close
	above := next > a.theme.TargetPrice
	target := a.money(a.theme.TargetPrice)

	var ps PlayerState
	var et EventType
	switch {
	case out.Guess == model.Up && above:
		ps, et = Riding, EventMount
		a.state.Narrative = fmt.Sprintf("You successfully mounted Toruk Makto! The dragon soars above %s!", target)
		a.play(CueSuccess, 0.6, false)
		a.play(CueRiding, 0.4, true)
	case out.Guess == model.Up:
		ps, et = Fallen, EventFall
		a.state.Narrative = fmt.Sprintf("The dragon shakes you off mid-flight! You fall as the price stays below %s.", target)
		a.play(CueFallen, 0.6, false)
	case !above:
		ps, et = Waiting, EventSuccess
		a.state.Narrative = fmt.Sprintf("You smugly walk away as the dragon dips below %s. Wise choice!", target)
		a.play(CueSuccess, 0.6, false)
	default:
		ps, et = Missed, EventMiss
		a.state.Narrative = fmt.Sprintf("The dragon soars past %s while you watch from below. You missed your chance!", target)
	}

	a.appendEventLocked(et, out.Index, next)
	a.trackRideLocked(ps, out.Index)
	a.state.PlayerState = ps

	intensity := math.Min(1, math.Abs(next-a.theme.PausePrice)/50)
	if intensity == 0 {
		intensity = 0.5
	}
	a.state.DragonIntensity = intensity
}

// onPriceLocked applies the continuous rules as each bar is drawn. These
// transitions are silent apart from ending the riding loop.
func (a *Avatar) onPriceLocked(index int, price float64) {
	prev := a.prevClose
	a.prevClose = &price
	target := a.theme.TargetPrice

	switch {
	case a.state.PlayerState == Riding && price < target:
		a.trackRideLocked(Fallen, index)
		a.state.PlayerState = Fallen
		a.state.Narrative = fmt.Sprintf("The dragon dives below %s! You lose your grip and fall!", a.money(target))
		a.appendEventLocked(EventFall, index, price)
	case a.state.PlayerState == Waiting && prev != nil && *prev < target && price > target:
		a.state.PlayerState = Missed
		a.state.Narrative = fmt.Sprintf("The dragon soars above %s without you!", a.money(target))
		a.appendEventLocked(EventMiss, index, price)
	case prev != nil:
		a.state.DragonIntensity = math.Max(0.3, math.Min(1, math.Abs(price-*prev)/10))
	}
}

func (a *Avatar) trackRideLocked(next PlayerState, index int) {
	cur := a.state.PlayerState
	switch {
	case next == Riding && cur != Riding:
		i := index
		a.state.RideStartIndex = &i
		a.state.RideEndIndex = nil
	case next != Riding && cur == Riding:
		i := index
		a.state.RideEndIndex = &i
		if a.mixer != nil {
			a.mixer.Stop(CueRiding)
		}
	}
}

func (a *Avatar) appendEventLocked(t EventType, x int, y float64) {
	a.state.Events = append(a.state.Events, GameEvent{
		Type:      t,
		Timestamp: a.now(),
		Position:  Position{X: x, Y: y},
	})
}

func (a *Avatar) play(cue Cue, volume float64, loop bool) {
	if a.mixer == nil {
		return
	}
	a.mixer.Play(cue, volume, loop)
}

func (a *Avatar) money(v float64) string {
	return fmt.Sprintf("%s%.0f", a.theme.Currency, v)
}
