// Package skin layers the avatar theme over the game engine. It observes
// engine events and derives player state, narrative text, an animation
// intensity and sound cues. It never changes the game itself.
package skin

import (
	"time"

	"StockGuess/internal/model"
)

// PlayerState is the avatar's situation relative to the dragon.
type PlayerState string

const (
	Waiting PlayerState = "waiting"
	Riding  PlayerState = "riding"
	Fallen  PlayerState = "fallen"
	Missed  PlayerState = "missed"
)

// EventType labels a themed moment worth animating.
type EventType string

const (
	EventMount   EventType = "mount"
	EventFall    EventType = "fall"
	EventMiss    EventType = "miss"
	EventSuccess EventType = "success"
)

// Position locates an event on the chart: X is the bar index, Y the price.
type Position struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// GameEvent is one themed moment.
type GameEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Position  Position  `json:"position"`
}

// State is the skin's read model.
type State struct {
	PlayerState     PlayerState `json:"player_state"`
	RideStartIndex  *int        `json:"ride_start_index"`
	RideEndIndex    *int        `json:"ride_end_index"`
	Events          []GameEvent `json:"events"`
	Narrative       string      `json:"narrative"`
	DragonIntensity float64     `json:"dragon_intensity"`
	LastMode        model.Mode  `json:"last_mode"`
}

func initialState() State {
	return State{
		PlayerState:     Waiting,
		DragonIntensity: 0.5,
		LastMode:        model.ModeIdle,
	}
}
