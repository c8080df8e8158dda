package model

import "fmt"

// Direction is a player's prediction for the next bar.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Mode is the playback state machine's current phase.
type Mode string

const (
	ModeIdle           Mode = "IDLE"
	ModeRunning        Mode = "RUNNING"
	ModePaused         Mode = "PAUSED"
	ModePausedForGuess Mode = "PAUSED_FOR_GUESS"
	ModePausedAtEnd    Mode = "PAUSED_AT_END"
)

// Score accumulates guess results. CorrectGuesses never exceeds TotalGuesses.
type Score struct {
	CorrectGuesses int `json:"correct_guesses"`
	TotalGuesses   int `json:"total_guesses"`
	Points         int `json:"points"`
}

// Accuracy returns the fraction of correct guesses (0 when none were made).
func (s Score) Accuracy() float64 {
	if s.TotalGuesses == 0 {
		return 0
	}
	return float64(s.CorrectGuesses) / float64(s.TotalGuesses)
}

// GuessOutcome is the result of one evaluated guess.
type GuessOutcome struct {
	Index     int       `json:"index"`
	Guess     Direction `json:"guess"`
	Actual    Direction `json:"actual"`
	IsCorrect bool      `json:"is_correct"`
	NextBar   Bar       `json:"next_bar"`
	Points    int       `json:"points"`
}

// Snapshot is the read model of a game exposed to presentation.
type Snapshot struct {
	Mode          Mode          `json:"mode"`
	CurrentIndex  int           `json:"current_index"`
	SeriesLength  int           `json:"series_length"`
	Visible       []Bar         `json:"visible"`
	Score         Score         `json:"score"`
	LastOutcome   *GuessOutcome `json:"last_outcome,omitempty"`
	AwaitingGuess bool          `json:"awaiting_guess"`
	PausePrice    float64       `json:"pause_price"`
	TargetPrice   float64       `json:"target_price"`
}

// EventKind identifies what happened in the engine.
type EventKind string

const (
	EventStarted        EventKind = "started"
	EventPaused         EventKind = "paused"
	EventBarRevealed    EventKind = "bar_revealed"
	EventGuessRequested EventKind = "guess_requested"
	EventGuessEvaluated EventKind = "guess_evaluated"
	EventContinued      EventKind = "continued"
	EventGameOver       EventKind = "game_over"
	EventReset          EventKind = "reset"
)

// Event is published to observers after every state transition.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Mode    Mode          `json:"mode"`
	Index   int           `json:"index"`
	Bar     *Bar          `json:"bar,omitempty"`
	Outcome *GuessOutcome `json:"outcome,omitempty"`
	Score   Score         `json:"score"`
}
