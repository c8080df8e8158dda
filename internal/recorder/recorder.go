package recorder

import (
	"time"

	"StockGuess/internal/model"
)

// GuessRecord holds one evaluated guess.
type GuessRecord struct {
	Index     int
	Guess     model.Direction
	Actual    model.Direction
	Correct   bool
	NextDate  string
	NextClose float64
	Points    int
}

// GameRecord summarises a game that ran to the end of its series.
type GameRecord struct {
	Bars           int
	CorrectGuesses int
	TotalGuesses   int
	Points         int
}

// LeaderboardEntry is one finished game, ranked by points then accuracy.
type LeaderboardEntry struct {
	ID             int64     `json:"id"`
	FinishedAt     time.Time `json:"finished_at"`
	Bars           int       `json:"bars"`
	CorrectGuesses int       `json:"correct_guesses"`
	TotalGuesses   int       `json:"total_guesses"`
	Points         int       `json:"points"`
	Accuracy       float64   `json:"accuracy"`
}

// Recorder persists game history for later analysis.
type Recorder interface {
	RecordGuess(rec *GuessRecord) error
	RecordGameOver(rec *GameRecord) error
	Leaderboard(limit int) ([]LeaderboardEntry, error)
	Close() error
}
