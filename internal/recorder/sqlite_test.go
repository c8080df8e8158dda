package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_Guesses(t *testing.T) {
	r := openTestDB(t)
	err := r.RecordGuess(&GuessRecord{
		Index: 4, Guess: model.Up, Actual: model.Up, Correct: true,
		NextDate: "2024-08-14", NextClose: 402.5, Points: 1,
	})
	if err != nil {
		t.Fatalf("record guess: %v", err)
	}

	var n, correct int
	var guess string
	row := r.db.QueryRow(`SELECT COUNT(*), MAX(correct), MAX(guess) FROM guesses`)
	if err := row.Scan(&n, &correct, &guess); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 1 || correct != 1 || guess != "up" {
		t.Errorf("unexpected row: n=%d correct=%d guess=%s", n, correct, guess)
	}
}

func TestSQLiteRecorder_Leaderboard(t *testing.T) {
	r := openTestDB(t)
	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	games := []GameRecord{
		{Bars: 120, CorrectGuesses: 3, TotalGuesses: 6, Points: 2},
		{Bars: 120, CorrectGuesses: 5, TotalGuesses: 6, Points: 2},
		{Bars: 120, CorrectGuesses: 1, TotalGuesses: 9, Points: 1},
		{Bars: 120, CorrectGuesses: 0, TotalGuesses: 0, Points: 0},
	}
	for i := range games {
		ts := base.Add(time.Duration(i) * time.Minute)
		r.now = func() time.Time { return ts }
		if err := r.RecordGameOver(&games[i]); err != nil {
			t.Fatalf("record game: %v", err)
		}
	}

	top, err := r.Leaderboard(3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].CorrectGuesses != 5 || top[1].CorrectGuesses != 3 || top[2].Points != 1 {
		t.Errorf("unexpected order: %+v", top)
	}
	if top[0].Accuracy < 0.83 || top[0].Accuracy > 0.84 {
		t.Errorf("expected accuracy ~0.833, got %v", top[0].Accuracy)
	}
	if !top[1].FinishedAt.Equal(base) {
		t.Errorf("expected finished_at %v, got %v", base, top[1].FinishedAt)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordGuess(&GuessRecord{}); err != nil {
		t.Error(err)
	}
	top, err := r.Leaderboard(5)
	if err != nil || top == nil || len(top) != 0 {
		t.Errorf("expected empty leaderboard, got %v %v", top, err)
	}
}
