package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"StockGuess/internal/model"
)

func TestRecorder_CountsEvents(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.OnEvent(model.Event{Kind: model.EventBarRevealed})
	r.OnEvent(model.Event{Kind: model.EventBarRevealed})
	win := model.GuessOutcome{Guess: model.Up, Actual: model.Up, IsCorrect: true, Points: 1}
	loss := model.GuessOutcome{Guess: model.Up, Actual: model.Down}
	r.OnEvent(model.Event{Kind: model.EventGuessEvaluated, Outcome: &win})
	r.OnEvent(model.Event{Kind: model.EventGuessEvaluated, Outcome: &loss})
	r.OnEvent(model.Event{Kind: model.EventGameOver})
	r.RecordLoad("fallback")
	r.SetWSClients(3)

	if got := testutil.ToFloat64(r.barsRevealed); got != 2 {
		t.Errorf("bars revealed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.guesses.WithLabelValues("up", "true")); got != 1 {
		t.Errorf("correct up guesses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.guesses.WithLabelValues("up", "false")); got != 1 {
		t.Errorf("wrong up guesses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.points); got != 1 {
		t.Errorf("points = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.gamesCompleted); got != 1 {
		t.Errorf("games = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.seriesLoads.WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.wsClients); got != 3 {
		t.Errorf("ws clients = %v, want 3", got)
	}
}
