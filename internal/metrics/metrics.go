// Package metrics exposes game counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"StockGuess/internal/model"
)

// Recorder records game metrics. It implements the engine observer contract.
type Recorder struct {
	barsRevealed   prometheus.Counter
	guesses        *prometheus.CounterVec
	points         prometheus.Counter
	gamesCompleted prometheus.Counter
	seriesLoads    *prometheus.CounterVec
	wsClients      prometheus.Gauge
}

// New registers the game metrics with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		barsRevealed: f.NewCounter(prometheus.CounterOpts{
			Name: "stockguess_bars_revealed_total",
			Help: "Total number of bars revealed during playback",
		}),
		guesses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockguess_guesses_total",
			Help: "Total number of evaluated guesses",
		}, []string{"guess", "correct"}),
		points: f.NewCounter(prometheus.CounterOpts{
			Name: "stockguess_points_total",
			Help: "Total points earned",
		}),
		gamesCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "stockguess_games_completed_total",
			Help: "Games that reached the end of their series",
		}),
		seriesLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockguess_series_loads_total",
			Help: "Series loads by the source that was served",
		}, []string{"source"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "stockguess_ws_clients",
			Help: "Connected WebSocket clients",
		}),
	}
}

// OnEvent counts engine events.
func (r *Recorder) OnEvent(evt model.Event) {
	switch evt.Kind {
	case model.EventBarRevealed:
		r.barsRevealed.Inc()
	case model.EventGuessEvaluated:
		if evt.Outcome == nil {
			return
		}
		r.guesses.WithLabelValues(string(evt.Outcome.Guess), strconv.FormatBool(evt.Outcome.IsCorrect)).Inc()
		if evt.Outcome.IsCorrect {
			r.points.Add(float64(evt.Outcome.Points))
		}
	case model.EventGameOver:
		r.gamesCompleted.Inc()
	}
}

// RecordLoad counts a series load by source.
func (r *Recorder) RecordLoad(source string) {
	r.seriesLoads.WithLabelValues(source).Inc()
}

// SetWSClients sets the connected client gauge.
func (r *Recorder) SetWSClients(n int) {
	r.wsClients.Set(float64(n))
}
