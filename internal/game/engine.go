package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

// Config holds the per-skin game parameters.
type Config struct {
	PausePrice  float64
	TargetPrice float64
	Interval    time.Duration
}

// DefaultConfig returns the default skin's parameters.
func DefaultConfig() Config {
	return Config{PausePrice: 390, TargetPrice: 400, Interval: 300 * time.Millisecond}
}

// Observer receives engine events in the order transitions happened.
// OnEvent runs on the goroutine that made the transition and must not call
// back into the Engine; hand work off to another goroutine instead.
type Observer interface {
	OnEvent(evt model.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(evt model.Event)

func (f ObserverFunc) OnEvent(evt model.Event) { f(evt) }

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used to schedule ticks.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine drives the replay: it reveals one bar per tick, pauses when a bar
// closes above the pause price, scores guesses and tracks the running score.
type Engine struct {
	cfg   Config
	clock Clock
	log   zerolog.Logger

	mu      sync.Mutex
	series  model.Series
	pending model.Series
	index   int
	visible []model.Bar
	mode    model.Mode
	score   model.Score
	last    *model.GuessOutcome
	guessed bool
	timer   Timer
	gen     uint64

	// pubMu is taken before mu is released so events reach observers in
	// transition order.
	pubMu     sync.Mutex
	obsMu     sync.RWMutex
	observers []Observer
}

// NewEngine creates an idle engine over series. The series is copied.
func NewEngine(series model.Series, cfg Config, opts ...Option) (*Engine, error) {
	if len(series) == 0 {
		return nil, model.ErrEmptySeries
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	e := &Engine{
		cfg:    cfg,
		clock:  realClock{},
		log:    zerolog.Nop(),
		series: series.Clone(),
		mode:   model.ModeIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine parameters.
func (e *Engine) Config() Config { return e.cfg }

// Subscribe registers an observer for all future events.
func (e *Engine) Subscribe(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

// Start begins playback from Idle, resumes a manual pause, or replays again
// from the start after the series was exhausted.
func (e *Engine) Start() error {
	e.mu.Lock()
	var evs []model.Event
	switch e.mode {
	case model.ModeIdle, model.ModePaused:
	case model.ModePausedAtEnd:
		evs = append(evs, e.resetLocked())
	default:
		err := &TransitionError{Op: "start", Mode: e.mode}
		e.mu.Unlock()
		return err
	}
	e.mode = model.ModeRunning
	e.scheduleLocked()
	evs = append(evs, e.eventLocked(model.EventStarted, nil, nil))
	e.log.Debug().Int("index", e.index).Msg("playback started")
	e.publishAndUnlock(evs)
	return nil
}

// Pause stops a running replay. The pending tick is cancelled.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.mode != model.ModeRunning {
		err := &TransitionError{Op: "pause", Mode: e.mode}
		e.mu.Unlock()
		return err
	}
	e.cancelLocked()
	e.mode = model.ModePaused
	evs := []model.Event{e.eventLocked(model.EventPaused, nil, nil)}
	e.log.Debug().Int("index", e.index).Msg("playback paused")
	e.publishAndUnlock(evs)
	return nil
}

// Reset returns the engine to its initial state from any mode. A series
// queued with Reload is installed here.
func (e *Engine) Reset() {
	e.mu.Lock()
	evs := []model.Event{e.resetLocked()}
	e.publishAndUnlock(evs)
}

// Reload replaces the series. It applies immediately while Idle and is
// otherwise deferred to the next Reset, so a session never sees its series
// change underneath it.
func (e *Engine) Reload(series model.Series) error {
	if len(series) == 0 {
		return model.ErrEmptySeries
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == model.ModeIdle {
		e.series = series.Clone()
		e.pending = nil
		return nil
	}
	e.pending = series.Clone()
	return nil
}

// Guess evaluates the player's prediction for the bar after the paused one.
func (e *Engine) Guess(dir model.Direction) (model.GuessOutcome, error) {
	e.mu.Lock()
	if e.mode != model.ModePausedForGuess {
		err := &TransitionError{Op: "guess", Mode: e.mode}
		e.mu.Unlock()
		return model.GuessOutcome{}, err
	}
	if e.guessed {
		e.mu.Unlock()
		return model.GuessOutcome{}, ErrAlreadyGuessed
	}
	if e.index+1 >= len(e.series) {
		e.mu.Unlock()
		return model.GuessOutcome{}, ErrNoNextBar
	}

	out := Evaluate(dir, e.index, e.series[e.index+1], e.cfg.TargetPrice)
	e.score.TotalGuesses++
	if out.IsCorrect {
		e.score.CorrectGuesses++
		e.score.Points += out.Points
	}
	e.last = &out
	e.guessed = true

	o := out
	evs := []model.Event{e.eventLocked(model.EventGuessEvaluated, nil, &o)}
	e.log.Info().
		Int("index", e.index).
		Str("guess", string(dir)).
		Str("actual", string(out.Actual)).
		Bool("correct", out.IsCorrect).
		Float64("next_close", out.NextBar.Close).
		Msg("guess evaluated")
	e.publishAndUnlock(evs)
	return out, nil
}

// Continue advances past the bar consumed by the guess and resumes playback.
func (e *Engine) Continue() error {
	e.mu.Lock()
	if e.mode != model.ModePausedForGuess {
		err := &TransitionError{Op: "continue", Mode: e.mode}
		e.mu.Unlock()
		return err
	}
	if !e.guessed {
		e.mu.Unlock()
		return ErrGuessPending
	}
	e.index++
	e.guessed = false
	e.mode = model.ModeRunning
	e.scheduleLocked()
	evs := []model.Event{e.eventLocked(model.EventContinued, nil, nil)}
	e.publishAndUnlock(evs)
	return nil
}

// Mode returns the current mode.
func (e *Engine) Mode() model.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Snapshot returns a copy of the current game state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := model.Snapshot{
		Mode:          e.mode,
		CurrentIndex:  e.index,
		SeriesLength:  len(e.series),
		Visible:       make([]model.Bar, len(e.visible)),
		Score:         e.score,
		AwaitingGuess: e.mode == model.ModePausedForGuess && !e.guessed,
		PausePrice:    e.cfg.PausePrice,
		TargetPrice:   e.cfg.TargetPrice,
	}
	copy(snap.Visible, e.visible)
	if e.last != nil {
		o := *e.last
		snap.LastOutcome = &o
	}
	return snap
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.mode != model.ModeRunning {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	evs := e.stepLocked()
	e.publishAndUnlock(evs)
}

func (e *Engine) stepLocked() []model.Event {
	if e.index >= len(e.series) {
		return nil
	}
	bar := e.series[e.index]
	if len(e.visible) == e.index {
		e.visible = append(e.visible, bar)
	}
	evs := []model.Event{e.eventLocked(model.EventBarRevealed, &bar, nil)}

	switch {
	case e.index == len(e.series)-1:
		e.mode = model.ModePausedAtEnd
		evs = append(evs, e.eventLocked(model.EventGameOver, nil, nil))
		e.log.Info().
			Int("correct", e.score.CorrectGuesses).
			Int("total", e.score.TotalGuesses).
			Int("points", e.score.Points).
			Msg("series exhausted, game over")
	case CrossesPause(bar, e.cfg.PausePrice):
		e.mode = model.ModePausedForGuess
		e.guessed = false
		evs = append(evs, e.eventLocked(model.EventGuessRequested, &bar, nil))
		e.log.Debug().Int("index", e.index).Float64("close", bar.Close).Msg("pause price crossed")
	default:
		e.index++
		e.scheduleLocked()
	}
	return evs
}

func (e *Engine) resetLocked() model.Event {
	e.cancelLocked()
	if e.pending != nil {
		e.series = e.pending
		e.pending = nil
		e.log.Info().Int("bars", len(e.series)).Msg("installed refreshed series")
	}
	e.index = 0
	e.visible = nil
	e.mode = model.ModeIdle
	e.score = model.Score{}
	e.last = nil
	e.guessed = false
	return e.eventLocked(model.EventReset, nil, nil)
}

func (e *Engine) scheduleLocked() {
	e.cancelLocked()
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.cfg.Interval, func() { e.tick(gen) })
}

// cancelLocked stops the pending tick and bumps the generation so a tick
// that already fired but has not acquired mu yet becomes a no-op.
func (e *Engine) cancelLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) eventLocked(kind model.EventKind, bar *model.Bar, out *model.GuessOutcome) model.Event {
	return model.Event{
		Kind:    kind,
		Mode:    e.mode,
		Index:   e.index,
		Bar:     bar,
		Outcome: out,
		Score:   e.score,
	}
}

func (e *Engine) publishAndUnlock(evs []model.Event) {
	e.pubMu.Lock()
	e.mu.Unlock()
	defer e.pubMu.Unlock()

	e.obsMu.RLock()
	obs := make([]Observer, len(e.observers))
	copy(obs, e.observers)
	e.obsMu.RUnlock()

	for _, evt := range evs {
		for _, o := range obs {
			o.OnEvent(evt)
		}
	}
}

// String implements fmt.Stringer for log output.
func (e *Engine) String() string {
	s := e.Snapshot()
	return fmt.Sprintf("engine{mode=%s index=%d/%d score=%d/%d points=%d}",
		s.Mode, s.CurrentIndex, s.SeriesLength, s.Score.CorrectGuesses, s.Score.TotalGuesses, s.Score.Points)
}
