package recorder

import (
	"context"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

// Bridge feeds engine events into a Recorder. OnEvent only queues; writes
// happen on the goroutine running Run so the engine never waits on disk.
type Bridge struct {
	rec Recorder
	log zerolog.Logger
	ch  chan model.Event
}

// NewBridge creates a bridge with a queue of size buf.
func NewBridge(rec Recorder, log zerolog.Logger, buf int) *Bridge {
	if buf <= 0 {
		buf = 64
	}
	return &Bridge{rec: rec, log: log, ch: make(chan model.Event, buf)}
}

// OnEvent implements the engine observer contract.
func (b *Bridge) OnEvent(evt model.Event) {
	switch evt.Kind {
	case model.EventGuessEvaluated, model.EventGameOver:
	default:
		return
	}
	select {
	case b.ch <- evt:
	default:
		b.log.Error().Str("kind", string(evt.Kind)).Msg("recorder queue full, dropping event")
	}
}

// Run writes queued events until ctx is done, then flushes what is left.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case evt := <-b.ch:
			b.write(evt)
		case <-ctx.Done():
			for {
				select {
				case evt := <-b.ch:
					b.write(evt)
				default:
					return
				}
			}
		}
	}
}

func (b *Bridge) write(evt model.Event) {
	var err error
	switch evt.Kind {
	case model.EventGuessEvaluated:
		if evt.Outcome == nil {
			return
		}
		o := evt.Outcome
		err = b.rec.RecordGuess(&GuessRecord{
			Index:     o.Index,
			Guess:     o.Guess,
			Actual:    o.Actual,
			Correct:   o.IsCorrect,
			NextDate:  o.NextBar.Day(),
			NextClose: o.NextBar.Close,
			Points:    o.Points,
		})
	case model.EventGameOver:
		err = b.rec.RecordGameOver(&GameRecord{
			Bars:           evt.Index + 1,
			CorrectGuesses: evt.Score.CorrectGuesses,
			TotalGuesses:   evt.Score.TotalGuesses,
			Points:         evt.Score.Points,
		})
	}
	if err != nil {
		b.log.Error().Err(err).Str("kind", string(evt.Kind)).Msg("record event failed")
	}
}
