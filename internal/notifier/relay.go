package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

// Sender delivers a message to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Relay turns engine events into chat messages. OnEvent formats and queues;
// Run delivers so the engine never waits on the network.
type Relay struct {
	sender      Sender
	format      Formatter
	pausePrice  float64
	targetPrice float64
	log         zerolog.Logger
	ch          chan string
}

// NewRelay creates a relay for a game with the given prices.
func NewRelay(sender Sender, format Formatter, pausePrice, targetPrice float64, log zerolog.Logger) *Relay {
	return &Relay{
		sender:      sender,
		format:      format,
		pausePrice:  pausePrice,
		targetPrice: targetPrice,
		log:         log,
		ch:          make(chan string, 32),
	}
}

// OnEvent implements the engine observer contract.
func (r *Relay) OnEvent(evt model.Event) {
	var msg string
	switch evt.Kind {
	case model.EventGuessRequested:
		if evt.Bar == nil {
			return
		}
		msg = r.format.GuessRequest(*evt.Bar, r.pausePrice)
	case model.EventGuessEvaluated:
		if evt.Outcome == nil {
			return
		}
		msg = r.format.GuessResult(*evt.Outcome, evt.Score, r.targetPrice)
	case model.EventGameOver:
		msg = r.format.GameOver(evt.Score)
	default:
		return
	}
	select {
	case r.ch <- msg:
	default:
		r.log.Warn().Str("kind", string(evt.Kind)).Msg("telegram queue full, dropping message")
	}
}

// Run sends queued messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.ch:
			if err := r.sender.SendWithRetry(ctx, msg, 3); err != nil {
				r.log.Error().Err(err).Msg("send notification failed")
			}
		}
	}
}
