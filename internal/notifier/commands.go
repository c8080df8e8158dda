package notifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockGuess/internal/game"
	"StockGuess/internal/model"
	"StockGuess/internal/prefs"
)

// Game is the part of the engine the chat drives.
type Game interface {
	Start() error
	Pause() error
	Reset()
	Guess(dir model.Direction) (model.GuessOutcome, error)
	Continue() error
	Snapshot() model.Snapshot
}

// Commands maps chat commands onto the game. Guess results and game-over
// messages arrive through the Relay, so those commands reply only on error.
type Commands struct {
	Game   Game
	Sound  prefs.Store
	Format Formatter
}

// Handle processes a user command and returns a reply.
func (c *Commands) Handle(command string) string {
	cmd := strings.ToLower(strings.Fields(command + " ")[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		if err := c.Game.Start(); err != nil {
			return describe(err)
		}
		return "▶️ Playing"
	case "/pause":
		if err := c.Game.Pause(); err != nil {
			return describe(err)
		}
		return "⏸ Paused"
	case "/up", "/down":
		dir := model.Up
		if cmd == "/down" {
			dir = model.Down
		}
		if _, err := c.Game.Guess(dir); err != nil {
			return describe(err)
		}
		return ""
	case "/continue":
		if err := c.Game.Continue(); err != nil {
			return describe(err)
		}
		return "▶️ Continuing"
	case "/reset":
		c.Game.Reset()
		return "🔄 Game reset"
	case "/score":
		return c.Format.State(c.Game.Snapshot())
	case "/sound":
		return c.toggleSound()
	default:
		return c.Format.Help()
	}
}

func (c *Commands) toggleSound() string {
	if c.Sound == nil {
		return "Sound settings are not available"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	on, err := c.Sound.ToggleSound(ctx)
	if err != nil {
		return "Could not change sound setting: " + err.Error()
	}
	if on {
		return "🔊 Sound on"
	}
	return "🔇 Sound off"
}

func describe(err error) string {
	var te *game.TransitionError
	switch {
	case errors.Is(err, game.ErrGuessPending):
		return "Make a guess first: /up or /down"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return "You already guessed. /continue to keep playing"
	case errors.As(err, &te):
		return "Can't " + te.Op + " while " + strings.ToLower(string(te.Mode))
	default:
		return "Error: " + err.Error()
	}
}
