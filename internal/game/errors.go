package game

import (
	"errors"
	"fmt"

	"StockGuess/internal/model"
)

var (
	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrGuessPending is returned by Continue before a guess was made.
	ErrGuessPending = errors.New("guess required before continuing")
	// ErrAlreadyGuessed is returned by a second Guess for the same pause.
	ErrAlreadyGuessed = errors.New("guess already made for this pause")
	// ErrNoNextBar is returned when no bar follows the current index.
	ErrNoNextBar = errors.New("no next bar to evaluate")
)

// TransitionError reports an operation attempted in a mode that does not allow it.
type TransitionError struct {
	Op   string
	Mode model.Mode
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in mode %s", e.Op, e.Mode)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
