package server

import (
	"errors"
	"fmt"
	"net/http"

	"StockGuess/internal/game"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// ConflictError creates a 409 error.
func ConflictError(code, message string) *AppError {
	return NewAppError(code, "", message, http.StatusConflict)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

// gameError maps engine errors onto HTTP errors.
func gameError(err error) *AppError {
	var te *game.TransitionError
	switch {
	case errors.As(err, &te):
		return ConflictError("ERR_INVALID_TRANSITION", err.Error()).
			WithParam("op", te.Op).
			WithParam("mode", string(te.Mode)).
			WithError(err)
	case errors.Is(err, game.ErrGuessPending):
		return ConflictError("ERR_GUESS_PENDING", err.Error()).WithError(err)
	case errors.Is(err, game.ErrAlreadyGuessed):
		return ConflictError("ERR_ALREADY_GUESSED", err.Error()).WithError(err)
	case errors.Is(err, game.ErrNoNextBar):
		return ConflictError("ERR_NO_NEXT_BAR", err.Error()).WithError(err)
	default:
		return InternalError("game error").WithError(err)
	}
}
