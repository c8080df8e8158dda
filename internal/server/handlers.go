package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"StockGuess/internal/model"
	"StockGuess/internal/prefs"
	"StockGuess/internal/recorder"
	"StockGuess/internal/skin"
)

// Game is the part of the engine the API drives.
type Game interface {
	Start() error
	Pause() error
	Reset()
	Guess(dir model.Direction) (model.GuessOutcome, error)
	Continue() error
	Snapshot() model.Snapshot
}

// Leaderboard lists the best finished games.
type Leaderboard interface {
	Leaderboard(limit int) ([]recorder.LeaderboardEntry, error)
}

// Handler serves the /api routes.
type Handler struct {
	Game        Game
	Sound       prefs.Store
	Skin        func() skin.State
	Leaderboard Leaderboard
	Log         zerolog.Logger
}

// GuessRequest is the body of POST /api/guess.
type GuessRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// GuessResponse returns the outcome and the score after it.
type GuessResponse struct {
	Outcome model.GuessOutcome `json:"outcome"`
	Score   model.Score        `json:"score"`
}

// SoundRequest is the body of PUT /api/prefs/sound.
type SoundRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SoundResponse reports the sound preference.
type SoundResponse struct {
	Enabled bool `json:"enabled"`
}

// LeaderboardQuery holds GET /api/leaderboard parameters.
type LeaderboardQuery struct {
	Limit int `query:"limit" default:"10" validate:"min=1,max=100"`
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/state", h.State)
	api.POST("/start", h.Start)
	api.POST("/pause", h.Pause)
	api.POST("/reset", h.Reset)
	api.POST("/guess", h.Guess)
	api.POST("/continue", h.Continue)
	api.GET("/skin", h.SkinState)
	api.GET("/prefs/sound", h.GetSound)
	api.PUT("/prefs/sound", h.SetSound)
	api.POST("/prefs/sound/toggle", h.ToggleSound)
	api.GET("/leaderboard", h.ListLeaderboard)
}

// State returns the game snapshot.
func (h *Handler) State(c echo.Context) error {
	return SuccessResponse(c, h.Game.Snapshot())
}

func (h *Handler) Start(c echo.Context) error {
	return h.transition(c, h.Game.Start)
}

func (h *Handler) Pause(c echo.Context) error {
	return h.transition(c, h.Game.Pause)
}

func (h *Handler) Continue(c echo.Context) error {
	return h.transition(c, h.Game.Continue)
}

// Reset is valid from every mode.
func (h *Handler) Reset(c echo.Context) error {
	h.Game.Reset()
	return SuccessResponse(c, h.Game.Snapshot())
}

// Guess records a direction for the pending guess.
func (h *Handler) Guess(c echo.Context) error {
	var req GuessRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "Direction", Message: err.Error()}})
	}
	out, err := h.Game.Guess(dir)
	if err != nil {
		return AppErrorResponse(c, gameError(err))
	}
	return SuccessResponse(c, GuessResponse{Outcome: out, Score: h.Game.Snapshot().Score})
}

// SkinState returns the avatar state.
func (h *Handler) SkinState(c echo.Context) error {
	if h.Skin == nil {
		return DataResponse(c, http.StatusNotFound, "no skin configured")
	}
	return SuccessResponse(c, h.Skin())
}

func (h *Handler) GetSound(c echo.Context) error {
	on, err := h.Sound.SoundEnabled(c.Request().Context())
	if err != nil {
		return h.prefsError(c, err)
	}
	return SuccessResponse(c, SoundResponse{Enabled: on})
}

func (h *Handler) SetSound(c echo.Context) error {
	var req SoundRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	if err := h.Sound.SetSoundEnabled(c.Request().Context(), *req.Enabled); err != nil {
		return h.prefsError(c, err)
	}
	return SuccessResponse(c, SoundResponse{Enabled: *req.Enabled})
}

func (h *Handler) ToggleSound(c echo.Context) error {
	on, err := h.Sound.ToggleSound(c.Request().Context())
	if err != nil {
		return h.prefsError(c, err)
	}
	return SuccessResponse(c, SoundResponse{Enabled: on})
}

// ListLeaderboard returns the best games, best first.
func (h *Handler) ListLeaderboard(c echo.Context) error {
	var q LeaderboardQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	if h.Leaderboard == nil {
		return SuccessResponse(c, []recorder.LeaderboardEntry{})
	}
	entries, err := h.Leaderboard.Leaderboard(q.Limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("leaderboard query failed")
		return AppErrorResponse(c, InternalError("leaderboard unavailable").WithError(err))
	}
	if entries == nil {
		entries = []recorder.LeaderboardEntry{}
	}
	return SuccessResponse(c, entries)
}

func (h *Handler) transition(c echo.Context, op func() error) error {
	if err := op(); err != nil {
		return AppErrorResponse(c, gameError(err))
	}
	return SuccessResponse(c, h.Game.Snapshot())
}

func (h *Handler) prefsError(c echo.Context, err error) error {
	h.Log.Error().Err(err).Msg("preference store failed")
	return AppErrorResponse(c, InternalError("preference store unavailable").WithError(err))
}
