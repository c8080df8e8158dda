package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockGuess/internal/loader"
	"StockGuess/internal/model"
)

// SeriesSource produces the series to install.
type SeriesSource interface {
	Load(ctx context.Context) (model.Series, loader.Source)
}

// SeriesSink accepts a refreshed series. The engine installs it on its next
// reset, never mid-game.
type SeriesSink interface {
	Reload(series model.Series) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Source  SeriesSource
	Sink    SeriesSink
	Timeout time.Duration
	Ctx     context.Context
	Log     zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, src SeriesSource, sink SeriesSink, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Source:  src,
		Sink:    sink,
		Timeout: 2 * time.Minute,
		Ctx:     ctx,
		Log:     log,
	}
}

// RegisterAll registers the series refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RefreshNow runs the refresh task immediately.
func (s *Scheduler) RefreshNow() loader.Source {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	s.refresh()
}

func (s *Scheduler) refresh() loader.Source {
	s.Log.Info().Msg("refreshing series")
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	series, src := s.Source.Load(ctx)
	if err := s.Sink.Reload(series); err != nil {
		s.Log.Error().Err(err).Msg("install refreshed series")
		return src
	}
	s.Log.Info().
		Str("source", string(src)).
		Int("bars", len(series)).
		Msg("series queued for next game")
	return src
}
