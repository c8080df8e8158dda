package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/loader"
	"StockGuess/internal/model"
)

type stubSource struct {
	series model.Series
	src    loader.Source
	calls  int
}

func (s *stubSource) Load(context.Context) (model.Series, loader.Source) {
	s.calls++
	return s.series, s.src
}

type stubSink struct {
	got model.Series
	err error
}

func (s *stubSink) Reload(series model.Series) error {
	if s.err != nil {
		return s.err
	}
	s.got = series
	return nil
}

func oneBar() model.Series {
	return model.Series{{Date: time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC), Open: 380, High: 381, Low: 379, Close: 380, Volume: 1}}
}

func TestRefreshNow(t *testing.T) {
	src := &stubSource{series: oneBar(), src: loader.SourceRemote}
	sink := &stubSink{}
	s := NewScheduler(context.Background(), src, sink, zerolog.Nop())

	if got := s.RefreshNow(); got != loader.SourceRemote {
		t.Errorf("expected remote, got %s", got)
	}
	if len(sink.got) != 1 || src.calls != 1 {
		t.Errorf("expected one series installed, got %v after %d calls", sink.got, src.calls)
	}
}

func TestRefreshNow_SinkError(t *testing.T) {
	src := &stubSource{series: oneBar(), src: loader.SourceFallback}
	s := NewScheduler(context.Background(), src, &stubSink{err: errors.New("empty")}, zerolog.Nop())
	if got := s.RefreshNow(); got != loader.SourceFallback {
		t.Errorf("expected fallback, got %s", got)
	}
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubSource{}, &stubSink{}, zerolog.Nop())
	if err := s.RegisterAll("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected one entry, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("every tuesday"); err == nil {
		t.Error("expected error for invalid spec")
	}
}
