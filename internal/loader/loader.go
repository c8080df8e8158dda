package loader

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
)

// ErrLoadFailed wraps every remote load failure.
var ErrLoadFailed = errors.New("series load failed")

// Source tells where the series handed out by Load came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

//go:embed data/biocon.json
var bundled []byte

// Bundled decodes the dataset compiled into the binary.
func Bundled() (model.Series, error) {
	return decodeSeries(bundled)
}

// Config controls what the loader fetches.
type Config struct {
	Symbol       string
	Start        time.Time
	FallbackFile string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithLoadHook registers a callback invoked after every Load.
func WithLoadHook(fn func(Source)) Option {
	return func(ld *Loader) { ld.hook = fn }
}

// WithNow replaces the wall clock used to compute the fetch range.
func WithNow(now func() time.Time) Option {
	return func(ld *Loader) { ld.now = now }
}

// Loader fetches the series and keeps the last known good copy. A failed
// fetch never surfaces to the game; the last good series is served instead.
type Loader struct {
	fetcher Fetcher
	cfg     Config
	log     zerolog.Logger
	hook    func(Source)
	now     func() time.Time

	mu     sync.RWMutex
	good   model.Series
	source Source
}

// New creates a loader seeded with the fallback file when it holds a valid
// series, or with the bundled dataset otherwise.
func New(fetcher Fetcher, cfg Config, opts ...Option) (*Loader, error) {
	l := &Loader{
		fetcher: fetcher,
		cfg:     cfg,
		log:     zerolog.Nop(),
		now:     time.Now,
		source:  SourceFallback,
	}
	for _, opt := range opts {
		opt(l)
	}

	seed, err := l.readFallbackFile()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn().Err(err).Str("path", cfg.FallbackFile).Msg("ignoring fallback file")
		}
		seed, err = Bundled()
		if err != nil {
			return nil, fmt.Errorf("decode bundled series: %w", err)
		}
	}
	l.good = seed
	return l, nil
}

// Fetch retrieves and validates a fresh series without touching the last
// known good copy. Failures wrap ErrLoadFailed.
func (l *Loader) Fetch(ctx context.Context) (model.Series, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrLoadFailed)
	}
	from := l.cfg.Start
	// period2 runs one day ahead so today's session is included.
	to := l.now().AddDate(0, 0, 1)
	series, err := l.fetcher.FetchDaily(ctx, l.cfg.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, l.fetcher.Name(), err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, l.fetcher.Name(), err)
	}
	return series, nil
}

// Load fetches a fresh series. On success it becomes the last known good
// series; on failure the failure is logged and the last good series is
// returned.
func (l *Loader) Load(ctx context.Context) (model.Series, Source) {
	series, err := l.Fetch(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("using last known good series")
		l.mu.RLock()
		good := l.good.Clone()
		l.mu.RUnlock()
		l.notify(SourceFallback)
		return good, SourceFallback
	}

	l.mu.Lock()
	l.good = series.Clone()
	l.source = SourceRemote
	l.mu.Unlock()

	if err := l.writeFallbackFile(series); err != nil {
		l.log.Warn().Err(err).Str("path", l.cfg.FallbackFile).Msg("write fallback file failed")
	}
	l.log.Info().
		Int("bars", len(series)).
		Str("first", series[0].Day()).
		Str("last", series[len(series)-1].Day()).
		Msg("series loaded")
	l.notify(SourceRemote)
	return series, SourceRemote
}

// Current returns the last known good series without fetching.
func (l *Loader) Current() (model.Series, Source) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.good.Clone(), l.source
}

func (l *Loader) notify(src Source) {
	if l.hook != nil {
		l.hook(src)
	}
}

func (l *Loader) readFallbackFile() (model.Series, error) {
	if l.cfg.FallbackFile == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(l.cfg.FallbackFile)
	if err != nil {
		return nil, err
	}
	return decodeSeries(data)
}

func (l *Loader) writeFallbackFile(series model.Series) error {
	if l.cfg.FallbackFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.cfg.FallbackFile), 0o755); err != nil {
		return fmt.Errorf("create fallback dir: %w", err)
	}
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	tmp := l.cfg.FallbackFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fallback file: %w", err)
	}
	return os.Rename(tmp, l.cfg.FallbackFile)
}

func decodeSeries(data []byte) (model.Series, error) {
	var series model.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
