package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for bars on the wire and on disk.
const DateLayout = "2006-01-02"

// Bar represents one trading day.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Day returns the bar date formatted as YYYY-MM-DD.
func (b Bar) Day() string { return b.Date.Format(DateLayout) }

// Series is the full ordered dataset replayed in one session.
type Series []Bar

// ErrEmptySeries is returned by Validate for a series with no bars.
var ErrEmptySeries = errors.New("series is empty")

// Validate checks date ordering and per-bar price sanity.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): prices must be positive", i, b.Day())
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume", i, b.Day())
		}
		if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
			return fmt.Errorf("bar %d (%s): open/close outside low/high", i, b.Day())
		}
		if i > 0 && !b.Date.After(s[i-1].Date) {
			return fmt.Errorf("bar %d (%s): date not after %s", i, b.Day(), s[i-1].Day())
		}
	}
	return nil
}

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}
