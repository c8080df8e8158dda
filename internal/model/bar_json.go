package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type barJSON struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MarshalJSON writes the bar with its date as YYYY-MM-DD.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(barJSON{
		Date:   b.Day(),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	})
}

// UnmarshalJSON reads the {date, open, high, low, close, volume} shape.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var raw barJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse bar date %q: %w", raw.Date, err)
	}
	*b = Bar{
		Date:   d,
		Open:   raw.Open,
		High:   raw.High,
		Low:    raw.Low,
		Close:  raw.Close,
		Volume: raw.Volume,
	}
	return nil
}
