package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestSeriesValidate(t *testing.T) {
	good := Bar{Date: day(0), Open: 380, High: 385, Low: 375, Close: 382, Volume: 1000}
	tests := []struct {
		name    string
		series  Series
		wantErr bool
	}{
		{"empty", Series{}, true},
		{"single", Series{good}, false},
		{"increasing", Series{good, {Date: day(1), Open: 382, High: 390, Low: 381, Close: 389}}, false},
		{"duplicate date", Series{good, {Date: day(0), Open: 382, High: 390, Low: 381, Close: 389}}, true},
		{"close above high", Series{{Date: day(0), Open: 380, High: 385, Low: 375, Close: 386}}, true},
		{"open below low", Series{{Date: day(0), Open: 370, High: 385, Low: 375, Close: 380}}, true},
		{"zero price", Series{{Date: day(0), Open: 0, High: 385, Low: 375, Close: 380}}, true},
		{"negative volume", Series{{Date: day(0), Open: 380, High: 385, Low: 375, Close: 380, Volume: -1}}, true},
	}
	for _, tt := range tests {
		err := tt.series.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: wantErr=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
	if err := (Series{}).Validate(); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestBarJSON(t *testing.T) {
	in := `{"date":"2024-08-07","open":380.5,"high":385,"low":375,"close":382.25,"volume":12345}`
	var b Bar
	if err := json.Unmarshal([]byte(in), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Day() != "2024-08-07" || b.Close != 382.25 || b.Volume != 12345 {
		t.Fatalf("unexpected bar %+v", b)
	}
	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back["date"] != "2024-08-07" {
		t.Errorf("expected date string, got %v", back["date"])
	}

	if err := json.Unmarshal([]byte(`{"date":"07/08/2024"}`), &b); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("up"); err != nil || d != Up {
		t.Errorf("up: got %q, %v", d, err)
	}
	if d, err := ParseDirection("down"); err != nil || d != Down {
		t.Errorf("down: got %q, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for sideways")
	}
}

func TestScoreAccuracy(t *testing.T) {
	if (Score{}).Accuracy() != 0 {
		t.Error("empty score accuracy should be 0")
	}
	s := Score{CorrectGuesses: 3, TotalGuesses: 4}
	if s.Accuracy() != 0.75 {
		t.Errorf("expected 0.75, got %v", s.Accuracy())
	}
}
