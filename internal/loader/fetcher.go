package loader

import (
	"context"
	"time"

	"StockGuess/internal/model"
)

// Fetcher retrieves a daily series for a symbol between two dates.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) (model.Series, error)
	Name() string
}

// MockFetcher returns fixed data for development and testing.
type MockFetcher struct {
	Series model.Series
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, _ string, _, _ time.Time) (model.Series, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Series.Clone(), nil
}
