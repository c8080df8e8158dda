package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordGuess(_ *GuessRecord) error   { return nil }
func (n *NoopRecorder) RecordGameOver(_ *GameRecord) error { return nil }
func (n *NoopRecorder) Close() error                       { return nil }

func (n *NoopRecorder) Leaderboard(_ int) ([]LeaderboardEntry, error) {
	return []LeaderboardEntry{}, nil
}
