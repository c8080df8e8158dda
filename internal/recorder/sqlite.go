package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists guesses and finished games to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the leaderboard read while the bridge writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS guesses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			bar_index   INTEGER NOT NULL,
			guess       TEXT NOT NULL,
			actual      TEXT NOT NULL,
			correct     INTEGER NOT NULL,
			next_date   TEXT,
			next_close  REAL,
			points      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_guesses_ts ON guesses(timestamp)`,

		`CREATE TABLE IF NOT EXISTS games (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			bars            INTEGER NOT NULL,
			correct_guesses INTEGER NOT NULL,
			total_guesses   INTEGER NOT NULL,
			points          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_points ON games(points DESC, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordGuess(rec *GuessRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO guesses
		(timestamp, bar_index, guess, actual, correct, next_date, next_close, points)
		VALUES (?,?,?,?,?,?,?,?)`,
		r.now().Unix(), rec.Index, string(rec.Guess), string(rec.Actual),
		rec.Correct, rec.NextDate, rec.NextClose, rec.Points,
	)
	return err
}

func (r *SQLiteRecorder) RecordGameOver(rec *GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO games
		(timestamp, bars, correct_guesses, total_guesses, points)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), rec.Bars, rec.CorrectGuesses, rec.TotalGuesses, rec.Points,
	)
	return err
}

// Leaderboard returns the best finished games: most points first, then the
// higher accuracy, then the earlier game.
func (r *SQLiteRecorder) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, timestamp, bars, correct_guesses, total_guesses, points
		FROM games
		ORDER BY points DESC,
			CASE WHEN total_guesses = 0 THEN 0.0 ELSE CAST(correct_guesses AS REAL) / total_guesses END DESC,
			timestamp ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Bars, &e.CorrectGuesses, &e.TotalGuesses, &e.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.FinishedAt = time.Unix(ts, 0).UTC()
		if e.TotalGuesses > 0 {
			e.Accuracy = float64(e.CorrectGuesses) / float64(e.TotalGuesses)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
