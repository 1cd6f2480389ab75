package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/types"
)

// SQLiteRecorder persists prediction outcomes to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reads during a dashboard session don't block writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "Prediction history opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at     INTEGER NOT NULL,
			request_id     TEXT NOT NULL,
			provider       TEXT NOT NULL,
			target         TEXT NOT NULL,
			timeframe      TEXT,
			period         TEXT,
			prediction     TEXT,
			probability_up REAL,
			current_price  REAL,
			accuracy       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record inserts one prediction outcome
func (r *SQLiteRecorder) Record(ctx context.Context, entry types.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO predictions
		(created_at, request_id, provider, target, timeframe, period,
		 prediction, probability_up, current_price, accuracy)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		createdAt.Unix(), entry.RequestID, entry.Provider, entry.Target,
		entry.Timeframe, entry.Period,
		entry.Prediction, entry.ProbabilityUp, entry.CurrentPrice, entry.Accuracy,
	)
	return err
}

// Recent returns the newest entries, most recent first
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
		id, created_at, request_id, provider, target, timeframe, period,
		prediction, probability_up, current_price, accuracy
		FROM predictions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var entry types.HistoryEntry
		var createdAt int64
		if err := rows.Scan(
			&entry.ID, &createdAt, &entry.RequestID, &entry.Provider,
			&entry.Target, &entry.Timeframe, &entry.Period,
			&entry.Prediction, &entry.ProbabilityUp, &entry.CurrentPrice,
			&entry.Accuracy,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info(context.Background(), "Closing prediction history")
	return r.db.Close()
}
