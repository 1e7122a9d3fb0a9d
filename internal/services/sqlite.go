package services

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"minesweeper-backend/internal/models"
)

//go:embed sql/schema.sql
var ddl string

// SQLStore keeps one row per finished game in a SQLite database.
type SQLStore struct {
	DB *sql.DB
}

func InitializeTables(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}

func NewSQLStore(path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path not set")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Opening is lazy, ping to find out whether the file is usable.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err = InitializeTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}

func (s *SQLStore) RecordWin(ctx context.Context, endTime int64) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO results (won, end_time) VALUES (TRUE, ?)`, endTime)
	if err != nil {
		return fmt.Errorf("%w: failed to record win: %v", ErrStatsUnavailable, err)
	}
	return nil
}

func (s *SQLStore) RecordLoss(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO results (won) VALUES (FALSE)`)
	if err != nil {
		return fmt.Errorf("%w: failed to record loss: %v", ErrStatsUnavailable, err)
	}
	return nil
}

func (s *SQLStore) GetStats(ctx context.Context) (models.Stats, error) {
	var (
		stats models.Stats
		best  sql.NullInt64
	)
	row := s.DB.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN won THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN won THEN 0 ELSE 1 END), 0),
			MIN(CASE WHEN won THEN end_time END)
		FROM results`)
	if err := row.Scan(&stats.Wins, &stats.Losses, &best); err != nil {
		return stats, fmt.Errorf("%w: failed to get stats: %v", ErrStatsUnavailable, err)
	}
	stats.BestTime = best.Int64
	stats.HasBestTime = best.Valid
	return stats, nil
}

func (s *SQLStore) ResetStats(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("%w: failed to reset stats: %v", ErrStatsUnavailable, err)
	}
	return nil
}
