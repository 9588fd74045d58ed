package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the tables used by the record stores. The DDL is valid
// for both Postgres and SQLite.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// vtts is NULL when the time component was zero.
	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS vtts_records (
		run_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		trip_index INTEGER NOT NULL,
		mode TEXT NOT NULL,
		departure_s DOUBLE PRECISION NOT NULL,
		duration_s DOUBLE PRECISION NOT NULL,
		money DOUBLE PRECISION NOT NULL,
		time_component DOUBLE PRECISION NOT NULL,
		vtts DOUBLE PRECISION,
		PRIMARY KEY (run_id, person_id, trip_index)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_vtts_records_run_mode
	ON vtts_records(run_id, mode);
	`

	statements := []string{
		createRecordsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

func nullableVTTS(defined bool, v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: defined}
}
