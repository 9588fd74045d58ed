package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vtts-analysis/internal/domain"
	"vtts-analysis/internal/platform/obs"
)

// SQLRecordStore is a Postgres-backed RecordSink.
type SQLRecordStore struct {
	DB *sql.DB
}

func NewSQLRecordStore(db *sql.DB) *SQLRecordStore {
	return &SQLRecordStore{DB: db}
}

// Store all records of one run; re-running with the same run id overwrites them.
func (s *SQLRecordStore) SaveRecords(ctx context.Context, runID string, records []domain.VTTSRecord) (err error) {
	defer obs.Time(ctx, nil, "records.postgres.SaveRecords")(&err)

	if s.DB == nil {
		return errors.New("record store: db is nil")
	}

	if strings.TrimSpace(runID) == "" {
		return errors.New("save records: run id must not be empty")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save records: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO vtts_records (run_id, person_id, trip_index, mode, departure_s, duration_s, money, time_component, vtts)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (run_id, person_id, trip_index) DO UPDATE
	SET mode = EXCLUDED.mode,
		departure_s = EXCLUDED.departure_s,
		duration_s = EXCLUDED.duration_s,
		money = EXCLUDED.money,
		time_component = EXCLUDED.time_component,
		vtts = EXCLUDED.vtts;
	`)
	if err != nil {
		return fmt.Errorf("save records: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, r.PersonID, r.TripIndex, r.Mode, r.Start, r.Duration, r.Money, r.Time,
			nullableVTTS(r.Defined, r.VTTS),
		); err != nil {
			return fmt.Errorf("save records person=%q trip=%d: %w", r.PersonID, r.TripIndex, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save records commit: %w", err)
	}

	return nil
}
