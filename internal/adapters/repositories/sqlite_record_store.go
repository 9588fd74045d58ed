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

// SQLite backed RecordSink, handy for local runs without a database server.
type SqliteRecordStore struct {
	DB *sql.DB
}

func NewSqliteRecordStore(db *sql.DB) *SqliteRecordStore {
	return &SqliteRecordStore{DB: db}
}

// Store all records of one run; re-running with the same run id overwrites them.
func (s *SqliteRecordStore) SaveRecords(ctx context.Context, runID string, records []domain.VTTSRecord) (err error) {
	defer obs.Time(ctx, nil, "records.sqlite.SaveRecords")(&err)

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
	INSERT OR REPLACE INTO vtts_records (
		run_id,
		person_id,
		trip_index,
		mode,
		departure_s,
		duration_s,
		money,
		time_component,
		vtts
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
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

// Return the stored records of one run ordered by person and trip.
func (s *SqliteRecordStore) ListRecords(ctx context.Context, runID string) ([]domain.VTTSRecord, error) {
	if s.DB == nil {
		return nil, errors.New("record store: db is nil")
	}

	query := `
	SELECT
		person_id,
		trip_index,
		mode,
		departure_s,
		duration_s,
		money,
		time_component,
		vtts
	FROM vtts_records
	WHERE run_id = ?
	ORDER BY person_id, trip_index;
	`
	rows, err := s.DB.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list records: query vtts_records table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.VTTSRecord, 0, 64)
	for rows.Next() {
		var r domain.VTTSRecord
		var vtts sql.NullFloat64
		if err := rows.Scan(&r.PersonID, &r.TripIndex, &r.Mode, &r.Start, &r.Duration, &r.Money, &r.Time, &vtts); err != nil {
			return nil, fmt.Errorf("list records: scan row: %w", err)
		}
		r.VTTS, r.Defined = vtts.Float64, vtts.Valid
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: row iteration: %w", err)
	}

	return records, nil
}
