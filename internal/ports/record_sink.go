package ports

import (
	"context"
	"vtts-analysis/internal/domain"
)

// Port: a boundary for persisting finalized VTTS records outside the report files.
type RecordSink interface {
	// Store every record of one analysis run.
	SaveRecords(ctx context.Context, runID string, records []domain.VTTSRecord) error
}
