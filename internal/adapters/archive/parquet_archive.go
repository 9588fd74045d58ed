package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"vtts-analysis/internal/domain"
	"vtts-analysis/internal/platform/obs"

	"github.com/parquet-go/parquet-go"
)

// ParquetRecord is the Parquet schema of one archived VTTS record.
// VTTS is null when undefined.
type ParquetRecord struct {
	RunID     string   `parquet:"run_id"`
	PersonID  string   `parquet:"person_id"`
	TripIndex int32    `parquet:"trip_index"`
	Mode      string   `parquet:"mode"`
	Departure float64  `parquet:"departure_s"`
	Duration  float64  `parquet:"duration_s"`
	Money     float64  `parquet:"money"`
	Time      float64  `parquet:"time_component"`
	VTTS      *float64 `parquet:"vtts,optional"`
}

// ParquetArchive writes each run's records to a local Parquet file and, when
// an uploader is set, copies the file to object storage.
type ParquetArchive struct {
	Dir      string
	Uploader *S3Uploader
}

func NewParquetArchive(dir string, uploader *S3Uploader) *ParquetArchive {
	return &ParquetArchive{Dir: dir, Uploader: uploader}
}

// ObjectKey names the archive of one run.
func ObjectKey(runID string) string {
	return fmt.Sprintf("vtts/%s.parquet", runID)
}

func (a *ParquetArchive) SaveRecords(ctx context.Context, runID string, records []domain.VTTSRecord) (err error) {
	defer obs.Time(ctx, nil, "records.parquet.SaveRecords")(&err)

	if runID == "" {
		return errors.New("archive records: run id must not be empty")
	}

	body, err := EncodeParquet(runID, records)
	if err != nil {
		return fmt.Errorf("archive records: %w", err)
	}

	key := ObjectKey(runID)
	if a.Dir != "" {
		path := filepath.Join(a.Dir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("archive records: create directory: %w", err)
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("archive records: write %q: %w", path, err)
		}
	}

	if a.Uploader != nil {
		meta := map[string]string{
			"rows":   strconv.Itoa(len(records)),
			"run-id": runID,
		}
		if err := a.Uploader.Put(ctx, key, body, meta); err != nil {
			return fmt.Errorf("archive records: %w", err)
		}
	}

	return nil
}

// EncodeParquet serializes records into a Parquet file held in memory.
func EncodeParquet(runID string, records []domain.VTTSRecord) ([]byte, error) {
	rows := make([]ParquetRecord, 0, len(records))
	for _, r := range records {
		row := ParquetRecord{
			RunID:     runID,
			PersonID:  r.PersonID,
			TripIndex: int32(r.TripIndex),
			Mode:      r.Mode,
			Departure: r.Start,
			Duration:  r.Duration,
			Money:     r.Money,
			Time:      r.Time,
		}
		if r.Defined {
			v := r.VTTS
			row.VTTS = &v
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[ParquetRecord](&buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}

	return buf.Bytes(), nil
}
