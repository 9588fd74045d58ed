package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"vtts-analysis/internal/domain"

	"github.com/parquet-go/parquet-go"
)

func TestEncodeParquet(t *testing.T) {
	records := []domain.VTTSRecord{
		{PersonID: "1", TripIndex: 1, Mode: "car", Start: 21600, Duration: 600, Money: 1.2, Time: 0.05, VTTS: 24, Defined: true},
		{PersonID: "2", TripIndex: 1, Mode: "walk", Start: 30000, Duration: 900},
	}

	body, err := EncodeParquet("run-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := parquet.Read[ParquetRecord](bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].VTTS == nil || *rows[0].VTTS != 24 {
		t.Fatalf("row 0 vtts = %v, want 24", rows[0].VTTS)
	}
	if rows[1].VTTS != nil {
		t.Fatalf("row 1 vtts = %v, want null for undefined", *rows[1].VTTS)
	}
	if rows[1].RunID != "run-1" || rows[1].Mode != "walk" {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}

func TestParquetArchiveWritesLocalFile(t *testing.T) {
	dir := t.TempDir()
	a := NewParquetArchive(dir, nil)

	err := a.SaveRecords(context.Background(), "abc", []domain.VTTSRecord{{PersonID: "1", TripIndex: 1, Mode: "bike"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "vtts", "abc.parquet")); err != nil {
		t.Fatalf("expected archive file: %v", err)
	}
}

func TestNewS3UploaderOptional(t *testing.T) {
	if u := NewS3Uploader(S3Config{Bucket: "b"}); u != nil {
		t.Fatalf("expected nil uploader without credentials")
	}

	u := NewS3Uploader(S3Config{Endpoint: "http://localhost:9000", AccessKeyID: "k", SecretAccessKey: "s"})
	if u == nil {
		t.Fatalf("expected uploader")
	}
	if u.Bucket() != "vtts-analysis" {
		t.Fatalf("bucket = %q, want default", u.Bucket())
	}
}
