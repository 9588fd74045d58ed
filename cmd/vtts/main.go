package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"vtts-analysis/internal/adapters/archive"
	"vtts-analysis/internal/adapters/console"
	"vtts-analysis/internal/adapters/events"
	"vtts-analysis/internal/adapters/reference"
	"vtts-analysis/internal/adapters/repositories"
	"vtts-analysis/internal/config"
	"vtts-analysis/internal/domain"
	"vtts-analysis/internal/platform/db"
	"vtts-analysis/internal/platform/metrics"
	"vtts-analysis/internal/platform/obs"
	"vtts-analysis/internal/ports"
	"vtts-analysis/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// main is the composition root of a batch run.
// It wires the event source, the analysis, the report writers and the optional
// record sinks, then prints the mode summary.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := obs.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	logger = logger.With("run_id", runID)

	if err := run(ctx, cfg, runID, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, runID string, logger *slog.Logger) error {
	m := metrics.New()
	defer func() {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("metrics not written", "err", err)
		}
	}()

	ref, err := reference.LoadJSON(cfg.ReferencePath)
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	analysis := services.NewVTTSAnalysis(ref, services.AnalysisOptions{
		Modes:             cfg.Modes,
		InteractionMarker: cfg.InteractionPrefix,
		InteractionMatch:  cfg.InteractionMatch,
		LegGranularity:    cfg.LegGranularity,
		Scale:             cfg.Scale,
	}, logger, m)

	start := time.Now()
	if err := analysis.Consume(ctx, src); err != nil {
		return err
	}
	m.Phase("consume", time.Since(start))

	start = time.Now()
	sum := analysis.ComputeFinalVTTS()
	if err := writeReports(cfg, analysis); err != nil {
		// Reports are independent; the ones that succeeded stay on disk.
		logger.Error("some reports failed", "err", err)
	}
	m.Phase("reports", time.Since(start))

	start = time.Now()
	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	records := analysis.Records()
	for _, sink := range sinks {
		if err := sink.SaveRecords(ctx, runID, records); err != nil {
			return err
		}
	}
	m.Phase("sinks", time.Since(start))

	console.RenderSummary(os.Stdout, sum)
	return nil
}

type closableSource interface {
	ports.EventSource
	Close() error
}

func openSource(ctx context.Context, cfg config.Config) (closableSource, error) {
	switch cfg.EventsSource {
	case config.SourceKafka:
		return events.OpenKafka(ctx, events.KafkaConfig{
			Brokers:   cfg.KafkaBrokers,
			Topic:     cfg.KafkaTopic,
			Partition: cfg.KafkaPartition,
		})
	default:
		return events.OpenXMLFile(cfg.EventsPath)
	}
}

func writeReports(cfg config.Config, a *services.VTTSAnalysis) error {
	out := func(name string) string { return filepath.Join(cfg.OutputDir, name) }

	errs := []error{
		a.PrintVTTS(out("vtts.csv")),
		a.PrintCarVTTS(out("vtts_car.csv")),
		a.PrintAvgVTTSPerPerson(out("vtts_avg_per_person.csv")),
		a.PrintSummary(out("vtts_summary.csv")),
	}
	for _, mode := range a.Statistics().Modes() {
		if mode == domain.ModeCar {
			continue
		}
		errs = append(errs, a.PrintVTTSMode(out("vtts_"+mode+".csv"), mode))
	}
	if cfg.BandMode != "" {
		band := services.Band{Low: cfg.BandLow, High: cfg.BandHigh}
		errs = append(errs, a.PrintVTTSStatistics(out("vtts_statistics_"+cfg.BandMode+".csv"), cfg.BandMode, band))
	}

	return errors.Join(errs...)
}

// openSinks opens every configured record sink. The returned func closes the
// databases it opened.
func openSinks(ctx context.Context, cfg config.Config) ([]ports.RecordSink, func(), error) {
	var (
		sinks []ports.RecordSink
		dbs   []*sql.DB
	)
	closeAll := func() {
		for _, d := range dbs {
			d.Close()
		}
	}

	if cfg.DatabaseURL != "" {
		pg, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, closeAll, err
		}
		dbs = append(dbs, pg)
		sinks = append(sinks, repositories.NewSQLRecordStore(pg))
	}

	if cfg.SQLitePath != "" {
		lite, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		dbs = append(dbs, lite)
		if err := repositories.InitSchema(ctx, lite); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, repositories.NewSqliteRecordStore(lite))
	}

	if cfg.ParquetPath != "" {
		uploader := archive.NewS3Uploader(archive.S3Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
		})
		sinks = append(sinks, archive.NewParquetArchive(cfg.ParquetPath, uploader))
	}

	return sinks, closeAll, nil
}
