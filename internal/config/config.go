package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the runtime configuration of an analysis run, read from the
// environment.
type Config struct {
	EventsPath   string
	EventsSource string

	KafkaBrokers   []string
	KafkaTopic     string
	KafkaPartition int

	ReferencePath string
	OutputDir     string

	Modes             []string
	InteractionPrefix string
	InteractionMatch  string
	LegGranularity    bool
	Scale             float64

	BandMode string
	BandLow  float64
	BandHigh float64

	DatabaseURL string
	SQLitePath  string
	ParquetPath string

	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string

	MetricsTextfile string
	LogLevel        string
}

const (
	SourceFile  = "file"
	SourceKafka = "kafka"
)

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration. Malformed numbers and booleans are errors.
func Load() (Config, error) {
	cfg := Config{
		EventsPath:   Get("EVENTS_PATH", "data/output_events.xml.gz"),
		EventsSource: strings.ToLower(Get("EVENTS_SOURCE", SourceFile)),

		KafkaBrokers: List("KAFKA_BROKERS"),
		KafkaTopic:   Get("KAFKA_TOPIC", "matsim-events"),

		ReferencePath: Get("REFERENCE_PATH", ""),
		OutputDir:     Get("OUTPUT_DIR", "output"),

		Modes:             List("VTTS_MODES"),
		InteractionPrefix: Get("INTERACTION_PREFIX", "interaction"),
		InteractionMatch:  strings.ToLower(Get("INTERACTION_MATCH", "prefix")),

		BandMode: Get("BAND_MODE", ""),

		DatabaseURL: Get("DATABASE_URL", ""),
		SQLitePath:  Get("SQLITE_PATH", ""),
		ParquetPath: Get("PARQUET_PATH", ""),

		S3Endpoint:        Get("S3_ENDPOINT", ""),
		S3AccessKeyID:     Get("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: Get("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          Get("S3_BUCKET", ""),

		MetricsTextfile: Get("METRICS_TEXTFILE", ""),
		LogLevel:        Get("LOG_LEVEL", "info"),
	}

	var errs []error
	var err error

	if cfg.KafkaPartition, err = intVar("KAFKA_PARTITION", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.LegGranularity, err = boolVar("LEG_GRANULARITY", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.Scale, err = floatVar("VTTS_SCALE", 3600); err != nil {
		errs = append(errs, err)
	}
	if cfg.BandLow, err = floatVar("BAND_LOW", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.BandHigh, err = floatVar("BAND_HIGH", 0); err != nil {
		errs = append(errs, err)
	}

	switch cfg.EventsSource {
	case SourceFile:
		if cfg.EventsPath == "" {
			errs = append(errs, errors.New("EVENTS_PATH is required for the file source"))
		}
	case SourceKafka:
		if len(cfg.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka source"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_SOURCE: unknown source %q", cfg.EventsSource))
	}

	switch cfg.InteractionMatch {
	case "prefix", "contains":
	default:
		errs = append(errs, fmt.Errorf("INTERACTION_MATCH: unknown policy %q", cfg.InteractionMatch))
	}

	if cfg.Scale <= 0 {
		errs = append(errs, fmt.Errorf("VTTS_SCALE: must be positive, got %g", cfg.Scale))
	}
	if cfg.BandMode != "" && cfg.BandLow > cfg.BandHigh {
		errs = append(errs, fmt.Errorf("BAND_LOW %g exceeds BAND_HIGH %g", cfg.BandLow, cfg.BandHigh))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// List splits a comma separated variable, dropping blank items.
func List(key string) []string {
	raw := Get(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func intVar(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

func floatVar(key string, fallback float64) (float64, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return v, nil
}

func boolVar(key string, fallback bool) (bool, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return v, nil
}
