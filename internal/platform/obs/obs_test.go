package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTimeLogsRunIDAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx := WithRunID(context.Background(), "run-1")
	err := errors.New("boom")
	Time(ctx, logger, "reports.write")(&err)

	out := buf.String()
	for _, want := range []string{"run_id=run-1", "op=reports.write", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %q", out, want)
		}
	}
}

func TestTimeUsesGivenLogger(t *testing.T) {
	var given, fallback bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&fallback, "info"))
	defer slog.SetDefault(prev)

	Time(context.Background(), NewLogger(&given, "info"), "consume")(nil)
	if !strings.Contains(given.String(), "op=consume") {
		t.Fatalf("given logger output %q missing op", given.String())
	}
	if fallback.Len() != 0 {
		t.Fatalf("default logger written: %q", fallback.String())
	}

	// a nil logger falls back to the default one
	Time(context.Background(), nil, "sinks")(nil)
	if !strings.Contains(fallback.String(), "op=sinks") {
		t.Fatalf("default logger output %q missing op", fallback.String())
	}
}
