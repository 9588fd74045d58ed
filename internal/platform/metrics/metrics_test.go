package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := New()
	m.Event("departure")
	m.Event("departure")
	m.Trip("car", true)
	m.Trip("car", false)
	m.Fault("unpaired_arrival")

	if got := testutil.ToFloat64(m.events.WithLabelValues("departure")); got != 2 {
		t.Fatalf("departure events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.trips.WithLabelValues("car")); got != 2 {
		t.Fatalf("car trips = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.undefined); got != 1 {
		t.Fatalf("undefined = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.faults.WithLabelValues("unpaired_arrival")); got != 1 {
		t.Fatalf("faults = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Event("x")
	m.Trip("car", false)
	m.Fault("x")
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Trip("bike", true)

	path := filepath.Join(t.TempDir(), "vtts.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(b), `vtts_trips_total{mode="bike"} 1`) {
		t.Fatalf("textfile missing bike trip counter:\n%s", b)
	}
}
