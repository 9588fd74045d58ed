package console

import (
	"bytes"
	"strings"
	"testing"
	"vtts-analysis/internal/services"
)

func TestRenderSummary(t *testing.T) {
	sum := services.Summary{
		Overall: services.ModeStat{Mode: "all", MeanStat: services.MeanStat{Trips: 2, Defined: 1, Undefined: 1, Mean: 12.5}},
		ByMode: []services.ModeStat{
			{Mode: "bike", MeanStat: services.MeanStat{Trips: 1, Undefined: 1}},
			{Mode: "car", MeanStat: services.MeanStat{Trips: 1, Defined: 1, Mean: 12.5}, P50: 12.5},
		},
	}

	var buf bytes.Buffer
	RenderSummary(&buf, sum)
	out := buf.String()

	for _, want := range []string{"mode", "p95", "bike", "car", "all", "12.5000", "undefined"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "bike") > strings.Index(out, "car") {
		t.Fatalf("modes not in lexicographic order:\n%s", out)
	}
}
