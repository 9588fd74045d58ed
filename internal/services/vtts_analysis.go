package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"vtts-analysis/internal/domain"
	"vtts-analysis/internal/platform/metrics"
	"vtts-analysis/internal/platform/obs"
	"vtts-analysis/internal/ports"
)

const DefaultInteractionMarker = "interaction"

type AnalysisOptions struct {
	// Modes restricts reporting; empty means all modes.
	Modes             []string
	InteractionMarker string
	InteractionMatch  string
	LegGranularity    bool
	// Scale converts the time component into an hourly rate. Zero means domain.DefaultScale.
	Scale float64
}

// VTTSAnalysis derives VTTS values from an event stream.
//
// It runs in two phases: events are consumed first (HandleEvent / Consume),
// then ComputeFinalVTTS and the Print* reports read the collected records.
// Report calls made before the stream is exhausted only see the trips
// finalized so far.
type VTTSAnalysis struct {
	tracker *TripTracker
	stats   *Statistics
	scale   float64
	log     *slog.Logger
	metrics *metrics.Metrics

	events int
	faults map[string]int
}

func NewVTTSAnalysis(ref *domain.Reference, opts AnalysisOptions, logger *slog.Logger, m *metrics.Metrics) *VTTSAnalysis {
	if logger == nil {
		logger = slog.Default()
	}
	scale := opts.Scale
	if scale == 0 {
		scale = domain.DefaultScale
	}

	tracker := NewTripTracker(ref, TrackerOptions{
		InteractionMarker: opts.InteractionMarker,
		InteractionMatch:  opts.InteractionMatch,
		LegGranularity:    opts.LegGranularity,
	})

	return &VTTSAnalysis{
		tracker: tracker,
		stats:   NewStatistics(opts.Modes),
		scale:   scale,
		log:     logger,
		metrics: m,
		faults:  make(map[string]int),
	}
}

// HandleEvent feeds one event through the trip tracker. Data faults are
// logged and counted; they never stop the analysis.
func (a *VTTSAnalysis) HandleEvent(ev domain.Event) {
	a.events++
	a.metrics.Event(domain.TypeOf(ev))

	rec, err := a.tracker.Handle(ev)
	if err != nil {
		kind := faultKind(err)
		a.faults[kind]++
		a.metrics.Fault(kind)
		a.log.Warn("skipping inconsistent event", "kind", kind, "type", domain.TypeOf(ev), "err", err)
	}
	if rec != nil {
		a.addRecord(*rec)
	}
}

// Consume reads src until io.EOF.
func (a *VTTSAnalysis) Consume(ctx context.Context, src ports.EventSource) (err error) {
	defer obs.Time(ctx, a.log, "analysis.consume")(&err)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("consume events: %w", err)
		}

		ev, err := src.ReadEvent(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("consume events: read event #%d: %w", a.events+1, err)
		}
		a.HandleEvent(ev)
	}

	if pending := a.tracker.Pending(); len(pending) > 0 {
		a.log.Warn("trips still open at end of stream", "persons", len(pending), "first", pending[0])
	}
	if n := a.tracker.Unclassified(); n > 0 {
		a.log.Info("score contributions with unknown kind ignored", "count", n)
	}
	a.log.Info("events consumed",
		"events", a.events,
		"trips", a.stats.Len(),
		"filtered", a.stats.Filtered(),
	)
	return nil
}

func (a *VTTSAnalysis) addRecord(rec domain.TripScoreRecord) {
	v := domain.ComputeVTTS(rec, a.scale)
	if !a.stats.Add(v) {
		return
	}
	a.metrics.Trip(v.Mode, v.Defined)
	if !v.Defined {
		a.log.Debug("vtts undefined: zero time component", "person", v.PersonID, "trip", v.TripIndex, "mode", v.Mode)
	}
}

// ComputeFinalVTTS aggregates all records. Calling it again without new
// events returns the same summary.
func (a *VTTSAnalysis) ComputeFinalVTTS() Summary {
	sum := a.stats.ComputeFinal()

	attrs := []any{"trips", sum.Overall.Trips, "undefined", sum.Overall.Undefined}
	if sum.Overall.HasMean() {
		attrs = append(attrs, "mean_vtts", formatValue(sum.Overall.Mean))
	}
	a.log.Info("final vtts computed", attrs...)
	for _, m := range sum.ByMode {
		a.log.Debug("mode vtts", "mode", m.Mode, "trips", m.Trips, "mean", formatValue(m.Mean))
	}
	return sum
}

// PrintVTTS writes every trip's VTTS.
func (a *VTTSAnalysis) PrintVTTS(path string) error {
	return a.report("vtts", path, func() error { return WriteVTTSTable(path, a.stats.Records()) })
}

// PrintCarVTTS writes the VTTS of car trips.
func (a *VTTSAnalysis) PrintCarVTTS(path string) error {
	return a.PrintVTTSMode(path, domain.ModeCar)
}

// PrintVTTSMode writes the VTTS of the trips of one mode.
func (a *VTTSAnalysis) PrintVTTSMode(path, mode string) error {
	return a.report("vtts_"+mode, path, func() error { return WriteVTTSTable(path, a.stats.RecordsForMode(mode)) })
}

// PrintAvgVTTSPerPerson writes each person's mean VTTS over their trips.
func (a *VTTSAnalysis) PrintAvgVTTSPerPerson(path string) error {
	return a.report("avg_per_person", path, func() error { return WritePersonTable(path, a.stats.PersonMeans()) })
}

// PrintVTTSStatistics writes count and mean of the mode's VTTS values inside band.
func (a *VTTSAnalysis) PrintVTTSStatistics(path, mode string, band Band) error {
	return a.report("statistics_"+mode, path, func() error {
		st, err := a.stats.Band(mode, band)
		if err != nil {
			return err
		}
		return WriteBandTable(path, st)
	})
}

// PrintSummary writes the per-mode and overall summary.
func (a *VTTSAnalysis) PrintSummary(path string) error {
	return a.report("summary", path, func() error { return WriteSummaryTable(path, a.stats.ComputeFinal()) })
}

func (a *VTTSAnalysis) report(name, path string, write func() error) error {
	if err := write(); err != nil {
		a.log.Error("report failed", "report", name, "path", path, "err", err)
		return fmt.Errorf("print %s: %w", name, err)
	}
	a.log.Info("report written", "report", name, "path", path)
	return nil
}

// Records returns the collected records ordered by person and trip.
func (a *VTTSAnalysis) Records() []domain.VTTSRecord { return a.stats.Records() }

func (a *VTTSAnalysis) Statistics() *Statistics { return a.stats }

// Faults returns the number of absorbed data faults per kind.
func (a *VTTSAnalysis) Faults() map[string]int { return maps.Clone(a.faults) }

// Pending returns the persons whose trip was still open.
func (a *VTTSAnalysis) Pending() []string { return a.tracker.Pending() }

func faultKind(err error) string {
	switch {
	case errors.Is(err, ErrUnpairedArrival):
		return "unpaired_arrival"
	case errors.Is(err, ErrUnpairedDeparture):
		return "unpaired_departure"
	case errors.Is(err, ErrOutOfOrder):
		return "out_of_order"
	case errors.Is(err, ErrNegativeTime):
		return "negative_time"
	case errors.Is(err, ErrStuck):
		return "stuck"
	default:
		return "other"
	}
}
