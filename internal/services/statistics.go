package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"vtts-analysis/internal/domain"
)

var ErrInvalidBand = errors.New("band lower bound exceeds upper bound")

// Closed interval [Low, High] of VTTS values.
type Band struct {
	Low  float64
	High float64
}

// Mean VTTS over a set of records. Mean is meaningful only when Defined > 0.
type MeanStat struct {
	Trips     int
	Defined   int
	Undefined int
	Mean      float64
}

// HasMean reports whether at least one defined VTTS contributed.
func (m MeanStat) HasMean() bool { return m.Defined > 0 }

// Per-mode statistics including percentiles of the defined VTTS values.
type ModeStat struct {
	Mode string
	MeanStat
	P05, P25, P50, P75, P95 float64
}

type PersonStat struct {
	PersonID string
	MeanStat
}

type BandStat struct {
	Mode      string
	Band      Band
	ModeTrips int
	Count     int
	Mean      float64
}

func (b BandStat) HasMean() bool { return b.Count > 0 }

// Result of the final aggregation over all modes.
type Summary struct {
	Overall ModeStat
	ByMode  []ModeStat
}

// Statistics collects finalized VTTS records and aggregates them by mode and
// by person. Records are written during the accumulate phase only.
type Statistics struct {
	modes    map[string]struct{}
	records  []domain.VTTSRecord
	filtered int

	summary      *Summary
	summaryCount int
}

// NewStatistics restricts aggregation to the given modes; none means all modes.
func NewStatistics(modes []string) *Statistics {
	s := &Statistics{}
	for _, m := range modes {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if s.modes == nil {
			s.modes = make(map[string]struct{})
		}
		s.modes[m] = struct{}{}
	}
	return s
}

// Add stores a record. It returns false when the mode filter rejected it.
func (s *Statistics) Add(rec domain.VTTSRecord) bool {
	if s.modes != nil {
		if _, ok := s.modes[rec.Mode]; !ok {
			s.filtered++
			return false
		}
	}
	s.records = append(s.records, rec)
	return true
}

func (s *Statistics) Filtered() int { return s.filtered }

func (s *Statistics) Len() int { return len(s.records) }

// Records returns the records ordered by person and trip index.
func (s *Statistics) Records() []domain.VTTSRecord {
	out := slices.Clone(s.records)
	slices.SortFunc(out, compareRecords)
	return out
}

// RecordsForMode returns the ordered records of one mode.
func (s *Statistics) RecordsForMode(mode string) []domain.VTTSRecord {
	out := make([]domain.VTTSRecord, 0)
	for _, r := range s.records {
		if r.Mode == mode {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, compareRecords)
	return out
}

// Modes returns the observed modes in lexicographic order.
func (s *Statistics) Modes() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range s.records {
		if _, ok := seen[r.Mode]; ok {
			continue
		}
		seen[r.Mode] = struct{}{}
		out = append(out, r.Mode)
	}
	slices.Sort(out)
	return out
}

// ModeMean returns the mean VTTS of one mode.
func (s *Statistics) ModeMean(mode string) MeanStat {
	return meanOf(s.RecordsForMode(mode))
}

// OverallMean returns the mean VTTS over all modes.
func (s *Statistics) OverallMean() MeanStat {
	return meanOf(s.records)
}

// PersonMeans averages each person's VTTS over all of their trips, independent
// of mode. The result is ordered by person id.
func (s *Statistics) PersonMeans() []PersonStat {
	byPerson := make(map[string][]domain.VTTSRecord)
	ids := make([]string, 0)
	for _, r := range s.records {
		if _, ok := byPerson[r.PersonID]; !ok {
			ids = append(ids, r.PersonID)
		}
		byPerson[r.PersonID] = append(byPerson[r.PersonID], r)
	}
	slices.Sort(ids)

	out := make([]PersonStat, 0, len(ids))
	for _, id := range ids {
		out = append(out, PersonStat{PersonID: id, MeanStat: meanOf(byPerson[id])})
	}
	return out
}

// Band counts and averages the defined VTTS values of a mode inside [low, high].
func (s *Statistics) Band(mode string, band Band) (BandStat, error) {
	if band.Low > band.High {
		return BandStat{}, fmt.Errorf("band [%g, %g]: %w", band.Low, band.High, ErrInvalidBand)
	}

	out := BandStat{Mode: mode, Band: band}
	var sum float64
	for _, r := range s.records {
		if r.Mode != mode {
			continue
		}
		out.ModeTrips++
		if !r.Defined || r.VTTS < band.Low || r.VTTS > band.High {
			continue
		}
		out.Count++
		sum += r.VTTS
	}
	if out.Count > 0 {
		out.Mean = sum / float64(out.Count)
	}
	return out, nil
}

// ComputeFinal aggregates all records per mode and overall. Calling it again
// without new records returns the same summary.
func (s *Statistics) ComputeFinal() Summary {
	if s.summary != nil && s.summaryCount == len(s.records) {
		return s.summary.clone()
	}

	sum := Summary{Overall: modeStat("all", s.records)}
	for _, m := range s.Modes() {
		sum.ByMode = append(sum.ByMode, modeStat(m, s.RecordsForMode(m)))
	}

	s.summary = &sum
	s.summaryCount = len(s.records)
	return sum.clone()
}

func (sum Summary) clone() Summary {
	sum.ByMode = slices.Clone(sum.ByMode)
	return sum
}

func modeStat(mode string, recs []domain.VTTSRecord) ModeStat {
	st := ModeStat{Mode: mode, MeanStat: meanOf(recs)}

	values := make([]float64, 0, len(recs))
	for _, r := range recs {
		if r.Defined {
			values = append(values, r.VTTS)
		}
	}
	slices.Sort(values)

	st.P05 = percentile(values, 5)
	st.P25 = percentile(values, 25)
	st.P50 = percentile(values, 50)
	st.P75 = percentile(values, 75)
	st.P95 = percentile(values, 95)
	return st
}

func meanOf(recs []domain.VTTSRecord) MeanStat {
	st := MeanStat{Trips: len(recs)}
	var sum float64
	for _, r := range recs {
		if !r.Defined {
			st.Undefined++
			continue
		}
		st.Defined++
		sum += r.VTTS
	}
	if st.Defined > 0 {
		st.Mean = sum / float64(st.Defined)
	}
	return st
}

// percentile interpolates linearly between the closest ranks of sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(idx-float64(lower))
}

func compareRecords(a, b domain.VTTSRecord) int {
	if c := strings.Compare(a.PersonID, b.PersonID); c != 0 {
		return c
	}
	return a.TripIndex - b.TripIndex
}
