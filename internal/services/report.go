package services

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"vtts-analysis/internal/domain"
)

// Undefined is written in place of a VTTS value that has no meaning.
const Undefined = "undefined"

var (
	vttsHeader    = []string{"person", "trip", "mode", "departure_s", "duration_s", "vtts_per_hour"}
	personHeader  = []string{"person", "trips", "defined_trips", "avg_vtts_per_hour"}
	bandHeader    = []string{"mode", "low", "high", "mode_trips", "count", "mean_vtts_per_hour"}
	summaryHeader = []string{"mode", "trips", "undefined", "mean", "p05", "p25", "p50", "p75", "p95"}
)

// WriteVTTSTable writes one row per trip record.
func WriteVTTSTable(path string, recs []domain.VTTSRecord) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		vtts := Undefined
		if r.Defined {
			vtts = formatValue(r.VTTS)
		}
		rows = append(rows, []string{
			r.PersonID,
			strconv.Itoa(r.TripIndex),
			r.Mode,
			formatSeconds(r.Start),
			formatSeconds(r.Duration),
			vtts,
		})
	}
	return writeTable(path, vttsHeader, rows)
}

// WritePersonTable writes one row per person with the mean over their trips.
func WritePersonTable(path string, stats []PersonStat) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.PersonID,
			strconv.Itoa(s.Trips),
			strconv.Itoa(s.Defined),
			meanOrUndefined(s.MeanStat),
		})
	}
	return writeTable(path, personHeader, rows)
}

// WriteBandTable writes the banded statistics of one mode.
func WriteBandTable(path string, st BandStat) error {
	mean := Undefined
	if st.HasMean() {
		mean = formatValue(st.Mean)
	}
	rows := [][]string{{
		st.Mode,
		formatValue(st.Band.Low),
		formatValue(st.Band.High),
		strconv.Itoa(st.ModeTrips),
		strconv.Itoa(st.Count),
		mean,
	}}
	return writeTable(path, bandHeader, rows)
}

// WriteSummaryTable writes one row per mode followed by the overall row.
func WriteSummaryTable(path string, sum Summary) error {
	header, rows := SummaryTable(sum)
	return writeTable(path, header, rows)
}

// SummaryTable formats a summary as header and rows, the overall row last.
func SummaryTable(sum Summary) ([]string, [][]string) {
	rows := make([][]string, 0, len(sum.ByMode)+1)
	for _, m := range sum.ByMode {
		rows = append(rows, summaryRow(m))
	}
	rows = append(rows, summaryRow(sum.Overall))
	return slices.Clone(summaryHeader), rows
}

func summaryRow(m ModeStat) []string {
	row := []string{
		m.Mode,
		strconv.Itoa(m.Trips),
		strconv.Itoa(m.Undefined),
		meanOrUndefined(m.MeanStat),
	}
	for _, p := range []float64{m.P05, m.P25, m.P50, m.P75, m.P95} {
		if m.HasMean() {
			row = append(row, formatValue(p))
		} else {
			row = append(row, Undefined)
		}
	}
	return row
}

func meanOrUndefined(m MeanStat) string {
	if !m.HasMean() {
		return Undefined
	}
	return formatValue(m.Mean)
}

func writeTable(path string, header []string, rows [][]string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write report %q: create directory: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write report %q: close: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return fmt.Errorf("write report %q: header: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write report %q: rows: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report %q: flush: %w", path, err)
	}

	return nil
}

func formatSeconds(v float64) string { return formatFixed(v, 2) }

func formatValue(v float64) string { return formatFixed(v, 4) }

func formatFixed(v float64, prec int) string {
	if v == 0 {
		// Avoid "-0.00".
		v = 0
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
