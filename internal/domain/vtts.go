package domain

// DefaultScale converts a per-second time score into an hourly rate.
const DefaultScale = 3600.0

// Represents the value of travel time savings derived for a single trip.
// When Defined is false the time-equivalent denominator was zero and VTTS
// carries no meaning.
type VTTSRecord struct {
	PersonID  string
	TripIndex int
	Mode      string
	Start     float64
	Duration  float64
	Money     float64
	Time      float64
	VTTS      float64
	Defined   bool
}

// ComputeVTTS maps a trip record to its VTTS in currency per hour:
// money / time * scale. A zero time component yields an undefined record.
func ComputeVTTS(rec TripScoreRecord, scale float64) VTTSRecord {
	out := VTTSRecord{
		PersonID:  rec.PersonID,
		TripIndex: rec.TripIndex,
		Mode:      rec.Mode,
		Start:     rec.Start,
		Duration:  rec.Duration(),
		Money:     rec.Money,
		Time:      rec.Time,
	}
	if rec.Time == 0 {
		return out
	}
	out.VTTS = rec.Money / rec.Time * scale
	out.Defined = true
	return out
}
