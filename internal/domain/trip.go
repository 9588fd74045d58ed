package domain

// Well-known transport modes. The set is open; these only get special
// treatment in reporting.
const (
	ModeCar  = "car"
	ModeBike = "bike"
	ModePt   = "pt"
	ModeWalk = "walk"
	ModeRide = "ride"
)

// Represents one unbroken movement by a single mode.
type Leg struct {
	Mode      string
	Departure float64
	Arrival   float64
}

func (l Leg) Duration() float64 { return l.Arrival - l.Departure }

// Represents one completed trip of one person together with the score
// contributions accumulated while it was in progress.
//
// Money and Time are disutility magnitudes: raw utility deltas negated so
// that a cost is positive. A record is immutable once emitted.
type TripScoreRecord struct {
	PersonID  string
	TripIndex int
	Mode      string
	Start     float64
	End       float64
	Legs      []Leg
	Money     float64
	Time      float64
}

func (r TripScoreRecord) Duration() float64 { return r.End - r.Start }

// MainMode returns the mode of the longest leg. The first leg wins ties.
func MainMode(legs []Leg) string {
	mode := ""
	longest := -1.0
	for _, l := range legs {
		if d := l.Duration(); d > longest {
			longest = d
			mode = l.Mode
		}
	}
	return mode
}
