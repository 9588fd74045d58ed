package domain

// Event is a single simulation event consumed by the analysis.
// Implementations are plain value types; consumers switch on the concrete type.
type Event interface {
	EventTime() float64
	Person() string
}

// Represents a person starting an activity (actstart).
type ActivityStart struct {
	Time     float64
	PersonID string
	ActType  string
}

// Represents a person ending an activity (actend).
type ActivityEnd struct {
	Time     float64
	PersonID string
	ActType  string
}

// Represents a person starting a leg with the given mode.
type Departure struct {
	Time     float64
	PersonID string
	Mode     string
}

// Represents a person finishing a leg with the given mode.
type Arrival struct {
	Time     float64
	PersonID string
	Mode     string
}

// A scoring contribution. Amount is a signed utility delta (negative = cost)
// and Kind names the scoring component that produced it.
type PersonScore struct {
	Time     float64
	PersonID string
	Amount   float64
	Kind     string
}

// A monetary contribution such as a fare or a toll. Amount is signed the
// way the simulation emits it: payments are negative.
type PersonMoney struct {
	Time     float64
	PersonID string
	Amount   float64
	Purpose  string
}

// Represents a person aborted by the simulation while travelling.
type PersonStuck struct {
	Time     float64
	PersonID string
	Mode     string
}

func (e ActivityStart) EventTime() float64 { return e.Time }
func (e ActivityEnd) EventTime() float64   { return e.Time }
func (e Departure) EventTime() float64     { return e.Time }
func (e Arrival) EventTime() float64       { return e.Time }
func (e PersonScore) EventTime() float64   { return e.Time }
func (e PersonMoney) EventTime() float64   { return e.Time }
func (e PersonStuck) EventTime() float64   { return e.Time }

func (e ActivityStart) Person() string { return e.PersonID }
func (e ActivityEnd) Person() string   { return e.PersonID }
func (e Departure) Person() string     { return e.PersonID }
func (e Arrival) Person() string       { return e.PersonID }
func (e PersonScore) Person() string   { return e.PersonID }
func (e PersonMoney) Person() string   { return e.PersonID }
func (e PersonStuck) Person() string   { return e.PersonID }

// Event type names as they appear in event files.
const (
	TypeActivityStart = "actstart"
	TypeActivityEnd   = "actend"
	TypeDeparture     = "departure"
	TypeArrival       = "arrival"
	TypePersonScore   = "personScore"
	TypePersonMoney   = "personMoney"
	TypePersonStuck   = "stuckAndAbort"
)

// TypeOf returns the file type name of an event.
func TypeOf(ev Event) string {
	switch ev.(type) {
	case ActivityStart:
		return TypeActivityStart
	case ActivityEnd:
		return TypeActivityEnd
	case Departure:
		return TypeDeparture
	case Arrival:
		return TypeArrival
	case PersonScore:
		return TypePersonScore
	case PersonMoney:
		return TypePersonMoney
	case PersonStuck:
		return TypePersonStuck
	default:
		return "unknown"
	}
}
