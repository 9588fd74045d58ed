package domain

import "strings"

// Component tells which side of the VTTS ratio a score contribution feeds.
type Component int

const (
	ComponentNone Component = iota
	ComponentTime
	ComponentMoney
)

func (c Component) String() string {
	switch c {
	case ComponentTime:
		return "time"
	case ComponentMoney:
		return "money"
	default:
		return "none"
	}
}

// Scoring parameters of one activity type. Times are seconds since midnight;
// a zero opening or closing time means the activity is always open.
type ActivityParams struct {
	Type            string
	TypicalDuration float64
	OpeningTime     float64
	ClosingTime     float64
}

// Reference describes how the scoring of the analysed run was set up.
// Score kinds listed in MoneyComponents count as money, kinds listed in
// TimeComponents count as time, as do kinds naming a known activity type
// while that activity is scored and open.
type Reference struct {
	Activities      map[string]ActivityParams
	TimeComponents  map[string]struct{}
	MoneyComponents map[string]struct{}
}

var (
	DefaultTimeComponents  = []string{"travelTime", "waiting", "lateArrival", "earlyDeparture", "tooShortDuration"}
	DefaultMoneyComponents = []string{"money", "fare", "toll", "parking", "distanceCost"}
)

// NewReference builds a Reference. Nil label lists fall back to the defaults.
func NewReference(activities []ActivityParams, timeLabels, moneyLabels []string) *Reference {
	if timeLabels == nil {
		timeLabels = DefaultTimeComponents
	}
	if moneyLabels == nil {
		moneyLabels = DefaultMoneyComponents
	}

	r := &Reference{
		Activities:      make(map[string]ActivityParams, len(activities)),
		TimeComponents:  toSet(timeLabels),
		MoneyComponents: toSet(moneyLabels),
	}
	for _, a := range activities {
		r.Activities[a.Type] = a
	}
	return r
}

// Classify maps a score kind, observed at simulation time at, to the component
// it contributes to. A kind naming a known activity counts as time only while
// that activity is scored and open; otherwise it is ComponentNone.
func (r *Reference) Classify(kind string, at float64) Component {
	kind = strings.TrimSpace(kind)
	if _, ok := r.MoneyComponents[kind]; ok {
		return ComponentMoney
	}
	if _, ok := r.TimeComponents[kind]; ok {
		return ComponentTime
	}
	if a, ok := r.Activity(kind); ok && a.Scored() && a.OpenAt(at) {
		return ComponentTime
	}
	return ComponentNone
}

// Activity returns the parameters for an activity type, if known.
func (r *Reference) Activity(actType string) (ActivityParams, bool) {
	a, ok := r.Activities[actType]
	return a, ok
}

// Scored reports whether the activity earns duration utility. Activities with
// no typical duration, such as stage placeholders, do not.
func (a ActivityParams) Scored() bool { return a.TypicalDuration > 0 }

// OpenAt reports whether t lies inside the opening hours. A zero bound is open.
func (a ActivityParams) OpenAt(t float64) bool {
	if a.OpeningTime > 0 && t < a.OpeningTime {
		return false
	}
	if a.ClosingTime > 0 && t > a.ClosingTime {
		return false
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[v] = struct{}{}
	}
	return out
}
