package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"vtts-analysis/internal/domain"
)

var (
	ErrUnpairedArrival   = errors.New("arrival without open leg")
	ErrUnpairedDeparture = errors.New("departure while a leg is open")
	ErrOutOfOrder        = errors.New("event earlier than previous event")
	ErrNegativeTime      = errors.New("negative event time")
	ErrStuck             = errors.New("person stuck while travelling")
)

type tripState int

const (
	stateIdle tripState = iota
	stateInLeg
	stateArrived
	stateInteraction
)

// Interaction matching policies.
const (
	InteractionPrefix   = "prefix"
	InteractionContains = "contains"
)

type TrackerOptions struct {
	// Activity type marker of placeholder activities between stages of a trip.
	InteractionMarker string
	// InteractionPrefix (default) or InteractionContains.
	InteractionMatch string
	// Emit one record per leg instead of merging legs across interaction activities.
	LegGranularity bool
}

// In-flight trip state of one person.
type personTrip struct {
	state tripState
	legs  []domain.Leg
	money float64
	time  float64
	trips int
}

// TripTracker turns the event stream into TripScoreRecords.
// It is not safe for concurrent use; events must be handled in stream order.
type TripTracker struct {
	ref          *domain.Reference
	opts         TrackerOptions
	persons      map[string]*personTrip
	lastTime     float64
	unclassified int
}

func NewTripTracker(ref *domain.Reference, opts TrackerOptions) *TripTracker {
	if ref == nil {
		ref = domain.NewReference(nil, nil, nil)
	}
	if opts.InteractionMatch == "" {
		opts.InteractionMatch = InteractionPrefix
	}
	return &TripTracker{
		ref:     ref,
		opts:    opts,
		persons: make(map[string]*personTrip),
	}
}

// Handle applies one event to the owning person's state machine.
// It returns the finalized record when the event completes a trip. A non-nil
// error reports a data fault local to that person; the tracker stays usable.
func (t *TripTracker) Handle(ev domain.Event) (*domain.TripScoreRecord, error) {
	now := ev.EventTime()
	if now < 0 {
		return nil, fmt.Errorf("person %s: time %.2f: %w", ev.Person(), now, ErrNegativeTime)
	}
	if now < t.lastTime {
		return nil, fmt.Errorf("person %s: time %.2f after %.2f: %w", ev.Person(), now, t.lastTime, ErrOutOfOrder)
	}
	t.lastTime = now

	switch e := ev.(type) {
	case domain.Departure:
		return t.onDeparture(e)
	case domain.Arrival:
		return t.onArrival(e)
	case domain.ActivityStart:
		return t.onActivityStart(e), nil
	case domain.PersonScore:
		t.onScore(e)
	case domain.PersonMoney:
		if p := t.active(e.PersonID); p != nil {
			p.money += -e.Amount
		}
	case domain.PersonStuck:
		return nil, t.onStuck(e)
	}

	return nil, nil
}

func (t *TripTracker) person(id string) *personTrip {
	p, ok := t.persons[id]
	if !ok {
		p = &personTrip{}
		t.persons[id] = p
	}
	return p
}

// active returns the person's state if a trip is in progress.
func (t *TripTracker) active(id string) *personTrip {
	p, ok := t.persons[id]
	if !ok || p.state == stateIdle {
		return nil
	}
	return p
}

func (t *TripTracker) onDeparture(e domain.Departure) (*domain.TripScoreRecord, error) {
	p := t.person(e.PersonID)
	leg := domain.Leg{Mode: e.Mode, Departure: e.Time}

	switch p.state {
	case stateInteraction:
		p.legs = append(p.legs, leg)
		p.state = stateInLeg
		return nil, nil
	case stateArrived:
		// The activity start closing the previous trip never came.
		rec := t.finalize(e.PersonID, p)
		p.legs = []domain.Leg{leg}
		p.state = stateInLeg
		return rec, nil
	case stateInLeg:
		p.reset()
		p.legs = []domain.Leg{leg}
		p.state = stateInLeg
		return nil, fmt.Errorf("person %s: departure at %.2f: %w", e.PersonID, e.Time, ErrUnpairedDeparture)
	default:
		p.reset()
		p.legs = []domain.Leg{leg}
		p.state = stateInLeg
		return nil, nil
	}
}

func (t *TripTracker) onArrival(e domain.Arrival) (*domain.TripScoreRecord, error) {
	p, ok := t.persons[e.PersonID]
	if !ok || p.state != stateInLeg {
		return nil, fmt.Errorf("person %s: arrival at %.2f: %w", e.PersonID, e.Time, ErrUnpairedArrival)
	}

	p.legs[len(p.legs)-1].Arrival = e.Time
	if t.opts.LegGranularity {
		return t.finalize(e.PersonID, p), nil
	}
	p.state = stateArrived
	return nil, nil
}

func (t *TripTracker) onActivityStart(e domain.ActivityStart) *domain.TripScoreRecord {
	p, ok := t.persons[e.PersonID]
	if !ok {
		return nil
	}

	switch p.state {
	case stateArrived:
		if t.isInteraction(e.ActType) {
			p.state = stateInteraction
			return nil
		}
		return t.finalize(e.PersonID, p)
	case stateInteraction:
		if t.isInteraction(e.ActType) {
			return nil
		}
		// The trip ended at the interaction; the last leg's arrival closes it.
		return t.finalize(e.PersonID, p)
	default:
		return nil
	}
}

func (t *TripTracker) onScore(e domain.PersonScore) {
	p := t.active(e.PersonID)
	if p == nil {
		return
	}

	switch t.ref.Classify(e.Kind, e.Time) {
	case domain.ComponentMoney:
		p.money += -e.Amount
	case domain.ComponentTime:
		p.time += -e.Amount
	default:
		t.unclassified++
	}
}

func (t *TripTracker) onStuck(e domain.PersonStuck) error {
	p := t.active(e.PersonID)
	if p == nil {
		return nil
	}
	p.reset()
	return fmt.Errorf("person %s: stuck at %.2f with mode %q: %w", e.PersonID, e.Time, e.Mode, ErrStuck)
}

func (t *TripTracker) isInteraction(actType string) bool {
	marker := t.opts.InteractionMarker
	if marker == "" || t.opts.LegGranularity {
		return false
	}
	if t.opts.InteractionMatch == InteractionContains {
		return strings.Contains(actType, marker)
	}
	return strings.HasPrefix(actType, marker)
}

func (t *TripTracker) finalize(personID string, p *personTrip) *domain.TripScoreRecord {
	p.trips++
	legs := slices.Clone(p.legs)
	rec := &domain.TripScoreRecord{
		PersonID:  personID,
		TripIndex: p.trips,
		Mode:      domain.MainMode(legs),
		Start:     legs[0].Departure,
		End:       legs[len(legs)-1].Arrival,
		Legs:      legs,
		Money:     p.money,
		Time:      p.time,
	}
	p.reset()
	return rec
}

func (p *personTrip) reset() {
	p.state = stateIdle
	p.legs = nil
	p.money = 0
	p.time = 0
}

// Pending returns, sorted, the persons whose trip was still open.
func (t *TripTracker) Pending() []string {
	out := make([]string, 0)
	for id, p := range t.persons {
		if p.state != stateIdle {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Unclassified counts score contributions whose kind matched no component.
func (t *TripTracker) Unclassified() int { return t.unclassified }
