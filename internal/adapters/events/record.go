package events

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"vtts-analysis/internal/domain"
)

// Attribute set shared by the XML and JSON event encodings.
type eventRecord struct {
	Time    float64 `json:"time"`
	Type    string  `json:"type"`
	Person  string  `json:"person"`
	LegMode string  `json:"legMode,omitempty"`
	ActType string  `json:"actType,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Purpose string  `json:"purpose,omitempty"`
}

// toEvent converts a record into a domain event. Types the analysis does not
// use yield (nil, nil).
func (r eventRecord) toEvent() (domain.Event, error) {
	person := strings.TrimSpace(r.Person)

	switch r.Type {
	case domain.TypeActivityStart, domain.TypeActivityEnd, domain.TypeDeparture,
		domain.TypeArrival, domain.TypePersonScore, domain.TypePersonMoney, domain.TypePersonStuck:
		if person == "" {
			return nil, fmt.Errorf("event %q at %.2f: missing person", r.Type, r.Time)
		}
	default:
		return nil, nil
	}

	switch r.Type {
	case domain.TypeActivityStart:
		return domain.ActivityStart{Time: r.Time, PersonID: person, ActType: r.ActType}, nil
	case domain.TypeActivityEnd:
		return domain.ActivityEnd{Time: r.Time, PersonID: person, ActType: r.ActType}, nil
	case domain.TypeDeparture:
		return domain.Departure{Time: r.Time, PersonID: person, Mode: r.LegMode}, nil
	case domain.TypeArrival:
		return domain.Arrival{Time: r.Time, PersonID: person, Mode: r.LegMode}, nil
	case domain.TypePersonScore:
		return domain.PersonScore{Time: r.Time, PersonID: person, Amount: r.Amount, Kind: r.Kind}, nil
	case domain.TypePersonMoney:
		return domain.PersonMoney{Time: r.Time, PersonID: person, Amount: r.Amount, Purpose: r.Purpose}, nil
	default:
		return domain.PersonStuck{Time: r.Time, PersonID: person, Mode: r.LegMode}, nil
	}
}

// parseFloatAttr parses a numeric attribute; an empty value is zero. NaN and
// infinities are rejected.
func parseFloatAttr(name, v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s=%q: %w", name, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("attribute %s=%q: not a finite number", name, v)
	}
	return f, nil
}
