package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"vtts-analysis/internal/domain"
)

type ActivitySeed struct {
	Type            string  `json:"type"`
	TypicalDuration float64 `json:"typical_duration_s"`
	OpeningTime     float64 `json:"opening_time_s"`
	ClosingTime     float64 `json:"closing_time_s"`
}

// ReferenceSeed mirrors the reference JSON file.
type ReferenceSeed struct {
	Activities      []ActivitySeed `json:"activities"`
	TimeComponents  []string       `json:"time_components"`
	MoneyComponents []string       `json:"money_components"`
}

// LoadJSON reads scoring reference data from a JSON file.
// An empty path yields the default reference.
func LoadJSON(path string) (*domain.Reference, error) {
	if strings.TrimSpace(path) == "" {
		return domain.NewReference(nil, nil, nil), nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load reference: read %q: %w", path, err)
	}

	var seed ReferenceSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("load reference: parse json: %w", err)
	}

	return FromSeed(seed)
}

// FromSeed validates seed data and builds a Reference.
func FromSeed(seed ReferenceSeed) (*domain.Reference, error) {
	activities := make([]domain.ActivityParams, 0, len(seed.Activities))
	seen := make(map[string]struct{}, len(seed.Activities))
	for i, a := range seed.Activities {
		typ := strings.TrimSpace(a.Type)
		if typ == "" {
			return nil, fmt.Errorf("load reference: activity at index %d: type cannot be empty", i+1)
		}
		if _, ok := seen[typ]; ok {
			return nil, fmt.Errorf("load reference: activity %q listed twice", typ)
		}
		seen[typ] = struct{}{}

		if a.TypicalDuration < 0 {
			return nil, fmt.Errorf("load reference: activity %q: negative typical duration %g", typ, a.TypicalDuration)
		}
		if a.OpeningTime > 0 && a.ClosingTime > 0 && a.ClosingTime < a.OpeningTime {
			return nil, fmt.Errorf("load reference: activity %q: closes (%g) before it opens (%g)", typ, a.ClosingTime, a.OpeningTime)
		}

		activities = append(activities, domain.ActivityParams{
			Type:            typ,
			TypicalDuration: a.TypicalDuration,
			OpeningTime:     a.OpeningTime,
			ClosingTime:     a.ClosingTime,
		})
	}

	return domain.NewReference(activities, seed.TimeComponents, seed.MoneyComponents), nil
}
