package meter

import (
	"time"

	"chargehub/internal/models"
)

// Snapshot holds the latest sample per canonical key and the newest timestamp
// across the retained samples.
type Snapshot struct {
	Timestamp time.Time
	Values    map[string]models.MeterValues
}

// Latest reduces a transaction's meter-value history to one sample per
// canonical key, keeping the sample with the greatest valueTimestamp.
// Equal timestamps keep the first sample seen, so the reduction is
// deterministic for a given input order. Samples with unrecognized measurands
// are dropped. ok=false means nothing was retained.
func Latest(values []models.MeterValues) (snap Snapshot, ok bool) {
	latestByKey := make(map[string]models.MeterValues)
	for _, mv := range values {
		key, recognized := Classify(mv.Measurand)
		if !recognized {
			continue
		}
		current, seen := latestByKey[key]
		if !seen || mv.ValueTimestamp.After(current.ValueTimestamp) {
			latestByKey[key] = mv
		}
	}

	if len(latestByKey) == 0 {
		return Snapshot{}, false
	}

	var latest time.Time
	for _, mv := range latestByKey {
		if mv.ValueTimestamp.After(latest) {
			latest = mv.ValueTimestamp
		}
	}

	return Snapshot{Timestamp: latest, Values: latestByKey}, true
}
