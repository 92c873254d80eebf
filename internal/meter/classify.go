// Package meter classifies station-reported measurand labels and reduces
// meter-value histories to their latest readings.
package meter

import "strings"

// Canonical measurand keys exposed to API clients. Stations report free-text
// labels; these five strings decouple clients from firmware variations.
const (
	KeyEnergyActiveImport = "energy.active.import.register"
	KeyTemperature        = "temperature"
	KeyCurrentImport      = "current.import"
	KeyPowerActiveImport  = "power.active.import"
	KeyVoltage            = "voltage"
)

type rule struct {
	key      string
	keywords []string
}

// Rule order is part of the external contract: a label satisfying several
// predicates maps to the first matching key.
var rules = []rule{
	{KeyEnergyActiveImport, []string{"energy", "active", "import"}},
	{KeyTemperature, []string{"temperature"}},
	{KeyCurrentImport, []string{"current", "import"}},
	{KeyPowerActiveImport, []string{"power", "active", "import"}},
	{KeyVoltage, []string{"voltage"}},
}

// Classify maps a free-text measurand label to a canonical key. Matching is
// case-insensitive substring containment. Unrecognized labels report ok=false.
func Classify(measurand string) (key string, ok bool) {
	label := strings.ToLower(measurand)
	for _, r := range rules {
		if containsAll(label, r.keywords) {
			return r.key, true
		}
	}
	return "", false
}

func containsAll(label string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(label, kw) {
			return false
		}
	}
	return true
}
