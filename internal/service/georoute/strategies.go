package georoute

import (
	"strings"

	"ShipQuote/pkg/util"
)

// Strategy rewrites a raw address into a geocoding candidate. An empty
// result means the strategy does not apply to this address.
type Strategy struct {
	Name  string
	Apply func(address string) string
}

// DefaultStrategies is the fallback chain: the raw text first, then the text
// with street-level detail removed, then a bare known-city match.
func DefaultStrategies(knownCities []string) []Strategy {
	return []Strategy{
		{Name: "raw", Apply: util.NormalizeSpace},
		{Name: "strip_street", Apply: stripStreetDetail},
		{Name: "known_city", Apply: extractKnownCity(knownCities)},
	}
}

// stripStreetDetail drops comma-separated segments that carry house numbers
// or street markers, keeping the locality parts. "Calle 26 #13-19, Bogota"
// becomes "Bogota".
func stripStreetDetail(address string) string {
	segments := strings.Split(address, ",")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = util.NormalizeSpace(seg)
		if seg == "" || hasStreetDetail(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	out := strings.Join(kept, ", ")
	if util.NormalizeSpace(out) == util.NormalizeSpace(address) {
		// Nothing was stripped; no point geocoding the same text twice.
		return ""
	}
	return out
}

func hasStreetDetail(segment string) bool {
	if strings.ContainsAny(segment, "#0123456789") {
		return true
	}
	lower := strings.ToLower(segment)
	for _, marker := range []string{"calle", "carrera", "avenida", "av.", "cra", "cl ", "transversal", "diagonal"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extractKnownCity returns the first configured city found inside the
// address, in its canonical spelling.
func extractKnownCity(cities []string) func(string) string {
	return func(address string) string {
		lower := strings.ToLower(address)
		for _, city := range cities {
			if strings.Contains(lower, strings.ToLower(city)) {
				return city
			}
		}
		return ""
	}
}
