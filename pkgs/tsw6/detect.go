package tsw6

import "strings"

// classPattern associates an ObjectClass substring with a profile ID.
// Patterns are checked in order; the first match wins.
type classPattern struct {
	substr    string
	profileID string
}

// The table is deliberately fuzzy: DTG class names carry variant suffixes
// ("BR_442_Talent2_Variant", "BR406_ICE3M_DB") that change between DLC
// releases, so only stable fragments are matched.
var classTable = []classPattern{
	{"br_442", "br442"},
	{"br442", "br442"},
	{"talent", "br442"},
	{"br_406", "br406"},
	{"br406", "br406"},
	{"ice3", "br406"},
	{"vectron", "vectron"},
	{"br_193", "vectron"},
	{"br193", "vectron"},
	{"br_101", "br101"},
	{"br101", "br101"},
	{"br_423", "br423"},
	{"br423", "br423"},
	{"br_146", "br146"},
	{"br146", "br146"},
	{"br_112", "br112"},
	{"br112", "br112"},
}

// DetectProfileID returns the profile ID recommended for the given
// ObjectClass string, or "" when no pattern matches. The supervisor surfaces
// this as a recommendation only and never switches profiles automatically.
func DetectProfileID(objectClass string) string {
	lower := strings.ToLower(objectClass)
	for _, p := range classTable {
		if strings.Contains(lower, p.substr) {
			return p.profileID
		}
	}
	return ""
}
