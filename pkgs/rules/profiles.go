package rules

import "github.com/giako888/trainbridge/pkgs/fault"

// defaultRules is the standard MFA wiring: each lamp follows its
// protection-system indicator, with a blink override where the protocol can
// request blinking. Door lamps light for any non-closed door state.
func defaultRules() []Rule {
	return []Rule{
		// SIFA: steady light, blinking on acoustic warning
		{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 1},
		{Field: "sifa.hupe_warning", Condition: IsTrue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 1},

		// LZB Ende
		{Field: "lzb.lm_ende", Condition: IsTrue, Action: ActionOn, Lamp: 2},
		{Field: "lzb.lm_ende", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 2},

		// PZB Zugart lamps
		{Field: "pzb.zugart_70", Condition: IsTrue, Action: ActionOn, Lamp: 3},
		{Field: "pzb.zugart_70", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 3},
		{Field: "pzb.zugart_85", Condition: IsTrue, Action: ActionOn, Lamp: 4},
		{Field: "pzb.zugart_85", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 4},
		{Field: "pzb.zugart_55", Condition: IsTrue, Action: ActionOn, Lamp: 5},
		{Field: "pzb.zugart_55", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 5},

		// PZB magnets
		{Field: "pzb.lm_500hz", Condition: IsTrue, Action: ActionOn, Lamp: 6},
		{Field: "pzb.lm_500hz", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 6},
		{Field: "pzb.lm_1000hz", Condition: IsTrue, Action: ActionOn, Lamp: 7},
		{Field: "pzb.lm_1000hz", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 7},

		// Doors
		{Field: "doors_left", Condition: IsTrue, Action: ActionOn, Lamp: 8},
		{Field: "doors_right", Condition: IsTrue, Action: ActionOn, Lamp: 9},

		// LZB lamps
		{Field: "lzb.lm_ue", Condition: IsTrue, Action: ActionOn, Lamp: 10},
		{Field: "lzb.lm_ue", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 10},
		{Field: "lzb.lm_g", Condition: IsTrue, Action: ActionOn, Lamp: 11},
		{Field: "lzb.lm_g", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 11},
		{Field: "lzb.lm_s", Condition: IsTrue, Action: ActionOn, Lamp: 12},
		{Field: "lzb.lm_s", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 12},
	}
}

// BuiltInProfiles returns the profiles shipped with the bridge. These are
// the only profiles the bridge resolves at startup; no user profiles are
// loaded.
func BuiltInProfiles() []*Profile {
	return []*Profile{
		{ID: "zusi3-default", Name: "Zusi3 standard MFA", Source: "zusi3", Rules: defaultRules()},
		{ID: "tsw6-default", Name: "TSW6 standard MFA", Source: "tsw6", Rules: defaultRules()},
		{ID: "br442", Name: "BR 442 Talent 2", Source: "tsw6", Rules: defaultRules()},
		{ID: "br406", Name: "BR 406 ICE 3M", Source: "tsw6", Rules: defaultRules()},
		{ID: "vectron", Name: "BR 193 Vectron", Source: "tsw6", Rules: defaultRules()},
		{ID: "br101", Name: "BR 101", Source: "tsw6", Rules: defaultRules()},
	}
}

// FindProfile looks a profile up by ID in the given set.
func FindProfile(profiles []*Profile, id string) (*Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fault.New(fault.BadProfile, "no profile with id %q", id)
}
