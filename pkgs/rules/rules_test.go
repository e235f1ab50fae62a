package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giako888/trainbridge/pkgs/fault"
)

func TestRuleValidation(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		ok   bool
	}{
		{"valid on rule", Rule{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 1}, true},
		{"valid blink rule", Rule{Field: "pzb.lm_1000hz", Condition: BlinkValue, Action: ActionBlink, BlinkPeriodMs: 500, Lamp: 7}, true},
		{"lamp zero", Rule{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 0}, false},
		{"lamp thirteen", Rule{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 13}, false},
		{"unknown field", Rule{Field: "bogus", Condition: IsTrue, Action: ActionOn, Lamp: 1}, false},
		{"unknown condition", Rule{Field: "sifa.licht", Condition: "sometimes", Action: ActionOn, Lamp: 1}, false},
		{"unknown action", Rule{Field: "sifa.licht", Condition: IsTrue, Action: "pulse", Lamp: 1}, false},
		{"inverted between", Rule{Field: "speed_kmh", Condition: Between, Lo: 100, Hi: 50, Action: ActionOn, Lamp: 1}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.rule.Validate()
			if c.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, fault.Is(err, fault.BadRule), "kind = %s", fault.KindOf(err))
			}
		})
	}
}

func TestSanitizeDropsOnlyBadRules(t *testing.T) {
	p := &Profile{
		ID: "test",
		Rules: []Rule{
			{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 1},
			{Field: "bogus", Condition: IsTrue, Action: ActionOn, Lamp: 2},
			{Field: "doors_left", Condition: IsTrue, Action: ActionOn, Lamp: 8},
		},
	}

	rejected := p.Sanitize()
	require.Len(t, rejected, 1)
	require.Len(t, p.Rules, 2)
	assert.Equal(t, "sifa.licht", p.Rules[0].Field)
	assert.Equal(t, "doors_left", p.Rules[1].Field)
}

func TestBuiltInProfilesAreValid(t *testing.T) {
	for _, p := range BuiltInProfiles() {
		t.Run(p.ID, func(t *testing.T) {
			assert.Empty(t, p.Sanitize(), "built-in profile must not carry invalid rules")
			assert.NotEmpty(t, p.Rules)
		})
	}
}

func TestFindProfile(t *testing.T) {
	profiles := BuiltInProfiles()

	p, err := FindProfile(profiles, "br442")
	require.NoError(t, err)
	assert.Equal(t, "br442", p.ID)

	_, err = FindProfile(profiles, "br999")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.BadProfile))
}

func TestFieldPaths(t *testing.T) {
	p := &Profile{Rules: []Rule{
		{Field: "sifa.licht", Condition: IsTrue, Action: ActionOn, Lamp: 1},
		{Field: "sifa.licht", Condition: IsTrue, Action: ActionBlink, Lamp: 1},
		{Field: "doors_left", Condition: IsTrue, Action: ActionOn, Lamp: 8},
	}}
	assert.Equal(t, []string{"sifa.licht", "doors_left"}, p.FieldPaths())
}

func TestLampDescriptors(t *testing.T) {
	assert.Len(t, Lamps(), NumLamps)

	d, ok := Descriptor(1)
	require.True(t, ok)
	assert.Equal(t, "SIFA", d.Name)

	_, ok = Descriptor(0)
	assert.False(t, ok)
	_, ok = Descriptor(13)
	assert.False(t, ok)
}
