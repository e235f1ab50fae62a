package rules

import (
	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/state"
)

// Condition is the closed set of comparisons a rule may use. The names are
// the serialized form used in profile files.
type Condition string

const (
	IsTrue      Condition = "is_true"
	IsFalse     Condition = "is_false"
	Equals      Condition = "equals"
	NotEquals   Condition = "not_equals"
	GreaterThan Condition = "greater_than"
	LessThan    Condition = "less_than"
	Between     Condition = "between"
	BlinkValue  Condition = "blink_value"
)

// Action is what a matching rule requests for its lamp.
type Action string

const (
	ActionOn    Action = "on"
	ActionOff   Action = "off"
	ActionBlink Action = "blink"
)

// DefaultBlinkPeriodMs is used when a blink rule does not set a period.
const DefaultBlinkPeriodMs = 500

// Rule binds one state field to one lamp.
type Rule struct {
	Field         string    `json:"field"`
	Condition     Condition `json:"condition"`
	Value         float64   `json:"value,omitempty"`
	Lo            float64   `json:"lo,omitempty"`
	Hi            float64   `json:"hi,omitempty"`
	Action        Action    `json:"action"`
	BlinkPeriodMs int       `json:"blink_period_ms,omitempty"`
	Lamp          LampID    `json:"lamp"`
}

// Matches evaluates the rule's condition against the state.
func (r *Rule) Matches(st *state.TrainState) bool {
	v, ok := st.Field(r.Field)
	if !ok {
		return false
	}
	switch r.Condition {
	case IsTrue:
		return v != 0
	case IsFalse:
		return v == 0
	case Equals:
		return v == r.Value
	case NotEquals:
		return v != r.Value
	case GreaterThan:
		return v > r.Value
	case LessThan:
		return v < r.Value
	case Between:
		return r.Lo <= v && v <= r.Hi
	case BlinkValue:
		lamp := state.LampValue(v)
		return lamp == state.LampBlink || lamp == state.LampBlinkInvers
	}
	return false
}

// Validate checks the closed sets and field existence.
func (r *Rule) Validate() error {
	if r.Lamp < 1 || r.Lamp > NumLamps {
		return fault.New(fault.BadRule, "lamp %d out of range 1..%d", r.Lamp, NumLamps)
	}
	if !state.KnownField(r.Field) {
		return fault.New(fault.BadRule, "unknown field %q", r.Field)
	}
	switch r.Condition {
	case IsTrue, IsFalse, Equals, NotEquals, GreaterThan, LessThan, Between, BlinkValue:
	default:
		return fault.New(fault.BadRule, "unknown condition %q", r.Condition)
	}
	switch r.Action {
	case ActionOn, ActionOff:
	case ActionBlink:
		if r.BlinkPeriodMs < 0 {
			return fault.New(fault.BadRule, "negative blink period %d", r.BlinkPeriodMs)
		}
	default:
		return fault.New(fault.BadRule, "unknown action %q", r.Action)
	}
	if r.Condition == Between && r.Lo > r.Hi {
		return fault.New(fault.BadRule, "between bounds inverted (%g > %g)", r.Lo, r.Hi)
	}
	return nil
}

// Profile is an ordered rule set plus its display metadata. Exactly one
// profile is active at a time; the supervisor swaps them atomically between
// polling cycles.
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Source         string `json:"source"` // "zusi3" or "tsw6"
	PollIntervalMs int    `json:"poll_interval_ms,omitempty"`
	Rules          []Rule `json:"rules"`
}

// Sanitize validates every rule, drops the bad ones and returns the
// rejection errors. A profile with no valid rules at all is an error of its
// own.
func (p *Profile) Sanitize() []error {
	var rejected []error
	valid := p.Rules[:0]
	for _, r := range p.Rules {
		if err := r.Validate(); err != nil {
			logrus.Warnf("profile %s: rejected rule for lamp %d: %s", p.ID, r.Lamp, err)
			rejected = append(rejected, err)
			continue
		}
		valid = append(valid, r)
	}
	p.Rules = valid
	return rejected
}

// FieldPaths returns the distinct state fields the profile's rules read.
// The TSW6 poller does not use it; its watch set is the fixed well-known
// endpoint table.
func (p *Profile) FieldPaths() []string {
	seen := make(map[string]bool, len(p.Rules))
	var paths []string
	for _, r := range p.Rules {
		if !seen[r.Field] {
			seen[r.Field] = true
			paths = append(paths, r.Field)
		}
	}
	return paths
}
