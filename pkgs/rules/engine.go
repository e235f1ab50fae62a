package rules

import (
	"time"

	"github.com/giako888/trainbridge/pkgs/state"
)

// Engine evaluates a profile against a train state. It is stateless apart
// from the clock reference; two evaluations with identical state, profile
// and clock value produce identical lamp maps.
type Engine struct {
	// Clock is the monotonic time source for blink phase. Defaults to
	// time.Now; tests inject a fixed clock.
	Clock func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Clock: time.Now}
}

// lampMode is the per-lamp fold result before blink resolution.
type lampMode struct {
	on       bool
	blink    bool
	periodMs int
	inverse  bool
}

// Evaluate folds all profile rules into the desired lamp map.
//
// Combination policy per lamp, in profile order: on and blink override off;
// a later blink overrides an earlier on; a later on does not override an
// earlier blink.
func (e *Engine) Evaluate(st *state.TrainState, profile *Profile) LampMap {
	now := e.Clock()
	var modes [NumLamps]lampMode

	for i := range profile.Rules {
		r := &profile.Rules[i]
		if !r.Matches(st) {
			continue
		}
		m := &modes[r.Lamp-1]
		switch r.Action {
		case ActionOn:
			if !m.blink {
				m.on = true
			}
		case ActionBlink:
			m.blink = true
			m.periodMs = r.BlinkPeriodMs
			if m.periodMs <= 0 {
				m.periodMs = DefaultBlinkPeriodMs
			}
			m.inverse = r.blinkInverse(st)
		case ActionOff:
			// off never wins over an already-granted on or blink
		}
	}

	var out LampMap
	for i, m := range modes {
		switch {
		case m.blink:
			out[i] = blinkPhase(now, m.periodMs) != m.inverse
		case m.on:
			out[i] = true
		}
	}
	return out
}

// blinkInverse reports whether the source lamp value asks for the inverted
// blink phase. Only meaningful for blink_value rules, where the field itself
// carries the protocol's blink/blink-inverse distinction.
func (r *Rule) blinkInverse(st *state.TrainState) bool {
	if r.Condition != BlinkValue {
		return false
	}
	v, ok := st.Field(r.Field)
	return ok && state.LampValue(v) == state.LampBlinkInvers
}

// blinkPhase is true during the lit half of the cycle: ⌊t·2/P⌋ mod 2 == 0.
func blinkPhase(now time.Time, periodMs int) bool {
	t := now.UnixMilli()
	return (t*2/int64(periodMs))%2 == 0
}

// BlinkInterval returns how often the engine must re-evaluate to keep the
// currently blinking lamps moving: half the shortest active blink period, or
// 0 when nothing blinks. This is the engine's only time-driven behavior.
func (e *Engine) BlinkInterval(st *state.TrainState, profile *Profile) time.Duration {
	shortest := 0
	for i := range profile.Rules {
		r := &profile.Rules[i]
		if r.Action != ActionBlink || !r.Matches(st) {
			continue
		}
		p := r.BlinkPeriodMs
		if p <= 0 {
			p = DefaultBlinkPeriodMs
		}
		if shortest == 0 || p < shortest {
			shortest = p
		}
	}
	if shortest == 0 {
		return 0
	}
	interval := time.Duration(shortest) * time.Millisecond / 2
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return interval
}
