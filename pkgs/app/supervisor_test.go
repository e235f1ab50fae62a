package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giako888/trainbridge/pkgs/ebula"
	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/panel"
	"github.com/giako888/trainbridge/pkgs/rules"
	"github.com/giako888/trainbridge/pkgs/state"
)

func sifaBlinkProfile() *rules.Profile {
	return &rules.Profile{
		ID:     "test",
		Name:   "test",
		Source: "zusi3",
		Rules: []rules.Rule{
			{Field: "sifa.hupe_warning", Condition: rules.IsTrue, Action: rules.ActionBlink, BlinkPeriodMs: 500, Lamp: 1},
			{Field: "doors_left", Condition: rules.IsTrue, Action: rules.ActionOn, Lamp: 8},
		},
	}
}

func newTestSupervisor(profile *rules.Profile) (*Supervisor, *panel.Broadcaster) {
	b := panel.NewBroadcaster()
	sup := NewSupervisor(profile, b, nil, nil, ebula.NewRecorder(0))
	return sup, b
}

func TestStateUpdateDrivesLamps(t *testing.T) {
	sup, b := newTestSupervisor(sifaBlinkProfile())
	sup.engine.Clock = func() time.Time { return time.UnixMilli(0) } // lit blink phase

	var st state.TrainState
	st.Sifa.HupeWarning = true
	st.DoorsLeft = state.DoorOpen
	sup.OnStateUpdate(st)

	m := b.Snapshot()
	assert.True(t, m[0], "LED1 blinks in the lit phase")
	assert.True(t, m[7], "LED8 follows the left door")

	// the shared slot carries the update
	assert.Equal(t, state.DoorOpen, sup.State().DoorsLeft)
}

func TestBlinkTogglesOverTime(t *testing.T) {
	sup, b := newTestSupervisor(sifaBlinkProfile())

	now := time.UnixMilli(0)
	sup.engine.Clock = func() time.Time { return now }

	var st state.TrainState
	st.Sifa.HupeWarning = true
	sup.OnStateUpdate(st)
	require.True(t, b.Snapshot()[0])

	// half a period later the lamp is dark, re-evaluated by the ticker path
	now = time.UnixMilli(250)
	sup.evaluate()
	assert.False(t, b.Snapshot()[0])

	now = time.UnixMilli(500)
	sup.evaluate()
	assert.True(t, b.Snapshot()[0])
}

func TestSwapProfileResetsLampsAndCaches(t *testing.T) {
	sup, b := newTestSupervisor(sifaBlinkProfile())
	sup.engine.Clock = func() time.Time { return time.UnixMilli(0) }

	var st state.TrainState
	st.DoorsLeft = state.DoorOpen
	sup.OnStateUpdate(st)
	require.True(t, b.Snapshot()[7])

	swapped := false
	sup.onProfileSwap = func() { swapped = true }

	// the new profile maps the door to a different lamp
	next := &rules.Profile{
		ID:     "other",
		Source: "zusi3",
		Rules: []rules.Rule{
			{Field: "doors_left", Condition: rules.IsTrue, Action: rules.ActionOn, Lamp: 9},
		},
	}
	require.NoError(t, sup.SwapProfile(next))

	assert.True(t, swapped, "source caches must be reset on swap")
	assert.Same(t, next, sup.Profile())
	m := b.Snapshot()
	assert.False(t, m[7], "old mapping gone")
	assert.True(t, m[8], "new mapping applied against the retained state")

	assert.Error(t, sup.SwapProfile(nil), "the active profile may never become nil")
}

func TestBlankStateDarkensPanel(t *testing.T) {
	sup, b := newTestSupervisor(sifaBlinkProfile())
	sup.engine.Clock = func() time.Time { return time.UnixMilli(0) }

	var st state.TrainState
	st.Sifa.HupeWarning = true
	st.DoorsLeft = state.DoorOpen
	sup.OnStateUpdate(st)
	require.True(t, b.Snapshot()[7])

	sup.BlankState()
	assert.Equal(t, rules.LampMap{}, b.Snapshot())
	assert.Equal(t, state.TrainState{}, sup.State())
}

func TestErrorReporting(t *testing.T) {
	sup, _ := newTestSupervisor(sifaBlinkProfile())

	err := fault.New(fault.TransportClosed, "connection lost")
	sup.reportError(err)

	assert.Equal(t, err, sup.LastError())
	select {
	case got := <-sup.Errors():
		assert.Equal(t, err, got)
	default:
		t.Fatal("error channel should carry the report")
	}
}

func TestUpdatesAppliedInArrivalOrder(t *testing.T) {
	sup, _ := newTestSupervisor(sifaBlinkProfile())

	for i := 1; i <= 50; i++ {
		var st state.TrainState
		st.SpeedKMH = float64(i)
		sup.OnStateUpdate(st)
	}
	assert.Equal(t, 50.0, sup.State().SpeedKMH)
}
