package zusi

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/giako888/trainbridge/pkgs/state"
)

func f32Payload(v float32) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, math.Float32bits(v))
	return p
}

func u16Payload(v uint16) []byte {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, v)
	return p
}

func TestApplyFtdScalars(t *testing.T) {
	node := &Node{
		ID: CmdDataFtd,
		Attributes: []Attribute{
			{ID: uint16(FsGeschwindigkeit), Payload: f32Payload(27.5)},
			{ID: uint16(FsDruckHauptluftleitung), Payload: f32Payload(4.8)},
			{ID: uint16(FsHauptschalter), Payload: f32Payload(1)},
			{ID: uint16(FsKilometrierung), Payload: f32Payload(12.3)},
			{ID: uint16(FsUhrzeitStunde), Payload: f32Payload(14)},
		},
	}

	var st state.TrainState
	if !ApplyFtd(node, &st) {
		t.Fatal("ApplyFtd reported no change")
	}

	if st.SpeedMS != 27.5 {
		t.Errorf("speed_ms = %g, want 27.5", st.SpeedMS)
	}
	if got, want := st.SpeedKMH, 27.5*3.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("speed_kmh = %g, want %g", got, want)
	}
	if st.PressureMain != float64(float32(4.8)) {
		t.Errorf("pressure_main = %g, want 4.8", st.PressureMain)
	}
	if !st.MainSwitch {
		t.Error("main_switch should be on")
	}
	if !st.HasKM || st.Kilometrierung != float64(float32(12.3)) {
		t.Errorf("kilometrierung = %g (has=%v), want 12.3 (true)", st.Kilometrierung, st.HasKM)
	}
	if st.Hour != 14 {
		t.Errorf("hour = %d, want 14", st.Hour)
	}
}

func TestApplyFtdSifaWarning(t *testing.T) {
	node := &Node{
		ID: CmdDataFtd,
		Children: []*Node{{
			ID: uint16(FsSifa),
			Attributes: []Attribute{
				{ID: 2, Payload: []byte{1}}, // Licht
				{ID: 3, Payload: []byte{1}}, // Hupe = warning
			},
		}},
	}

	var st state.TrainState
	ApplyFtd(node, &st)

	if !st.Sifa.Licht {
		t.Error("sifa light should be on")
	}
	if !st.Sifa.HupeWarning || st.Sifa.HupeZwang {
		t.Errorf("hupe = (warning=%v, zwang=%v), want (true, false)", st.Sifa.HupeWarning, st.Sifa.HupeZwang)
	}

	// escalation to forced brake
	node.Children[0].Attributes[1].Payload = []byte{2}
	ApplyFtd(node, &st)
	if st.Sifa.HupeWarning || !st.Sifa.HupeZwang {
		t.Errorf("hupe = (warning=%v, zwang=%v), want (false, true)", st.Sifa.HupeWarning, st.Sifa.HupeZwang)
	}
}

func TestApplyFtdBetriebsdaten(t *testing.T) {
	bd := &Node{
		ID: zbBetriebsdaten,
		Attributes: []Attribute{
			{ID: bdLm1000Hz, Payload: []byte{2}},             // blinking
			{ID: bdLmO, Payload: []byte{1}},                  // Zugart 85 on
			{ID: bdLm500Hz, Payload: []byte{4}},              // DUNKEL -> off
			{ID: bdIndusiZustand, Payload: u16Payload(5)},    // Normalbetrieb
			{ID: bdZwangsbremsung, Payload: u16Payload(0)},
			{ID: bdLzbZustand, Payload: u16Payload(2)},       // geführt
			{ID: bdLzbVSoll, Payload: f32Payload(50)},        // m/s
			{ID: bdLzbSZiel, Payload: f32Payload(2500)},      // m
			{ID: bdLmG, Payload: []byte{3}},                  // blink inverse
		},
		Children: []*Node{{
			ID:         bdLzbEndeNode,
			Attributes: []Attribute{{ID: lzbEndeVerfahren, Payload: []byte{1}}},
		}},
	}
	node := &Node{
		ID: CmdDataFtd,
		Children: []*Node{{
			ID:       uint16(FsStatusZugbeeinflussung),
			Children: []*Node{bd},
		}},
	}

	var st state.TrainState
	ApplyFtd(node, &st)

	if st.Pzb.Lm1000Hz != state.LampBlink {
		t.Errorf("lm_1000hz = %d, want blink", st.Pzb.Lm1000Hz)
	}
	if st.Pzb.Zugart85 != state.LampOn {
		t.Errorf("zugart_85 = %d, want on", st.Pzb.Zugart85)
	}
	if st.Pzb.Lm500Hz != state.LampOff {
		t.Errorf("lm_500hz = %d, want off (DUNKEL)", st.Pzb.Lm500Hz)
	}
	if !st.Pzb.Aktiv {
		t.Error("pzb should be active in Normalbetrieb")
	}
	if !st.Lzb.Aktiv {
		t.Error("lzb should be active")
	}
	if got, want := st.Lzb.VSoll, 50*3.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("v_soll = %g, want %g", got, want)
	}
	if st.Lzb.SZiel != 2500 {
		t.Errorf("s_ziel = %g, want 2500", st.Lzb.SZiel)
	}
	if st.Lzb.LmG != state.LampBlinkInvers {
		t.Errorf("lm_g = %d, want blink-inverse", st.Lzb.LmG)
	}
	if !st.Lzb.Ende {
		t.Error("lzb ende should be set from the nested child")
	}
}

func TestApplyFtdDoors(t *testing.T) {
	node := &Node{
		ID: CmdDataFtd,
		Children: []*Node{{
			ID: uint16(FsStatusTueren),
			Attributes: []Attribute{
				{ID: tuerenLinks, Payload: []byte{2}},
				{ID: tuerenRechts, Payload: []byte{0}},
			},
		}},
	}

	var st state.TrainState
	ApplyFtd(node, &st)

	if st.DoorsLeft != state.DoorOpen {
		t.Errorf("doors_left = %d, want open", st.DoorsLeft)
	}
	if st.DoorsRight != state.DoorClosed {
		t.Errorf("doors_right = %d, want closed", st.DoorsRight)
	}
	if v, _ := st.Field("doors_left"); v == 0 {
		t.Error("doors_left field should be truthy for the rule engine")
	}
}
