package zusi

import (
	"github.com/giako888/trainbridge/pkgs/state"
)

// lampValue converts the LMZUSTAND_MIT_INVERS byte to the lamp enum.
// Protocol values: 0=AUS, 1=AN, 2=BLINKEND, 3=BLINKEND_INVERS, 4=DUNKEL.
func lampValue(b uint8) state.LampValue {
	switch b {
	case 1:
		return state.LampOn
	case 2:
		return state.LampBlink
	case 3:
		return state.LampBlinkInvers
	default: // AUS and DUNKEL are both dark
		return state.LampOff
	}
}

// ApplyFtd applies one DATA_FTD node to the train state and reports whether
// anything was consumed. Unknown attribute and child IDs are skipped.
func ApplyFtd(node *Node, st *state.TrainState) bool {
	changed := false

	for _, attr := range node.Attributes {
		switch FsData(attr.ID) {
		case FsGeschwindigkeit:
			st.SpeedMS = attr.AsF32()
			st.SpeedKMH = st.SpeedMS * 3.6
		case FsDruckHauptluftleitung:
			st.PressureMain = attr.AsF32()
		case FsDruckBremszylinder:
			st.PressureCylinder = attr.AsF32()
		case FsDruckHauptluftbehaelter:
			st.PressureTank = attr.AsF32()
		case FsOberstrom:
			st.Current = attr.AsF32()
		case FsFahrleitungsspannung:
			st.Voltage = attr.AsF32()
		case FsMotordrehzahl:
			st.RPM = attr.AsF32()
		case FsUhrzeitStunde:
			st.Hour = int(attr.AsF32())
		case FsUhrzeitMinute:
			st.Minute = int(attr.AsF32())
		case FsUhrzeitSekunde:
			st.Second = int(attr.AsF32())
		case FsHauptschalter:
			st.MainSwitch = attr.AsF32() > 0
		case FsStromabnehmer:
			st.Pantograph = attr.AsF32() > 0
		case FsAfbEinAus:
			st.AfbActive = attr.AsF32() > 0
		case FsAfbSollGeschw:
			st.AfbTarget = attr.AsF32() * 3.6
		case FsStreckenMaxGeschw:
			st.MaxSpeed = attr.AsF32() * 3.6
		case FsFahrstufe:
			st.ThrottleStep = int(attr.AsF32())
		case FsKilometrierung:
			st.Kilometrierung = attr.AsF32()
			st.HasKM = true
		default:
			continue
		}
		changed = true
	}

	for _, child := range node.Children {
		switch FsData(child.ID) {
		case FsSifa:
			applySifa(child, st)
			changed = true
		case FsStatusZugbeeinflussung:
			applyZugbeeinflussung(child, st)
			changed = true
		case FsStatusTueren:
			applyTueren(child, st)
			changed = true
		}
	}

	return changed
}

func applySifa(node *Node, st *state.TrainState) {
	for _, attr := range node.Attributes {
		switch attr.ID {
		case sifaLicht:
			st.Sifa.Licht = attr.AsU8() > 0
		case sifaHupe:
			// 0=off, 1=warning, 2=forced brake
			hupe := attr.AsU8()
			st.Sifa.HupeWarning = hupe == 1
			st.Sifa.HupeZwang = hupe == 2
		case sifaHauptschalter:
			st.Sifa.Hauptschalter = attr.AsU8() > 1
		case sifaStoerschalter:
			st.Sifa.Stoerschalter = attr.AsU8() > 1
		case sifaLuftabsperrhahn:
			st.Sifa.Luftabsperrhahn = attr.AsU8() > 1
		}
	}
}

// applyZugbeeinflussung handles STATUS_ZUGBEEINFLUSSUNG. The interesting
// part sits in the Betriebsdaten child (id 3): PZB/LZB lamps and LZB
// target/aim data. Grundblock (1) and Einstellungen (2) are not consumed.
func applyZugbeeinflussung(node *Node, st *state.TrainState) {
	for _, child := range node.Children {
		if child.ID == zbBetriebsdaten {
			applyBetriebsdaten(child, st)
		}
	}
}

func applyBetriebsdaten(node *Node, st *state.TrainState) {
	for _, attr := range node.Attributes {
		switch attr.ID {
		// PZB lamps
		case bdLm1000Hz:
			st.Pzb.Lm1000Hz = lampValue(attr.AsU8())
		case bdLmO:
			st.Pzb.Zugart85 = lampValue(attr.AsU8())
		case bdLmM:
			st.Pzb.Zugart70 = lampValue(attr.AsU8())
		case bdLmU:
			st.Pzb.Zugart55 = lampValue(attr.AsU8())
		case bdLm500Hz:
			st.Pzb.Lm500Hz = lampValue(attr.AsU8())
		case bdLmBefehl:
			st.Pzb.LmBefehl = attr.AsU8() > 0

		// PZB operating state
		case bdIndusiZustand:
			st.Pzb.Aktiv = attr.AsU16() == indusiNormalbetrieb
		case bdZwangsbremsung:
			st.Pzb.Zwangsbremsung = attr.AsU16() > 0

		// LZB operating state
		case bdLzbZustand:
			st.Lzb.Aktiv = attr.AsU16() >= 1
		case bdLzbVSoll:
			st.Lzb.VSoll = attr.AsF32() * 3.6
		case bdLzbVZiel:
			st.Lzb.VZiel = attr.AsF32() * 3.6
		case bdLzbSZiel:
			st.Lzb.SZiel = attr.AsF32()

		// LZB lamps with blink support
		case bdLmG:
			st.Lzb.LmG = lampValue(attr.AsU8())
		case bdLmEnde:
			st.Lzb.LmEnde = lampValue(attr.AsU8())
		case bdLmUe:
			st.Lzb.LmUe = lampValue(attr.AsU8())
		case bdLmS:
			st.Lzb.LmS = lampValue(attr.AsU8())

		// LZB plain lamps
		case bdLmPruefStoer:
			st.Lzb.LmPruefStoer = attr.AsU8() > 0
		case bdLmB:
			st.Lzb.LmB = attr.AsU8() > 0
		case bdLmEL:
			st.Lzb.LmEL = attr.AsU8() > 0
		case bdLmV40:
			st.Lzb.LmV40 = attr.AsU8() > 0
		}
	}

	// LZB Ende arrives in its own sub-node
	for _, child := range node.Children {
		if child.ID == bdLzbEndeNode {
			if attr, ok := child.Attr(lzbEndeVerfahren); ok {
				st.Lzb.Ende = attr.AsU8() > 0
			}
		}
	}
}

func applyTueren(node *Node, st *state.TrainState) {
	for _, attr := range node.Attributes {
		switch attr.ID {
		case tuerenLinks:
			st.DoorsLeft = state.DoorSide(attr.AsU8())
		case tuerenRechts:
			st.DoorsRight = state.DoorSide(attr.AsU8())
		}
	}
}
