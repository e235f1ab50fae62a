package tsw6

import "github.com/giako888/trainbridge/pkgs/state"

// Well-known endpoints of the German-train DLCs. The MFA indicator and
// protection-system blueprints sit under the lead vehicle of the current
// formation.
const (
	EpObjectClass = "CurrentFormation/0.ObjectClass"
	EpSpeed       = "CurrentDrivableActor.Function.HUD_GetSpeed"

	EpSifaActive       = "CurrentFormation/0/BP_Sifa_Service.Property.bActiveState"
	EpSifaWarning      = "CurrentFormation/0/BP_Sifa_Service.Property.WarningStateVisual"
	EpSifaPenaltyBrake = "CurrentFormation/0/BP_Sifa_Service.Property.inPenaltyBrakeApplication"
	EpSifaMinSpeedMet  = "CurrentFormation/0/BP_Sifa_Service.Property.MinimumSpeedMet"

	EpPzbActive    = "CurrentFormation/0/PZB_Service_V3.Property.bIsPZB_Active"
	EpPzbEmergency = "CurrentFormation/0/PZB_Service_V3.Property._InEmergency"
	EpLzbEnabled   = "CurrentFormation/0/LZB_Service.Property.bIsEnabled"

	EpMfa1000Hz = "CurrentFormation/0/MFA_Indicators.Property.1000Hz_IsActive_PZB"
	EpMfa500Hz  = "CurrentFormation/0/MFA_Indicators.Property.500Hz_IsActive_PZB"
	EpMfa55     = "CurrentFormation/0/MFA_Indicators.Property.55_IsActive_PZB"
	EpMfa70     = "CurrentFormation/0/MFA_Indicators.Property.70_IsActive_PZB"
	EpMfa85     = "CurrentFormation/0/MFA_Indicators.Property.85_IsActive_PZB"
	EpMfaBefehl = "CurrentFormation/0/MFA_Indicators.Property.Befehl_IsActive_PZB"

	EpDoorLeftIndicator  = "CurrentFormation/0.Property.bDoorLeftIndicator"
	EpDoorRightIndicator = "CurrentFormation/0.Property.bDoorRightIndicator"
	EpDoorsLocked        = "CurrentFormation/0.Property.bPassengerDoorsLocked"

	EpGradient     = "CurrentDrivableActor.Function.HUD_GetGradient"
	EpSpeedLimit   = "CurrentDrivableActor.Function.HUD_GetCurrentSpeedLimit"
	EpNextSignal   = "CurrentDrivableActor.Function.HUD_GetNextSignal"
	EpLatitude     = "CurrentDrivableActor.Function.HUD_GetLatitude"
	EpLongitude    = "CurrentDrivableActor.Function.HUD_GetLongitude"
	EpTimeHours    = "TimeOfDay.Data.Hours"
	EpTimeMinutes  = "TimeOfDay.Data.Minutes"
	EpTimeSeconds  = "TimeOfDay.Data.Seconds"
)

// Mapping binds one endpoint path to a train-state field setter.
type Mapping struct {
	Path  string
	Apply func(st *state.TrainState, v float64)
}

// WellKnownMappings is the fixed endpoint set the TSW6 poller reads for every
// profile. No endpoint paths are derived from profile rules.
func WellKnownMappings() []Mapping {
	return []Mapping{
		{EpSpeed, func(st *state.TrainState, v float64) {
			st.SpeedMS = v
			st.SpeedKMH = v * 3.6
		}},
		{EpSifaActive, func(st *state.TrainState, v float64) { st.Sifa.Hauptschalter = v > 0 }},
		{EpSifaWarning, func(st *state.TrainState, v float64) {
			st.Sifa.Licht = v >= 1
			st.Sifa.HupeWarning = v >= 2
		}},
		{EpSifaPenaltyBrake, func(st *state.TrainState, v float64) { st.Sifa.HupeZwang = v > 0 }},
		{EpSifaMinSpeedMet, func(st *state.TrainState, v float64) { st.Sifa.MinimumSpeedMet = v > 0 }},

		{EpPzbActive, func(st *state.TrainState, v float64) { st.Pzb.Aktiv = v > 0 }},
		{EpPzbEmergency, func(st *state.TrainState, v float64) { st.Pzb.Zwangsbremsung = v > 0 }},
		{EpLzbEnabled, func(st *state.TrainState, v float64) { st.Lzb.Aktiv = v > 0 }},

		{EpMfa1000Hz, func(st *state.TrainState, v float64) { st.Pzb.Lm1000Hz = onOff(v) }},
		{EpMfa500Hz, func(st *state.TrainState, v float64) { st.Pzb.Lm500Hz = onOff(v) }},
		{EpMfa55, func(st *state.TrainState, v float64) { st.Pzb.Zugart55 = onOff(v) }},
		{EpMfa70, func(st *state.TrainState, v float64) { st.Pzb.Zugart70 = onOff(v) }},
		{EpMfa85, func(st *state.TrainState, v float64) { st.Pzb.Zugart85 = onOff(v) }},
		{EpMfaBefehl, func(st *state.TrainState, v float64) { st.Pzb.LmBefehl = v > 0 }},

		{EpDoorLeftIndicator, func(st *state.TrainState, v float64) { st.DoorsLeft = doorSide(v) }},
		{EpDoorRightIndicator, func(st *state.TrainState, v float64) { st.DoorsRight = doorSide(v) }},

		{EpGradient, func(st *state.TrainState, v float64) { st.Gradient = v }},
		{EpSpeedLimit, func(st *state.TrainState, v float64) { st.MaxSpeed = v * 3.6 }},
		{EpNextSignal, func(st *state.TrainState, v float64) { st.SignalAspect = int(v) }},
		{EpLatitude, func(st *state.TrainState, v float64) {
			st.Latitude = v
			st.HasGPS = true
		}},
		{EpLongitude, func(st *state.TrainState, v float64) {
			st.Longitude = v
			st.HasGPS = true
		}},
		{EpTimeHours, func(st *state.TrainState, v float64) { st.Hour = int(v) }},
		{EpTimeMinutes, func(st *state.TrainState, v float64) { st.Minute = int(v) }},
		{EpTimeSeconds, func(st *state.TrainState, v float64) { st.Second = int(v) }},
	}
}

func onOff(v float64) state.LampValue {
	if v > 0 {
		return state.LampOn
	}
	return state.LampOff
}

// doorSide maps the boolean door indicator to the door enum; TSW6 does not
// report the opening/closing transitions, only open vs closed.
func doorSide(v float64) state.DoorSide {
	if v > 0 {
		return state.DoorOpen
	}
	return state.DoorClosed
}
