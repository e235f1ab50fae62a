package state

// Field resolves a dotted field path (as used in rule definitions, e.g.
// "sifa.hupe_warning" or "pzb.lm_1000hz") to a numeric value. Booleans map
// to 0/1, lamp values and door sides to their protocol numbers. The second
// return is false for unknown paths.
func (s *TrainState) Field(path string) (float64, bool) {
	switch path {
	case "speed_ms":
		return s.SpeedMS, true
	case "speed_kmh":
		return s.SpeedKMH, true
	case "distance_m":
		return s.DistanceM, true
	case "max_speed":
		return s.MaxSpeed, true
	case "pressure_main":
		return s.PressureMain, true
	case "pressure_cylinder":
		return s.PressureCylinder, true
	case "pressure_tank":
		return s.PressureTank, true
	case "tractive_effort":
		return s.TractiveEffort, true
	case "brake_effort":
		return s.BrakeEffort, true
	case "throttle_step":
		return float64(s.ThrottleStep), true
	case "reverser":
		return float64(s.ReverserPos), true
	case "current":
		return s.Current, true
	case "voltage":
		return s.Voltage, true
	case "rpm":
		return s.RPM, true
	case "main_switch":
		return boolVal(s.MainSwitch), true
	case "pantograph":
		return boolVal(s.Pantograph), true
	case "afb_active":
		return boolVal(s.AfbActive), true
	case "afb_target":
		return s.AfbTarget, true

	case "sifa.licht":
		return boolVal(s.Sifa.Licht), true
	case "sifa.hupe_warning":
		return boolVal(s.Sifa.HupeWarning), true
	case "sifa.hupe_zwang":
		return boolVal(s.Sifa.HupeZwang), true
	case "sifa.hauptschalter":
		return boolVal(s.Sifa.Hauptschalter), true
	case "sifa.stoerschalter":
		return boolVal(s.Sifa.Stoerschalter), true
	case "sifa.luftabsperrhahn":
		return boolVal(s.Sifa.Luftabsperrhahn), true
	case "sifa.minimum_speed_met":
		return boolVal(s.Sifa.MinimumSpeedMet), true

	case "pzb.aktiv":
		return boolVal(s.Pzb.Aktiv), true
	case "pzb.zugart_55":
		return float64(s.Pzb.Zugart55), true
	case "pzb.zugart_70":
		return float64(s.Pzb.Zugart70), true
	case "pzb.zugart_85":
		return float64(s.Pzb.Zugart85), true
	case "pzb.zugart_u":
		return boolVal(s.Pzb.ZugartU), true
	case "pzb.zugart_m":
		return boolVal(s.Pzb.ZugartM), true
	case "pzb.zugart_o":
		return boolVal(s.Pzb.ZugartO), true
	case "pzb.lm_1000hz":
		return float64(s.Pzb.Lm1000Hz), true
	case "pzb.lm_500hz":
		return float64(s.Pzb.Lm500Hz), true
	case "pzb.lm_befehl":
		return boolVal(s.Pzb.LmBefehl), true
	case "pzb.zwangsbremsung":
		return boolVal(s.Pzb.Zwangsbremsung), true

	case "lzb.aktiv":
		return boolVal(s.Lzb.Aktiv), true
	case "lzb.ende":
		return boolVal(s.Lzb.Ende), true
	case "lzb.v_soll":
		return s.Lzb.VSoll, true
	case "lzb.v_ziel":
		return s.Lzb.VZiel, true
	case "lzb.s_ziel":
		return s.Lzb.SZiel, true
	case "lzb.lm_g":
		return float64(s.Lzb.LmG), true
	case "lzb.lm_ende":
		return float64(s.Lzb.LmEnde), true
	case "lzb.lm_ue":
		return float64(s.Lzb.LmUe), true
	case "lzb.lm_s":
		return float64(s.Lzb.LmS), true
	case "lzb.lm_b":
		return boolVal(s.Lzb.LmB), true
	case "lzb.lm_el":
		return boolVal(s.Lzb.LmEL), true
	case "lzb.lm_v40":
		return boolVal(s.Lzb.LmV40), true
	case "lzb.lm_pruef_stoer":
		return boolVal(s.Lzb.LmPruefStoer), true

	case "doors_left":
		return float64(s.DoorsLeft), true
	case "doors_right":
		return float64(s.DoorsRight), true
	case "doors_warning":
		return boolVal(s.DoorsWarning), true

	case "headlights_front":
		return float64(s.HeadlightsFront), true
	case "headlights_rear":
		return float64(s.HeadlightsRear), true
	case "cabin_light":
		return boolVal(s.CabinLight), true
	case "sand":
		return boolVal(s.Sand), true
	case "wiper":
		return float64(s.Wiper), true
	case "emergency_brake":
		return boolVal(s.EmergencyBrake), true

	case "gradient":
		return s.Gradient, true
	case "signal_aspect":
		return float64(s.SignalAspect), true
	case "kilometrierung":
		return s.Kilometrierung, true
	case "hour":
		return float64(s.Hour), true
	case "minute":
		return float64(s.Minute), true
	case "second":
		return float64(s.Second), true
	}
	return 0, false
}

// KnownField reports whether path names a resolvable field. Used at profile
// load time to reject rules that reference a field that does not exist.
func KnownField(path string) bool {
	var s TrainState
	_, ok := s.Field(path)
	return ok
}
