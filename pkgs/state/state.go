// Package state holds the unified train-state model both simulator sources
// converge on. Field names follow the Zusi3 vocabulary; the TSW6 poller maps
// its endpoint values onto the same fields.
package state

// LampValue is the four-state visual indicator carried by the Zusi3 protocol.
type LampValue uint8

const (
	LampOff         LampValue = 0
	LampOn          LampValue = 1
	LampBlink       LampValue = 2
	LampBlinkInvers LampValue = 3
)

// DoorSide is the per-side door state (Zusi3 TUEREN_SEITE).
type DoorSide uint8

const (
	DoorClosed  DoorSide = 0
	DoorOpening DoorSide = 1
	DoorOpen    DoorSide = 2
	DoorLocked  DoorSide = 3
	DoorClosing DoorSide = 4
)

// Reverser positions.
type Reverser int8

const (
	ReverserBackward Reverser = -1
	ReverserNeutral  Reverser = 0
	ReverserForward  Reverser = 1
)

// SifaState is the dead-man vigilance device substate.
type SifaState struct {
	Licht           bool // warning light lit
	HupeWarning     bool // acoustic warning stage
	HupeZwang       bool // forced-brake stage
	Hauptschalter   bool
	Stoerschalter   bool
	Luftabsperrhahn bool
	MinimumSpeedMet bool
}

// PzbState is the intermittent train-protection substate.
type PzbState struct {
	Aktiv    bool
	Zugart55 LampValue
	Zugart70 LampValue
	Zugart85 LampValue
	ZugartU  bool
	ZugartM  bool
	ZugartO  bool
	Lm1000Hz LampValue
	Lm500Hz  LampValue
	LmBefehl bool
	// Zwangsbremsung is set while a PZB emergency brake application is active.
	Zwangsbremsung bool
}

// LzbState is the continuous train-protection substate.
type LzbState struct {
	Aktiv bool
	Ende  bool

	VSoll float64 // target speed [km/h]
	VZiel float64 // aim speed [km/h]
	SZiel float64 // aim distance [m]

	LmG          LampValue
	LmEnde       LampValue
	LmUe         LampValue
	LmS          LampValue
	LmB          bool
	LmEL         bool
	LmV40        bool
	LmPruefStoer bool
}

// TrainState is the shared snapshot produced by the active simulator source.
// Fields a source cannot provide stay at their zero value; km position and
// GPS carry explicit has-flags because 0.0 is a valid reading there.
type TrainState struct {
	// Motion
	SpeedMS    float64 // [m/s]
	SpeedKMH   float64 // [km/h], derived
	DistanceM  float64 // travelled distance [m], monotonic
	MaxSpeed   float64 // current track limit [km/h]

	// Pressures [bar]
	PressureMain     float64
	PressureCylinder float64
	PressureTank     float64

	// Traction
	TractiveEffort float64 // [N]
	BrakeEffort    float64 // [N]
	ThrottleStep   int
	ReverserPos    Reverser

	// Electrical
	Current float64 // [A]
	Voltage float64 // [V]
	RPM     float64

	// Switches
	MainSwitch bool
	Pantograph bool
	AfbActive  bool
	AfbTarget  float64 // [km/h]

	// Substates
	Sifa SifaState
	Pzb  PzbState
	Lzb  LzbState

	// Doors
	DoorsLeft    DoorSide
	DoorsRight   DoorSide
	DoorsWarning bool

	// Misc cab equipment
	HeadlightsFront int
	HeadlightsRear  int
	CabinLight      bool
	Sand            bool
	Wiper           int
	EmergencyBrake  bool

	// Track data
	Gradient     float64 // [permille], signed
	SignalAspect int

	// Position
	Kilometrierung float64 // [km]
	HasKM          bool
	Longitude      float64
	Latitude       float64
	HasGPS         bool

	// Time of day
	Hour   int
	Minute int
	Second int
}

// Blank resets everything to the unknown sentinel values. Used by the
// supervisor when a source disconnects, so the panel falls dark instead of
// freezing on stale values.
func (s *TrainState) Blank() {
	*s = TrainState{}
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
