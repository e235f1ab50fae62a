// Package rules maps train-state fields to the twelve MFA panel lamps.
//
// A Profile is an ordered rule list; each rule reads one state field,
// checks a condition and requests a lamp action (on, off or blink). The
// engine folds all matching rules into one on/off decision per lamp, with
// blink resolved against an injectable clock so evaluations are
// reproducible in tests.
package rules

// NumLamps is the size of the MFA panel.
const NumLamps = 12

// LampID addresses one panel lamp, 1-based as in the serial protocol.
type LampID int

// LampDescriptor is the immutable description of one lamp position.
type LampDescriptor struct {
	ID      LampID
	Name    string
	Color   string
	Caption string
}

// The panel layout matches the Charlieplexing wiring of the Leonardo sketch.
var lampTable = [NumLamps]LampDescriptor{
	{1, "SIFA", "yellow", "Sifa"},
	{2, "LZB Ende", "yellow", "Ende"},
	{3, "PZB 70", "blue", "70"},
	{4, "PZB 85", "blue", "85"},
	{5, "PZB 55", "blue", "55"},
	{6, "500 Hz", "red", "500Hz"},
	{7, "1000 Hz", "yellow", "1000Hz"},
	{8, "Doors left", "yellow", "T-L"},
	{9, "Doors right", "yellow", "T-R"},
	{10, "LZB Ü", "blue", "Ü"},
	{11, "LZB G", "blue", "G"},
	{12, "LZB S", "red", "S"},
}

// Lamps returns the descriptors of all twelve lamps in panel order.
func Lamps() []LampDescriptor {
	return lampTable[:]
}

// Descriptor returns the descriptor for id; ok is false outside 1..12.
func Descriptor(id LampID) (LampDescriptor, bool) {
	if id < 1 || id > NumLamps {
		return LampDescriptor{}, false
	}
	return lampTable[id-1], true
}

// LampMap is the engine output: desired on/off per lamp, index 0 = LED1.
type LampMap [NumLamps]bool
