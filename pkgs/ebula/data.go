// Package ebula records live runs and converts them into an electronic
// timetable document (Buchfahrplan). A recording is an append-only sample
// sequence; the converter segments it into station, speed-change,
// gradient-change and kilometric waypoint entries.
package ebula

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/giako888/trainbridge/pkgs/fault"
)

// FileExtension of persisted timetable documents.
const FileExtension = ".ebula.json"

// EntryType classifies one timetable row.
type EntryType string

const (
	EntryStation  EntryType = "station"
	EntrySpeed    EntryType = "speed"
	EntryGradient EntryType = "gradient"
	EntryWaypoint EntryType = "waypoint"
)

// Entry is one timetable row. Km is the cumulative route distance.
type Entry struct {
	Type       EntryType `json:"type"`
	Km         float64   `json:"km"`
	HHMM       string    `json:"hh_mm"`
	Name       string    `json:"name,omitempty"`
	SpeedLimit float64   `json:"v_limit,omitempty"`
	Gradient   float64   `json:"gradient,omitempty"`
}

// RouteInfo is the document header.
type RouteInfo struct {
	Name         string  `json:"name"`
	DistanceKm   float64 `json:"distance_km"`
	StartStation string  `json:"start_station"`
	EndStation   string  `json:"end_station"`
}

// Timetable is the persisted document.
type Timetable struct {
	RouteInfo  RouteInfo `json:"route_info"`
	Entries    []Entry   `json:"entries"`
	RecordedAt string    `json:"recorded_at"`
}

// DefaultDir returns the timetable directory under the user config dir,
// creating it if needed.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fault.Wrap(fault.IOStorage, err, "cannot resolve user config directory")
	}
	dir := filepath.Join(base, "trainbridge", "ebula")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fault.Wrap(fault.IOStorage, err, "cannot create %q", dir)
	}
	return dir, nil
}

// Save writes the document to path as indented UTF-8 JSON.
func (t *Timetable) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fault.Wrap(fault.IOStorage, err, "cannot encode timetable")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(fault.IOStorage, err, "cannot write %q", path)
	}
	return nil
}

// Load reads a timetable document back.
func Load(path string) (*Timetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOStorage, err, "cannot read %q", path)
	}
	var t Timetable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fault.Wrap(fault.IOStorage, err, "cannot parse %q", path)
	}
	return &t, nil
}

func formatHHMM(t time.Time) string {
	return t.Format("15:04")
}

// SaveRecording persists a raw recording as JSON next to the timetables.
func SaveRecording(rec *Recording, path string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fault.Wrap(fault.IOStorage, err, "cannot encode recording")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(fault.IOStorage, err, "cannot write %q", path)
	}
	return nil
}

// LoadRecording reads a raw recording back for conversion.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOStorage, err, "cannot read %q", path)
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fault.Wrap(fault.IOStorage, err, "cannot parse %q", path)
	}
	return &rec, nil
}
