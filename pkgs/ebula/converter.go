package ebula

import (
	"fmt"
	"time"
)

const (
	// stationSpeedKMH: the train counts as stationary at or below this.
	stationSpeedKMH = 1.0
	// stationMinStop: minimum continuous stop with open doors.
	stationMinStop = 15 * time.Second
	// speedChangeKMH: minimum limit change worth an entry.
	speedChangeKMH = 5.0
	// gradientChangePermille: minimum gradient change worth an entry.
	gradientChangePermille = 2.0
	// waypointEveryM: kilometric waypoint cadence.
	waypointEveryM = 1000.0
)

// Convert segments a recording into a timetable document. Station names are
// "Station N" placeholders for external editing.
func Convert(rec *Recording, routeName string) *Timetable {
	t := &Timetable{
		RouteInfo: RouteInfo{
			Name:       routeName,
			DistanceKm: rec.TotalDistanceM() / 1000,
		},
		RecordedAt: rec.StartedAt.Format(time.RFC3339),
	}

	stationCount := 0
	lastLimit := 0.0
	lastGradient := 0.0
	nextWaypointM := waypointEveryM

	// station run tracking
	var stopStart *Sample
	stationEmitted := false

	if len(rec.Samples) > 0 {
		lastLimit = rec.Samples[0].SpeedLimit
		lastGradient = rec.Samples[0].Gradient
	}

	for i := range rec.Samples {
		s := &rec.Samples[i]

		// ---- station detection --------------------------------------
		stationary := s.SpeedKMH <= stationSpeedKMH && s.DoorsOpen
		if stationary {
			if stopStart == nil {
				stopStart = s
				stationEmitted = false
			}
			if !stationEmitted && stopDuration(stopStart, s) >= stationMinStop {
				stationCount++
				t.Entries = append(t.Entries, Entry{
					Type:       EntryStation,
					Km:         stopStart.DistanceM / 1000,
					HHMM:       formatHHMM(stopStart.T),
					Name:       fmt.Sprintf("Station %d", stationCount),
					SpeedLimit: stopStart.SpeedLimit,
				})
				stationEmitted = true
			}
		} else {
			stopStart = nil
			stationEmitted = false
		}

		// ---- speed limit change -------------------------------------
		if diff(s.SpeedLimit, lastLimit) >= speedChangeKMH {
			t.Entries = append(t.Entries, Entry{
				Type:       EntrySpeed,
				Km:         s.DistanceM / 1000,
				HHMM:       formatHHMM(s.T),
				SpeedLimit: s.SpeedLimit,
			})
			lastLimit = s.SpeedLimit
			continue
		}

		// ---- gradient change ----------------------------------------
		if diff(s.Gradient, lastGradient) >= gradientChangePermille {
			t.Entries = append(t.Entries, Entry{
				Type:     EntryGradient,
				Km:       s.DistanceM / 1000,
				HHMM:     formatHHMM(s.T),
				Gradient: s.Gradient,
			})
			lastGradient = s.Gradient
			continue
		}

		// ---- kilometric waypoint ------------------------------------
		if s.DistanceM >= nextWaypointM {
			t.Entries = append(t.Entries, Entry{
				Type: EntryWaypoint,
				Km:   s.DistanceM / 1000,
				HHMM: formatHHMM(s.T),
			})
			for nextWaypointM <= s.DistanceM {
				nextWaypointM += waypointEveryM
			}
		}
	}

	if stationCount > 0 {
		t.RouteInfo.StartStation = "Station 1"
		t.RouteInfo.EndStation = fmt.Sprintf("Station %d", stationCount)
	}
	return t
}

// stopDuration measures the continuous stationary span from the first to the
// current sample, honoring jitter-merged sample extents.
func stopDuration(first, current *Sample) time.Duration {
	end := current.T
	if current.EndT.After(end) {
		end = current.EndT
	}
	return end.Sub(first.T)
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
