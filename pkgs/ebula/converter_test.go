package ebula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesOfType(t *Timetable, et EntryType) []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// trackRecording builds a run: cruise, one 20 s stop with open doors, cruise.
func trackRecording() *Recording {
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := &Recording{Name: "test", StartedAt: base}

	add := func(offsetS int, distanceM, speedKMH float64, doorsOpen bool) {
		rec.Samples = append(rec.Samples, Sample{
			T:          base.Add(time.Duration(offsetS) * time.Second),
			SpeedKMH:   speedKMH,
			SpeedLimit: 100,
			DistanceM:  distanceM,
			DoorsOpen:  doorsOpen,
		})
	}

	// five samples rolling at 80 km/h (~22 m/s)
	for i := 0; i < 5; i++ {
		add(i, float64(i)*22, 80, false)
	}
	// stationary at 110 m for 20 seconds, doors open
	for i := 0; i < 20; i++ {
		add(5+i, 110, 0, true)
	}
	// rolling again
	for i := 0; i < 5; i++ {
		add(25+i, 110+float64(i+1)*22, 80, false)
	}
	return rec
}

func TestConvertStationDetection(t *testing.T) {
	timetable := Convert(trackRecording(), "Teststrecke")

	stations := entriesOfType(timetable, EntryStation)
	require.Len(t, stations, 1, "one continuous stop yields exactly one station entry")

	s := stations[0]
	assert.Equal(t, "Station 1", s.Name)
	assert.InDelta(t, 0.110, s.Km, 1e-9, "km-post is the distance at stop onset")
	assert.Equal(t, "08:00", s.HHMM, "entry time is the first stationary sample")

	assert.Equal(t, "Station 1", timetable.RouteInfo.StartStation)
	assert.Equal(t, "Station 1", timetable.RouteInfo.EndStation)
	assert.Equal(t, "Teststrecke", timetable.RouteInfo.Name)
}

func TestConvertShortStopIsNoStation(t *testing.T) {
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := &Recording{Name: "short", StartedAt: base}
	for i := 0; i < 10; i++ {
		stationary := i >= 3 && i < 13 // samples 3..9 stand: only a 6 s stop
		speed := 80.0
		if stationary {
			speed = 0
		}
		rec.Samples = append(rec.Samples, Sample{
			T:         base.Add(time.Duration(i) * time.Second),
			SpeedKMH:  speed,
			DoorsOpen: stationary,
			DistanceM: float64(i) * 10,
		})
	}

	timetable := Convert(rec, "short")
	assert.Empty(t, entriesOfType(timetable, EntryStation))
}

func TestConvertSpeedAndGradientEntries(t *testing.T) {
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := &Recording{Name: "limits", StartedAt: base}

	add := func(offsetS int, distanceM, limit, gradient float64) {
		rec.Samples = append(rec.Samples, Sample{
			T:          base.Add(time.Duration(offsetS) * time.Second),
			SpeedKMH:   80,
			SpeedLimit: limit,
			Gradient:   gradient,
			DistanceM:  distanceM,
		})
	}

	add(0, 0, 120, 0)
	add(1, 20, 120, 0)
	add(2, 40, 120, 1) // gradient +1 permille: below threshold
	add(3, 60, 80, 1)  // limit drop 40: speed entry
	add(4, 80, 82, 1)  // limit wobble 2: below threshold
	add(5, 100, 82, 5) // gradient +4: gradient entry

	timetable := Convert(rec, "limits")

	speeds := entriesOfType(timetable, EntrySpeed)
	require.Len(t, speeds, 1)
	assert.Equal(t, 80.0, speeds[0].SpeedLimit)
	assert.InDelta(t, 0.060, speeds[0].Km, 1e-9)

	gradients := entriesOfType(timetable, EntryGradient)
	require.Len(t, gradients, 1)
	assert.Equal(t, 5.0, gradients[0].Gradient)
}

func TestConvertWaypoints(t *testing.T) {
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := &Recording{Name: "way", StartedAt: base}
	// constant limit/gradient, 3.5 km of track in 100 m steps
	for i := 0; i <= 35; i++ {
		rec.Samples = append(rec.Samples, Sample{
			T:          base.Add(time.Duration(i) * 5 * time.Second),
			SpeedKMH:   72,
			SpeedLimit: 120,
			DistanceM:  float64(i) * 100,
		})
	}

	timetable := Convert(rec, "way")
	waypoints := entriesOfType(timetable, EntryWaypoint)
	require.Len(t, waypoints, 3, "one per completed kilometre")
	assert.InDelta(t, 1.0, waypoints[0].Km, 1e-9)
	assert.InDelta(t, 2.0, waypoints[1].Km, 1e-9)
	assert.InDelta(t, 3.0, waypoints[2].Km, 1e-9)

	assert.InDelta(t, 3.5, timetable.RouteInfo.DistanceKm, 1e-9)
}

func TestTimetableSaveLoad(t *testing.T) {
	timetable := Convert(trackRecording(), "persist")
	path := t.TempDir() + "/persist" + FileExtension

	require.NoError(t, timetable.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, timetable.RouteInfo, loaded.RouteInfo)
	assert.Equal(t, len(timetable.Entries), len(loaded.Entries))
	assert.Equal(t, timetable.RecordedAt, loaded.RecordedAt)
}
