package ebula

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/state"
)

const (
	// DefaultSampleInterval is the recording cadence (2 Hz).
	DefaultSampleInterval = 500 * time.Millisecond

	// jitterThresholdM: a GPS move below this is treated as jitter and
	// merged into the previous sample instead of inflating the distance.
	jitterThresholdM = 0.5

	earthRadiusM = 6371000.0
)

// Sample is one recorded data point. DistanceM is the cumulative haversine
// distance at this sample.
type Sample struct {
	T time.Time `json:"t"`
	// EndT is set when jitter merging extended this sample in time; zero
	// means the sample covers a single instant.
	EndT       time.Time `json:"end_t,omitempty"`
	Lon        float64   `json:"lon"`
	Lat        float64   `json:"lat"`
	SpeedKMH   float64   `json:"v"`
	SpeedLimit float64   `json:"v_limit"`
	Gradient   float64   `json:"gradient"`
	Signal     int       `json:"signal"`
	DoorsOpen  bool      `json:"doors_open"`
	DistanceM  float64   `json:"distance_m"`
}

// Recording is an append-only sample sequence; frozen once stopped.
type Recording struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at,omitempty"`
	Samples   []Sample  `json:"samples"`
}

// TotalDistanceM returns the integrated distance of the whole recording.
func (r *Recording) TotalDistanceM() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Samples[len(r.Samples)-1].DistanceM
}

// Haversine returns the great-circle distance in metres between two
// lon/lat points.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

// NewRecorder constructor; interval 0 selects the default cadence.
func NewRecorder(interval time.Duration) *Recorder {
	if interval == 0 {
		interval = DefaultSampleInterval
	}
	return &Recorder{interval: interval}
}

// Recorder taps the train-state stream and samples it at a fixed cadence.
type Recorder struct {
	interval time.Duration

	mu        sync.Mutex
	latest    state.TrainState
	hasLatest bool
	recording *Recording
}

// Feed stores the newest train state; called from the supervisor's state
// tap on every update.
func (r *Recorder) Feed(st state.TrainState) {
	r.mu.Lock()
	r.latest = st
	r.hasLatest = true
	r.mu.Unlock()
}

// Start begins a new recording. A recording already in progress is kept.
func (r *Recorder) Start(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording != nil {
		return
	}
	r.recording = &Recording{Name: name, StartedAt: time.Now()}
	logrus.Infof("EBuLa recording %q started", name)
}

// Stop freezes and returns the current recording, or nil when none is
// running.
func (r *Recorder) Stop() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.recording
	r.recording = nil
	if rec != nil {
		rec.StoppedAt = time.Now()
		logrus.Infof("EBuLa recording %q stopped: %d samples, %.1f km",
			rec.Name, len(rec.Samples), rec.TotalDistanceM()/1000)
	}
	return rec
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording != nil
}

// Run samples until ctx is cancelled.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.sample(now)
		}
	}
}

func (r *Recorder) sample(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording == nil || !r.hasLatest || !r.latest.HasGPS {
		return
	}

	st := &r.latest
	doorsOpen := st.DoorsLeft != state.DoorClosed || st.DoorsRight != state.DoorClosed
	next := Sample{
		T:          now,
		Lon:        st.Longitude,
		Lat:        st.Latitude,
		SpeedKMH:   st.SpeedKMH,
		SpeedLimit: st.MaxSpeed,
		Gradient:   st.Gradient,
		Signal:     st.SignalAspect,
		DoorsOpen:  doorsOpen,
	}

	samples := r.recording.Samples
	if len(samples) == 0 {
		r.recording.Samples = append(samples, next)
		return
	}

	prev := &samples[len(samples)-1]
	delta := Haversine(prev.Lon, prev.Lat, next.Lon, next.Lat)
	if delta < jitterThresholdM {
		// GPS jitter: extend the previous sample in time, leave the
		// distance untouched
		prev.EndT = now
		prev.SpeedKMH = next.SpeedKMH
		prev.SpeedLimit = next.SpeedLimit
		prev.Gradient = next.Gradient
		prev.Signal = next.Signal
		prev.DoorsOpen = prev.DoorsOpen || next.DoorsOpen
		return
	}
	next.DistanceM = prev.DistanceM + delta
	r.recording.Samples = append(r.recording.Samples, next)
}
