package tsw6

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/state"
)

const (
	// DefaultInterval is the poll cadence when the profile does not set one.
	DefaultInterval = 100 * time.Millisecond
	// MinInterval is the floor; faster settings are clamped.
	MinInterval = 50 * time.Millisecond
)

// EndpointValue is one cached poll result. Fetched is false until the first
// successful read of the path ("never fetched" marker).
type EndpointValue struct {
	Path      string
	Value     any
	Timestamp time.Time
	Fetched   bool
}

// NewPoller constructor. mappings is the watch set read on every tick; the
// bridge passes the fixed WellKnownMappings table and adds no paths derived
// from the profile's rules.
func NewPoller(client *Client, interval time.Duration, mappings []Mapping) *Poller {
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	p := &Poller{
		client:   client,
		interval: interval,
		mappings: mappings,
	}
	p.ResetCache()
	return p
}

// Poller periodically reads the configured endpoint set and folds changed
// values into a TrainState through the field mappings. One background task;
// ticks never overlap.
type Poller struct {
	client   *Client
	interval time.Duration
	mappings []Mapping

	// OnStateUpdate receives a state copy after every tick that changed
	// at least one value.
	OnStateUpdate func(state.TrainState)
	// OnClassDetected fires once per (re)connect with the ObjectClass read
	// and the recommended profile ID ("" when unknown).
	OnClassDetected func(objectClass, profileID string)
	// OnPollError fires when an endpoint read fails at transport or auth
	// level (the tick then aborts); api-level misses do not fire it. May be
	// nil.
	OnPollError func(path string, err error)

	mu        sync.Mutex
	cache     map[string]EndpointValue
	st        state.TrainState
	needClass bool
}

// ResetCache drops all cached values and re-arms the train-class discovery
// read. Called on profile swap and reconnect.
func (p *Poller) ResetCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]EndpointValue, len(p.mappings))
	for _, m := range p.mappings {
		p.cache[m.Path] = EndpointValue{Path: m.Path}
	}
	p.st = state.TrainState{}
	p.needClass = true
}

// CachedValue returns the cache entry for path.
func (p *Poller) CachedValue(path string) (EndpointValue, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache[path]
	return v, ok
}

// State returns a copy of the poller's current train state.
func (p *Poller) State() state.TrainState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st
}

// Run polls until ctx is cancelled or the transport fails. A tick that
// overruns the interval is followed immediately by the next one; ticks are
// never queued. A connection or auth level failure is returned so the
// supervisor can blank the state and reconnect with backoff.
func (p *Poller) Run(ctx context.Context) error {
	for {
		started := time.Now()
		if err := p.tick(ctx); err != nil {
			return err
		}

		elapsed := time.Since(started)
		wait := p.interval - elapsed
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	p.mu.Lock()
	needClass := p.needClass
	p.needClass = false
	p.mu.Unlock()

	if needClass {
		if err := p.detectClass(); err != nil {
			// re-arm discovery for the next (re)connect
			p.mu.Lock()
			p.needClass = true
			p.mu.Unlock()
			return err
		}
	}

	changed := false
	now := time.Now()

	for _, m := range p.mappings {
		if ctx.Err() != nil {
			return nil
		}
		raw, err := p.client.Get(m.Path)
		if err != nil {
			// Get suppresses api-level misses to nil, so an error here is
			// the transport or the key: abort the tick and let the
			// supervisor run its reconnect policy
			if p.OnPollError != nil {
				p.OnPollError(m.Path, err)
			}
			return err
		}
		if raw == nil {
			// api-level miss: the cache entry keeps its last value
			continue
		}

		p.mu.Lock()
		prev := p.cache[m.Path]
		entry := EndpointValue{Path: m.Path, Value: raw, Timestamp: now, Fetched: true}
		p.cache[m.Path] = entry
		valueChanged := !prev.Fetched || prev.Value != raw
		if valueChanged {
			if f, ok := ToFloat(raw); ok {
				m.Apply(&p.st, f)
			}
			changed = true
		}
		p.mu.Unlock()
	}

	if changed {
		p.mu.Lock()
		snapshot := p.st
		cb := p.OnStateUpdate
		p.mu.Unlock()
		if cb != nil {
			cb(snapshot)
		}
	}
	return nil
}

func (p *Poller) detectClass() error {
	raw, err := p.client.Get(EpObjectClass)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	class, ok := raw.(string)
	if !ok {
		return nil
	}
	profileID := DetectProfileID(class)
	logrus.Infof("Detected train class %q (profile: %s)", class, orDash(profileID))
	if p.OnClassDetected != nil {
		p.OnClassDetected(class, profileID)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
