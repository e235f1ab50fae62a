package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/arduino"
	"github.com/giako888/trainbridge/pkgs/ebula"
	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/panel"
	"github.com/giako888/trainbridge/pkgs/rules"
	"github.com/giako888/trainbridge/pkgs/state"
)

// idleTick is how often the blink ticker re-checks when nothing blinks.
const idleTick = 100 * time.Millisecond

// Supervisor owns the shared train-state slot, the active profile, the rule
// engine and the fan-out. Exactly one source feeds it at a time; updates are
// applied in arrival order and every one triggers a rule evaluation.
type Supervisor struct {
	engine      *rules.Engine
	broadcaster *panel.Broadcaster
	transport   *arduino.Transport
	metrics     *panel.Metrics
	recorder    *ebula.Recorder

	stateMu sync.RWMutex
	st      state.TrainState

	// evalMu serializes rule evaluations (state-driven and blink ticker)
	// and profile swaps.
	evalMu  sync.Mutex
	profile *rules.Profile

	errMu   sync.Mutex
	lastErr error
	errCh   chan error

	// onProfileSwap lets the active source reset its caches; set by the
	// source wiring.
	onProfileSwap func()
}

// NewSupervisor wires the shared components around an initial profile. The
// profile must be valid; the active-profile pointer is never nil afterwards.
func NewSupervisor(profile *rules.Profile, broadcaster *panel.Broadcaster, transport *arduino.Transport, metrics *panel.Metrics, recorder *ebula.Recorder) *Supervisor {
	return &Supervisor{
		engine:      rules.NewEngine(),
		broadcaster: broadcaster,
		transport:   transport,
		metrics:     metrics,
		recorder:    recorder,
		profile:     profile,
		errCh:       make(chan error, 16),
	}
}

// Profile returns the active profile.
func (s *Supervisor) Profile() *rules.Profile {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()
	return s.profile
}

// State returns a copy of the shared train state.
func (s *Supervisor) State() state.TrainState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.st
}

// LastError returns the most recent background error.
func (s *Supervisor) LastError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// Errors is the change-event channel background tasks report through.
func (s *Supervisor) Errors() <-chan error {
	return s.errCh
}

func (s *Supervisor) reportError(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
	select {
	case s.errCh <- err:
	default:
	}
}

// OnStateUpdate is the source callback: deposit the snapshot into the shared
// slot, tap the recorder, re-evaluate the lamps. The lock is held only for
// the field copy; evaluation and fan-out run outside it.
func (s *Supervisor) OnStateUpdate(st state.TrainState) {
	s.stateMu.Lock()
	s.st = st
	s.stateMu.Unlock()

	if s.metrics != nil {
		s.metrics.StateUpdates.Inc()
	}
	if s.recorder != nil {
		s.recorder.Feed(st)
	}
	s.evaluate()
}

// evaluate recomputes the lamp map from the current state and publishes it.
func (s *Supervisor) evaluate() {
	s.evalMu.Lock()
	profile := s.profile
	s.evalMu.Unlock()

	st := s.State()
	m := s.engine.Evaluate(&st, profile)
	s.broadcaster.Publish(m)
}

// BlinkLoop keeps blinking lamps moving in the absence of state updates:
// while any lamp blinks it re-evaluates every half blink period. The rule
// engine itself stays stateless; this loop is the only clock driver.
func (s *Supervisor) BlinkLoop(ctx context.Context) {
	for {
		s.evalMu.Lock()
		profile := s.profile
		s.evalMu.Unlock()

		st := s.State()
		interval := s.engine.BlinkInterval(&st, profile)
		if interval == 0 {
			interval = idleTick
		} else {
			s.evaluate()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// SwapProfile atomically installs a new active profile between evaluation
// cycles and resets the downstream caches (poller cache via the source hook,
// lamp map, Arduino last-sent cache).
func (s *Supervisor) SwapProfile(p *rules.Profile) error {
	if p == nil {
		return fault.New(fault.BadProfile, "profile must not be nil")
	}
	s.evalMu.Lock()
	s.profile = p
	s.evalMu.Unlock()

	if s.onProfileSwap != nil {
		s.onProfileSwap()
	}
	s.broadcaster.Reset()
	if s.transport != nil {
		_ = s.transport.AllOff()
	}
	logrus.Infof("Activated profile %q (%s)", p.ID, p.Name)

	s.evaluate()
	return nil
}

// BlankState zeroes the shared slot (source disconnected) and republishes so
// the panel falls dark.
func (s *Supervisor) BlankState() {
	s.stateMu.Lock()
	s.st.Blank()
	s.stateMu.Unlock()
	s.evaluate()
}
