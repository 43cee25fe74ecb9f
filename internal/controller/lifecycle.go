package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrInvalidTransition is returned when an event arrives in a state that cannot accept it.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// State is the lifecycle state of the controller version.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateWaiting
	StateActivating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateWaiting:
		return "waiting"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Lifecycle tracks one controller version through install and activation.
type Lifecycle struct {
	mu          sync.RWMutex
	version     string
	state       State
	skipWaiting bool
	// controlling stays set once the first activation claimed clients, so a
	// re-install does not drop interception of in-flight pages.
	controlling bool
}

// NewLifecycle starts in StateParsed.
func NewLifecycle(version string) *Lifecycle {
	metrics.SetLifecycleState(int(StateParsed))
	return &Lifecycle{version: version}
}

// Version returns the controller version.
func (l *Lifecycle) Version() string {
	return l.version
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// SkipWaiting marks the version eligible to activate without waiting for
// clients of the previous version to close.
func (l *Lifecycle) SkipWaiting() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.skipWaiting = true
}

// SkippingWaiting reports whether SkipWaiting was called.
func (l *Lifecycle) SkippingWaiting() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skipWaiting
}

// Controlling reports whether fetches are intercepted.
func (l *Lifecycle) Controlling() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.controlling
}

// beginInstall enters StateInstalling. Install is refused while another
// install or an activation is running.
func (l *Lifecycle) beginInstall() error {
	return l.transition(StateInstalling, StateParsed, StateWaiting, StateActive)
}

func (l *Lifecycle) finishInstall() error {
	return l.transition(StateWaiting, StateInstalling)
}

func (l *Lifecycle) beginActivate() error {
	return l.transition(StateActivating, StateWaiting)
}

func (l *Lifecycle) finishActivate() error {
	l.mu.Lock()
	l.controlling = true
	l.mu.Unlock()
	return l.transition(StateActive, StateActivating)
}

func (l *Lifecycle) transition(to State, from ...State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := false
	for _, f := range from {
		if l.state == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.state, to)
	}

	log.Info().
		Str("version", l.version).
		Str("from", l.state.String()).
		Str("to", to.String()).
		Msg("Lifecycle transition")
	l.state = to
	metrics.SetLifecycleState(int(to))
	return nil
}
