package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the guarded function while the breaker
// is open or its half-open trial budget is spent.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker. Zero values take the defaults noted.
type Settings struct {
	// Failures is the consecutive failure count that opens the breaker (5).
	Failures uint32
	// Cooldown is how long the breaker stays open before probing (30s).
	Cooldown time.Duration
	// Probes is the number of successes in half-open needed to close (1).
	Probes uint32
	// OnStateChange observes transitions. It runs with the breaker locked
	// and must not call back into it.
	OnStateChange func(name string, from, to State)
	// Now replaces the clock in tests.
	Now func() time.Time
}

// Breaker stops calling a failing dependency for a while so that callers
// fail fast instead of blocking on every attempt.
type Breaker struct {
	name     string
	settings Settings

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	inflight  uint32
	openedAt  time.Time
}

// New creates a closed breaker.
func New(name string, settings Settings) *Breaker {
	if settings.Failures == 0 {
		settings.Failures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Probes == 0 {
		settings.Probes = 1
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// State returns the current position, moving open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Do calls fn unless the breaker is open and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.inflight > 0 {
		b.inflight--
	}
	if err != nil {
		b.fail()
	} else {
		b.succeed()
	}
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.inflight >= b.settings.Probes {
			return ErrOpen
		}
		b.inflight++
	}
	return nil
}

func (b *Breaker) current() State {
	if b.state == StateOpen && !b.settings.Now().Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) fail() {
	b.successes = 0
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.settings.Failures {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

func (b *Breaker) succeed() {
	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.settings.Probes {
			b.transition(StateClosed)
		}
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.failures, b.successes, b.inflight = 0, 0, 0
	if to == StateOpen {
		b.openedAt = b.settings.Now()
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
