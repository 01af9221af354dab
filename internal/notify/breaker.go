package notify

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("notify: circuit breaker is open")

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
	}
	return "unknown"
}

// Breaker stops calls to a sink after repeated failures and lets a single
// trial call through once the cool-down has passed.
type Breaker struct {
	name        string
	maxFailures uint32
	cooldown    time.Duration
	now         func() time.Time

	mutex               sync.Mutex
	state               State
	consecutiveFailures uint32
	openedAt            time.Time
	probing             bool
}

func NewBreaker(name string, maxFailures uint32, cooldown time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	return &Breaker{
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
		state:       StateClosed,
	}
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.currentState()
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	success := false
	defer func() {
		b.afterCall(success)
	}()

	err := fn()
	success = err == nil
	return err
}

func (b *Breaker) beforeCall() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.currentState() {
	case StateOpen:
		return ErrBreakerOpen
	case StateHalfOpen:
		if b.probing {
			return ErrBreakerOpen
		}
		b.state = StateHalfOpen
		b.probing = true
	}
	return nil
}

func (b *Breaker) afterCall(success bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.probing = false
	if success {
		b.state = StateClosed
		b.consecutiveFailures = 0
		return
	}

	b.consecutiveFailures++
	if b.state == StateHalfOpen || b.consecutiveFailures >= b.maxFailures {
		b.state = StateOpen
		b.openedAt = b.now()
	}
}

// currentState must be called with the mutex held.
func (b *Breaker) currentState() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}
