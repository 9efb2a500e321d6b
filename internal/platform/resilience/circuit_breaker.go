package resilience

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned instead of calling the protected function while
// the breaker is open or saturated in half-open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts are cleared; 0 never clears.
	Interval time.Duration
	// Timeout before an open breaker moves to half-open.
	Timeout time.Duration
	// FailureThreshold consecutive failures trip the breaker.
	FailureThreshold uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// Breaker wraps gobreaker with state-change logging.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

// NewBreaker creates a breaker. onStateChange, if non-nil, is called with the
// new state encoded as 0 closed, 1 half-open, 2 open.
func NewBreaker(cfg BreakerConfig, onStateChange func(name string, state float64)) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("breaker=%s from=%s to=%s", name, from, to)
			if onStateChange != nil {
				onStateChange(name, stateValue(to))
			}
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// Execute runs fn through the breaker. Rejections wrap ErrCircuitOpen.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
	}
	return res, err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Name() string {
	return b.name
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
