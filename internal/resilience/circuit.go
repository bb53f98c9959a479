package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState is the breaker state.
type CircuitState int

const (
	// CircuitClosed lets calls through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the reset timeout passes.
	CircuitOpen
	// CircuitHalfOpen lets probe calls through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling through while the breaker is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitBreakerConfig controls when a breaker trips and recovers.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open. Default: 30s.
	ResetTimeout time.Duration

	// ShouldTrip decides which errors count. Default: every non-nil error.
	ShouldTrip func(err error) bool
}

// DefaultCircuitBreakerConfig returns the defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, ResetTimeout: 30 * time.Second}
}

// CircuitBreaker guards one backend.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time

	now func() time.Time
}

// NewCircuitBreaker returns a closed breaker for the named backend.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.ShouldTrip == nil {
		cfg.ShouldTrip = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{name: name, cfg: cfg, now: time.Now}
}

// ExecuteVal runs fn through the breaker.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !cb.allow() {
		return zero, eris.Wrapf(ErrCircuitOpen, "resilience: %s", cb.name)
	}
	val, err := fn(ctx)
	cb.record(err)
	if err != nil {
		return zero, err
	}
	return val, nil
}

// State returns the effective state, reporting an open breaker whose timeout
// has passed as half-open.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != CircuitOpen {
		return true
	}
	if cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		cb.setState(CircuitHalfOpen)
		return true
	}
	return false
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.cfg.ShouldTrip(err) {
		cb.failures = 0
		if cb.state == CircuitHalfOpen {
			cb.setState(CircuitClosed)
		}
		return
	}

	cb.failures++
	if cb.state == CircuitHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
		cb.openedAt = cb.now()
		cb.setState(CircuitOpen)
	}
}

func (cb *CircuitBreaker) setState(to CircuitState) {
	if cb.state == to {
		return
	}
	zap.L().Info("resilience: circuit state change",
		zap.String("service", cb.name),
		zap.Stringer("from", cb.state),
		zap.Stringer("to", to),
	)
	cb.state = to
}
