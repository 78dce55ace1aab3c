// Package breaker wraps sony/gobreaker into a per-kind circuit breaker
// pool (L6): one breaker per searched kind, opening after a run of
// consecutive failures and probing again after a cooldown.
package breaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	functionerrors "github.com/crossplane/function-kubecore-schema-registry/pkg/errors"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Pool lazily creates one gobreaker.CircuitBreaker per kind on first use.
type Pool struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	threshold uint32
	cooldown  time.Duration
}

// NewPool creates an empty breaker pool. threshold is the number of
// consecutive failures that trips a kind's breaker open; cooldown is how
// long it stays open before allowing a single probe request through.
func NewPool(threshold uint32, cooldown time.Duration) *Pool {
	return &Pool{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		threshold: threshold,
		cooldown:  cooldown,
	}
}

var _ interfaces.CircuitBreakerProvider = (*Pool)(nil)

func (p *Pool) breakerFor(kind string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b, ok := p.breakers[kind]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:    kind,
		Timeout: p.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= p.threshold
		},
	}
	b := gobreaker.NewCircuitBreaker(settings)
	p.breakers[kind] = b
	return b
}

// Execute runs fn through the breaker registered for kind, translating an
// open-breaker rejection into a typed FunctionError.
func (p *Pool) Execute(kind string, fn func() (interface{}, error)) (interface{}, error) {
	b := p.breakerFor(kind)
	result, err := b.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, functionerrors.CircuitBreakerOpenError(kind)
	}
	return result, err
}

// Snapshot reports the current state of every breaker created so far, for
// the transitive engine's health endpoint.
func (p *Pool) Snapshot() map[string]domain.BreakerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]domain.BreakerSnapshot, len(p.breakers))
	for kind, b := range p.breakers {
		counts := b.Counts()
		out[kind] = domain.BreakerSnapshot{
			Kind:         kind,
			State:        stateName(b.State()),
			FailureCount: int64(counts.ConsecutiveFailures),
		}
	}
	return out
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
