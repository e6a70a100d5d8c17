package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// New returns a breaker tuned for remote persistence calls: trip after a few
// consecutive failures, probe again after the cooldown.
func New(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Do runs fn through the breaker, discarding the (unused) result value.
func Do(cb *gobreaker.CircuitBreaker[any], fn func() error) error {
	_, err := cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}
