package breaker

import (
	"time"

	"github.com/brightnest/daycare/internal/pkg/logger"
	"github.com/sony/gobreaker"
)

// Names of the breakers guarding external dependencies
const (
	Redis    = "Redis-Revocation"
	RabbitMQ = "RabbitMQ-Publisher"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// It opens after three consecutive failures and probes again after the
// dependency specific timeout.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	var timeout time.Duration
	switch name {
	case Redis:
		timeout = 5 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}
