package worker

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff returns the pause before the next poll after attempt
// consecutive failures: 500ms, 1s, 2s ... capped at 30s, plus up to 250ms jitter.
func ExponentialBackoff(attempt int) time.Duration {
	base := 500 * time.Millisecond
	capDelay := 30 * time.Second

	if attempt < 0 {
		attempt = 0
	}
	// 2^10 * base is already far past the cap
	if attempt > 10 {
		attempt = 10
	}

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
