// Package util holds small helpers shared by the driven adapters.
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps the delay between retry attempts.
const maxBackoff = 30 * time.Second

// Backoff returns an exponential backoff delay with jitter for the given
// attempt number. The base delay doubles each attempt, capped at 30
// seconds, with random jitter of up to 25% in either direction.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}

	delay := base * time.Duration(1<<uint(attempt))
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}

	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - delay/4
	return delay + jitter
}
