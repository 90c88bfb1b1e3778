package steam

import (
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	loginBackoffBase = 500 * time.Millisecond
	loginBackoffCap  = 16 * time.Second
	loginMaxRetries  = 4
)

// defaultLoginBackoff bounds the handshake retry policy: capped
// exponential growth and a hard attempt budget. Only errors wrapped
// retryable by the caller are ever rescheduled; the backoff sleeps are
// context-aware inside retry.Do.
func defaultLoginBackoff() retry.Backoff {
	b := retry.NewExponential(loginBackoffBase)
	b = retry.WithCappedDuration(loginBackoffCap, b)
	b = retry.WithMaxRetries(loginMaxRetries, b)
	return b
}
