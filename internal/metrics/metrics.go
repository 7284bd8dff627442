package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout counters, exposed on the health endpoint.
var (
	CheckoutAttempts  Counter
	CheckoutSuccesses Counter
	CheckoutConflicts Counter
	CheckoutTimeouts  Counter
)

// Snapshot returns the current checkout counter values.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"checkout_attempts":  CheckoutAttempts.Load(),
		"checkout_successes": CheckoutSuccesses.Load(),
		"checkout_conflicts": CheckoutConflicts.Load(),
		"checkout_timeouts":  CheckoutTimeouts.Load(),
	}
}
