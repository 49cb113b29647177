package auth

import (
	"crypto/rand"
	"math/big"
	"time"
)

// TimingConfig holds configuration for failure-path timing equalisation
type TimingConfig struct {
	BaseDelayMs   int // Minimum time a failed request takes
	RandomDelayMs int // Upper bound of crypto-random jitter added to the floor
}

// TimingDelay pads failed authorizations to a common floor so that
// "unregistered user" and "invalid code" cannot be told apart by latency
type TimingDelay struct {
	config TimingConfig
	sleep  func(time.Duration)
}

// NewTimingDelay creates a new TimingDelay instance
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{
		config: config,
		sleep:  time.Sleep,
	}
}

// Target returns the padded duration for one failure: base plus jitter
func (td *TimingDelay) Target() time.Duration {
	target := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(td.config.RandomDelayMs)))
		if err == nil {
			target += time.Duration(n.Int64()) * time.Millisecond
		}
	}
	return target
}

// WaitFrom sleeps until at least Target() has elapsed since start
func (td *TimingDelay) WaitFrom(start time.Time) {
	if td == nil {
		return
	}

	if remaining := td.Target() - time.Since(start); remaining > 0 {
		td.sleep(remaining)
	}
}
