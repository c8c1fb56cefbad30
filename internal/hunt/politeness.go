package hunt

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// pauser abstracts the inter-query politeness delay so tests can skip it.
type pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauser struct{}

// Pause waits for delay or until ctx finishes, whichever comes first.
func (timerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// jitterBetween returns a uniformly random duration in [min, max]. The
// randomized spacing makes successive queries look less mechanical.
func jitterBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := big.NewInt(int64(max - min))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return min + (max-min)/2
	}
	return min + time.Duration(n.Int64())
}
