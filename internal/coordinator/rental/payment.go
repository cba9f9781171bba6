package rental

import (
	"context"
	"math/rand"
	"time"
)

// PaymentDecider approves or rejects a rent request.
type PaymentDecider interface {
	Approve(ctx context.Context) bool
}

// FixedPayment always returns the same decision.
type FixedPayment bool

func (f FixedPayment) Approve(context.Context) bool { return bool(f) }

// RandomPayment approves with a fixed probability from its own seeded source.
// It is only used from the coordinator's worker, so it needs no locking.
type RandomPayment struct {
	rate float64
	rng  *rand.Rand
}

// NewRandomPayment returns a decider approving with probability rate.
// A zero seed picks a time-based one.
func NewRandomPayment(rate float64, seed int64) *RandomPayment {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPayment{rate: rate, rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPayment) Approve(context.Context) bool {
	return p.rng.Float64() < p.rate
}
