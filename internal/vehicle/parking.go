package vehicle

import (
	"context"
	"math/rand"
	"time"
)

// ParkingChecker decides whether the vehicle is parked properly.
type ParkingChecker interface {
	Valid(ctx context.Context) bool
}

// FixedParking always returns the same decision.
type FixedParking bool

func (f FixedParking) Valid(context.Context) bool { return bool(f) }

// RandomParking passes with a fixed probability from its own seeded source.
// It is only used from the vehicle's worker, so it needs no locking.
type RandomParking struct {
	rate float64
	rng  *rand.Rand
}

// NewRandomParking returns a checker passing with probability rate.
// A zero seed picks a time-based one.
func NewRandomParking(rate float64, seed int64) *RandomParking {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomParking{rate: rate, rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomParking) Valid(context.Context) bool {
	return p.rng.Float64() < p.rate
}
