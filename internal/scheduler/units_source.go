package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"powerbill/internal/models"
)

// SimulatedUnitsSource draws a bounded random consumption. This is a
// simulation stub for the missing meter feed, not a billing policy; a
// production deployment supplies real per-user consumption here.
type SimulatedUnitsSource struct {
	minUnits int64
	maxUnits int64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedUnitsSource returns a source drawing from [200, 500] units.
func NewSimulatedUnitsSource() *SimulatedUnitsSource {
	return &SimulatedUnitsSource{
		minUnits: 200,
		maxUnits: 500,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// MonthlyUnits implements UnitsSource.
func (s *SimulatedUnitsSource) MonthlyUnits(ctx context.Context, user models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minUnits + s.rng.Int63n(s.maxUnits-s.minUnits+1), nil
}
