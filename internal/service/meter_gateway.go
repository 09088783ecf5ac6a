package service

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// MeterGateway produces the next reading for a meter. Implementations must
// return a value strictly greater than lastReading.
type MeterGateway interface {
	NextReading(ctx context.Context, meterNo string, lastReading int64) (int64, error)
}

// SimulatedMeterGateway is a stand-in for a smart-meter feed. It draws a
// bounded random reading after a short artificial delay; a production
// deployment replaces this with a real meter integration.
type SimulatedMeterGateway struct {
	delay      time.Duration
	minReading int64
	maxReading int64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedMeterGateway returns a simulated meter feed.
func NewSimulatedMeterGateway(delay time.Duration) *SimulatedMeterGateway {
	return &SimulatedMeterGateway{
		delay:      delay,
		minReading: 100,
		maxReading: 1000,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NextReading returns a random reading strictly greater than lastReading.
// The artificial delay is cancellable via ctx.
func (g *SimulatedMeterGateway) NextReading(ctx context.Context, meterNo string, lastReading int64) (int64, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(g.delay):
		}
	}

	span := g.maxReading - g.minReading + 1

	// Once the meter has run past the simulated range, step forward from
	// the last reading instead of looping on an unsatisfiable draw.
	if lastReading >= g.maxReading {
		return lastReading + 1 + g.randInt63n(span), nil
	}

	for {
		reading := g.minReading + g.randInt63n(span)
		if reading > lastReading {
			return reading, nil
		}
	}
}

func (g *SimulatedMeterGateway) randInt63n(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int63n(n)
}
