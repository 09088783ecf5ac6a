package service

import (
	"context"
	"fmt"
	"time"

	"powerbill/internal/models"
)

// PaymentGateway charges a bill and returns the gateway's payment id.
type PaymentGateway interface {
	Charge(ctx context.Context, bill *models.Bill) (string, error)
}

// SimulatedPaymentGateway is a stand-in for a real payment provider. It
// waits out a fixed processing delay and fabricates a payment id; a
// production deployment replaces this with a gateway integration.
type SimulatedPaymentGateway struct {
	delay time.Duration
}

// NewSimulatedPaymentGateway returns a simulated payment provider.
func NewSimulatedPaymentGateway(delay time.Duration) *SimulatedPaymentGateway {
	return &SimulatedPaymentGateway{delay: delay}
}

// Charge simulates payment processing. The delay is cancellable via ctx.
func (g *SimulatedPaymentGateway) Charge(ctx context.Context, bill *models.Bill) (string, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return fmt.Sprintf("PAY_%d", time.Now().UnixMilli()), nil
}
