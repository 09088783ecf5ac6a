package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"powerbill/internal/events"
	"powerbill/internal/models"
)

// PaymentService settles bills through a payment gateway.
type PaymentService struct {
	bills     BillRepository
	gateway   PaymentGateway
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService builds service.
func NewPaymentService(bills BillRepository, gateway PaymentGateway, publisher events.Publisher, logger *zap.Logger) *PaymentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PaymentService{
		bills:     bills,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Pay charges the bill and transitions it Unpaid -> Paid exactly once,
// stamping the paid date and payment id. Paying an unknown bill, another
// user's bill, or a bill that is already paid fails without mutating state.
func (s *PaymentService) Pay(ctx context.Context, userID, billID int64) (*models.Bill, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, translateBillErr(err)
	}
	if bill.UserID != userID {
		return nil, ErrBillNotFound
	}
	if bill.Status == models.BillStatusPaid {
		return nil, ErrBillAlreadyPaid
	}

	paymentID, err := s.gateway.Charge(ctx, bill)
	if err != nil {
		return nil, fmt.Errorf("payment: charge bill %d: %w", billID, err)
	}

	paid, err := s.bills.MarkPaid(ctx, billID, paymentID, s.now())
	if err != nil {
		return nil, translateBillErr(err)
	}

	if err := s.publisher.BillPaid(ctx, paid); err != nil {
		s.logger.Warn("failed to publish bill paid event", zap.Int64("bill_id", paid.ID), zap.Error(err))
	}

	s.logger.Info("bill paid",
		zap.Int64("bill_id", paid.ID),
		zap.Int64("user_id", paid.UserID),
		zap.String("payment_id", paymentID),
	)
	return paid, nil
}
