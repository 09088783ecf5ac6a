package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"powerbill/internal/events"
	"powerbill/internal/models"
)

// dueGraceDays is the fixed grace period between generation and due date.
const dueGraceDays = 15

// Rates holds the process-wide billing constants.
type Rates struct {
	UnitRate float64
	TaxRate  float64
}

// BillAmounts is the result of applying rates to consumed units.
type BillAmounts struct {
	Amount      float64
	Tax         float64
	TotalAmount float64
}

// ComputeAmounts applies unit and tax rates to consumed units. Negative
// consumption is never billable.
func (r Rates) ComputeAmounts(units int64) (BillAmounts, error) {
	if units < 0 {
		return BillAmounts{}, fmt.Errorf("%w: %d", ErrInvalidUnits, units)
	}
	amount := float64(units) * r.UnitRate
	tax := amount * r.TaxRate
	return BillAmounts{
		Amount:      amount,
		Tax:         tax,
		TotalAmount: amount + tax,
	}, nil
}

// BillRepository defines the bill storage contract used by services.
type BillRepository interface {
	Append(ctx context.Context, bill *models.Bill) error
	GetByID(ctx context.Context, id int64) (*models.Bill, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Bill, error)
	FindMonthly(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error)
	MarkPaid(ctx context.Context, billID int64, paymentID string, paidAt time.Time) (*models.Bill, error)
}

// BillingService computes amounts and issues bills.
type BillingService struct {
	bills     BillRepository
	rates     Rates
	publisher events.Publisher
	locks     *keyedMutex
	logger    *zap.Logger
	now       func() time.Time
}

// NewBillingService builds service.
func NewBillingService(bills BillRepository, rates Rates, publisher events.Publisher, logger *zap.Logger) *BillingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &BillingService{
		bills:     bills,
		rates:     rates,
		publisher: publisher,
		locks:     newKeyedMutex(),
		logger:    logger,
		now:       time.Now,
	}
}

// Rates exposes the configured billing constants.
func (s *BillingService) Rates() Rates {
	return s.rates
}

// IssueBill creates and persists an unpaid bill for the given consumption.
// Units must be positive; a zero-value bill is never generated. Issuance is
// serialized per user so the monthly-uniqueness check in the scheduler and
// the on-demand path cannot race.
func (s *BillingService) IssueBill(ctx context.Context, userID int64, units int64) (*models.Bill, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUnits, units)
	}

	amounts, err := s.rates.ComputeAmounts(units)
	if err != nil {
		return nil, err
	}

	key := strconv.FormatInt(userID, 10)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	generated := s.now()
	bill := &models.Bill{
		UserID:        userID,
		Units:         units,
		Amount:        amounts.Amount,
		Tax:           amounts.Tax,
		TotalAmount:   amounts.TotalAmount,
		Status:        models.BillStatusUnpaid,
		GeneratedDate: generated,
		DueDate:       generated.AddDate(0, 0, dueGraceDays),
	}

	if err := s.bills.Append(ctx, bill); err != nil {
		return nil, fmt.Errorf("billing: append bill: %w", err)
	}

	if err := s.publisher.BillIssued(ctx, bill); err != nil {
		s.logger.Warn("failed to publish bill issued event", zap.Int64("bill_id", bill.ID), zap.Error(err))
	}

	s.logger.Info("bill issued",
		zap.Int64("bill_id", bill.ID),
		zap.Int64("user_id", userID),
		zap.Int64("units", units),
		zap.Float64("total_amount", bill.TotalAmount),
	)
	return bill, nil
}

// BillsForUser returns the user's bill history, newest first.
func (s *BillingService) BillsForUser(ctx context.Context, userID int64) ([]models.Bill, error) {
	return s.bills.ListByUser(ctx, userID)
}

// MonthlyBill returns the bill generated for the user in the given calendar
// month, or ErrBillNotFound.
func (s *BillingService) MonthlyBill(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error) {
	bill, err := s.bills.FindMonthly(ctx, userID, year, month)
	if err != nil {
		return nil, translateBillErr(err)
	}
	return bill, nil
}
