package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"powerbill/internal/models"
	"powerbill/internal/password"
	"powerbill/internal/service"
)

// UserStore is the user persistence needed for seeding.
type UserStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
}

// BillStore is the bill persistence needed for seeding.
type BillStore interface {
	Append(ctx context.Context, bill *models.Bill) error
}

// Ensure populates demo data on an empty database: one consumer and six
// months of historical bills, the oldest five already paid. It is invoked
// explicitly by the composition root at startup and is a no-op when any
// user exists.
func Ensure(ctx context.Context, users UserStore, bills BillStore, hasher password.Hasher, rates service.Rates, logger *zap.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := hasher.Hash("password123")
	if err != nil {
		return fmt.Errorf("seed: hash demo password: %w", err)
	}

	user := &models.User{
		Name:         "John Doe",
		Email:        "john@example.com",
		PasswordHash: hash,
		Address:      "123 Main St, City",
		MeterNo:      "MET123456",
		Phone:        "1234567890",
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("seed: create demo user: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	for i := 5; i >= 0; i-- {
		generated := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		units := 200 + rng.Int63n(301)
		amounts, err := rates.ComputeAmounts(units)
		if err != nil {
			return fmt.Errorf("seed: compute amounts: %w", err)
		}

		bill := &models.Bill{
			UserID:        user.ID,
			Units:         units,
			Amount:        amounts.Amount,
			Tax:           amounts.Tax,
			TotalAmount:   amounts.TotalAmount,
			Status:        models.BillStatusUnpaid,
			GeneratedDate: generated,
			DueDate:       generated.AddDate(0, 0, 15),
		}
		if i > 0 {
			paid := generated.AddDate(0, 0, 9)
			paymentID := fmt.Sprintf("PAY_%d", paid.UnixMilli())
			bill.Status = models.BillStatusPaid
			bill.PaidDate = &paid
			bill.PaymentID = &paymentID
		}

		if err := bills.Append(ctx, bill); err != nil {
			return fmt.Errorf("seed: append bill: %w", err)
		}
	}

	logger.Info("seeded demo data",
		zap.Int64("user_id", user.ID),
		zap.String("meter_no", user.MeterNo),
	)
	return nil
}
