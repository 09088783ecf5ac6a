package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"powerbill/internal/models"
	"powerbill/internal/repository"
)

// UserLister enumerates all registered users.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// BillFinder looks up a user's bill for a calendar month.
type BillFinder interface {
	FindMonthly(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error)
}

// BillIssuer creates bills.
type BillIssuer interface {
	IssueBill(ctx context.Context, userID int64, units int64) (*models.Bill, error)
}

// UnitsSource supplies the consumption to bill a user for the current
// month.
type UnitsSource interface {
	MonthlyUnits(ctx context.Context, user models.User) (int64, error)
}

// CheckStore persists the timestamp of the last scheduler pass.
type CheckStore interface {
	LastCheck(ctx context.Context) (time.Time, bool, error)
	SetLastCheck(ctx context.Context, t time.Time) error
}

// Monthly guarantees at most one auto-generated bill per (user, calendar
// month). It runs a pass at startup and then on a fixed interval; a pass
// scans users only when the persisted last-check stamp is from a different
// month, and the per-user monthly lookup makes even a forced scan
// idempotent.
type Monthly struct {
	users    UserLister
	bills    BillFinder
	issuer   BillIssuer
	units    UnitsSource
	checks   CheckStore
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewMonthly builds the scheduler.
func NewMonthly(users UserLister, bills BillFinder, issuer BillIssuer, units UnitsSource, checks CheckStore, interval time.Duration, logger *zap.Logger) *Monthly {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Monthly{
		users:    users,
		bills:    bills,
		issuer:   issuer,
		units:    units,
		checks:   checks,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one pass immediately and then on every interval tick until
// the context is cancelled.
func (m *Monthly) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one scheduler pass: scan users if the month has rolled over
// since the last pass, then update the stamp.
func (m *Monthly) Check(ctx context.Context) {
	now := m.now()

	last, ok, err := m.checks.LastCheck(ctx)
	if err != nil {
		m.logger.Warn("failed to read last scheduler check", zap.Error(err))
	}
	if err == nil && ok && last.Month() == now.Month() && last.Year() == now.Year() {
		return
	}

	m.GenerateMonthlyBills(ctx)

	if err := m.checks.SetLastCheck(ctx, now); err != nil {
		m.logger.Warn("failed to persist scheduler check", zap.Error(err))
	}
}

// GenerateMonthlyBills issues a bill for every user who has none in the
// current calendar month. One user's failure never aborts the scan.
func (m *Monthly) GenerateMonthlyBills(ctx context.Context) {
	now := m.now()
	year, month := now.Year(), now.Month()

	users, err := m.users.List(ctx)
	if err != nil {
		m.logger.Error("failed to list users for monthly billing", zap.Error(err))
		return
	}

	for _, user := range users {
		if err := m.generateFor(ctx, user, year, month); err != nil {
			m.logger.Error("failed to generate monthly bill",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
		}
	}
}

func (m *Monthly) generateFor(ctx context.Context, user models.User, year int, month time.Month) error {
	_, err := m.bills.FindMonthly(ctx, user.ID, year, month)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrBillNotFound) {
		return err
	}

	units, err := m.units.MonthlyUnits(ctx, user)
	if err != nil {
		return err
	}

	bill, err := m.issuer.IssueBill(ctx, user.ID, units)
	if err != nil {
		return err
	}

	m.logger.Info("monthly bill generated",
		zap.Int64("user_id", user.ID),
		zap.Int64("bill_id", bill.ID),
		zap.Int64("units", units),
	)
	return nil
}
