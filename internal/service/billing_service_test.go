package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"powerbill/internal/models"
)

var testRates = Rates{UnitRate: 5, TaxRate: 0.18}

func newTestBillingService(repo *memBillRepo, publisher *capturingPublisher) *BillingService {
	return NewBillingService(repo, testRates, publisher, zap.NewNop())
}

func TestComputeAmounts(t *testing.T) {
	for _, tc := range []struct {
		units  int64
		amount float64
	}{
		{units: 0, amount: 0},
		{units: 1, amount: 5},
		{units: 120, amount: 600},
		{units: 347, amount: 1735},
	} {
		amounts, err := testRates.ComputeAmounts(tc.units)
		require.NoError(t, err)
		assert.InDelta(t, tc.amount, amounts.Amount, 1e-9)
		assert.InDelta(t, tc.amount*0.18, amounts.Tax, 1e-9)
		assert.InDelta(t, amounts.Amount+amounts.Tax, amounts.TotalAmount, 1e-9)
		assert.InDelta(t, float64(tc.units)*5*1.18, amounts.TotalAmount, 1e-6)
	}
}

func TestComputeAmountsRejectsNegativeUnits(t *testing.T) {
	_, err := testRates.ComputeAmounts(-1)
	assert.ErrorIs(t, err, ErrInvalidUnits)
}

func TestIssueBillRejectsNonPositiveUnits(t *testing.T) {
	repo := newMemBillRepo()
	svc := newTestBillingService(repo, &capturingPublisher{})

	for _, units := range []int64{0, -10} {
		_, err := svc.IssueBill(context.Background(), 1, units)
		assert.ErrorIs(t, err, ErrInvalidUnits)
	}
	assert.Zero(t, repo.count(), "rejected issuance must not write to storage")
}

func TestIssueBillCreatesUnpaidBill(t *testing.T) {
	repo := newMemBillRepo()
	publisher := &capturingPublisher{}
	svc := newTestBillingService(repo, publisher)

	generated := time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return generated }

	bill, err := svc.IssueBill(context.Background(), 7, 250)
	require.NoError(t, err)

	assert.Equal(t, int64(7), bill.UserID)
	assert.Equal(t, int64(250), bill.Units)
	assert.Equal(t, models.BillStatusUnpaid, bill.Status)
	assert.Nil(t, bill.PaidDate)
	assert.Nil(t, bill.PaymentID)
	assert.InDelta(t, 1250.0, bill.Amount, 1e-9)
	assert.InDelta(t, 225.0, bill.Tax, 1e-9)
	assert.InDelta(t, 1475.0, bill.TotalAmount, 1e-9)
	assert.Equal(t, generated, bill.GeneratedDate)

	require.Len(t, publisher.issued, 1)
	assert.Equal(t, bill.ID, publisher.issued[0].ID)
}

func TestIssueBillDueDateIsFifteenDays(t *testing.T) {
	repo := newMemBillRepo()
	svc := newTestBillingService(repo, &capturingPublisher{})

	generated := time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return generated }

	bill, err := svc.IssueBill(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 15*24*time.Hour, bill.DueDate.Sub(bill.GeneratedDate))
}

func TestIssueBillPropagatesStorageFailure(t *testing.T) {
	repo := newMemBillRepo()
	repo.appendErr = errors.New("disk full")
	svc := newTestBillingService(repo, &capturingPublisher{})

	_, err := svc.IssueBill(context.Background(), 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// Covers the full meter-to-bill flow: a meter sitting at 100 yields a
// reading above 100, and billing the delta applies rate and tax.
func TestMeterReadingToBillTotal(t *testing.T) {
	ctx := context.Background()

	meterRepo := newMemMeterRepo()
	require.NoError(t, meterRepo.Append(ctx, "MET1", 100))

	meterSvc := NewMeterService(meterRepo, NewSimulatedMeterGateway(0), zap.NewNop())
	reading, err := meterSvc.NextReading(ctx, "MET1")
	require.NoError(t, err)
	assert.Greater(t, reading, int64(100))

	billRepo := newMemBillRepo()
	billingSvc := newTestBillingService(billRepo, &capturingPublisher{})

	bill, err := billingSvc.IssueBill(ctx, 1, reading-100)
	require.NoError(t, err)
	assert.InDelta(t, float64(reading-100)*5*1.18, bill.TotalAmount, 1e-6)
}
