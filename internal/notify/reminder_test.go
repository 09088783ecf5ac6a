package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerbill/internal/models"
)

func unpaidBill(id int64, dueDate time.Time) models.Bill {
	return models.Bill{
		ID:          id,
		UserID:      1,
		TotalAmount: 1475,
		Status:      models.BillStatusUnpaid,
		DueDate:     dueDate,
	}
}

func TestDueRemindersWithinWindow(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	bills := []models.Bill{
		unpaidBill(1, now.Add(12*time.Hour)),
		unpaidBill(2, now.AddDate(0, 0, 3)),
		unpaidBill(3, now),
	}

	payloads := DueReminders(bills, now)
	require.Len(t, payloads, 3)

	assert.Equal(t, int64(1), payloads[0].BillID)
	assert.Equal(t, 1, payloads[0].DaysUntilDue)
	assert.Equal(t, 3, payloads[1].DaysUntilDue)
	assert.Equal(t, 0, payloads[2].DaysUntilDue)

	for _, p := range payloads {
		assert.Equal(t, "bill.due", p.Type)
		assert.InDelta(t, 1475.0, p.TotalAmount, 1e-9)
	}
}

func TestDueRemindersSkipPaidBills(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	paid := unpaidBill(1, now.AddDate(0, 0, 2))
	paid.Status = models.BillStatusPaid

	assert.Empty(t, DueReminders([]models.Bill{paid}, now))
}

func TestDueRemindersSkipDistantDueDates(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	bills := []models.Bill{
		unpaidBill(1, now.AddDate(0, 0, 4)),
		unpaidBill(2, now.AddDate(0, 0, 10)),
	}

	assert.Empty(t, DueReminders(bills, now))
}

func TestDueRemindersSkipOverdueBills(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	overdue := unpaidBill(1, now.AddDate(0, 0, -2))

	assert.Empty(t, DueReminders([]models.Bill{overdue}, now))
}
