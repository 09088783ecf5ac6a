package notify

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"powerbill/internal/models"
)

// dueWindowDays bounds how far ahead a reminder fires.
const dueWindowDays = 3

// BillLister returns a user's bill history.
type BillLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Bill, error)
}

// DueReminderPayload is the notification pushed for an upcoming due bill.
type DueReminderPayload struct {
	Type         string    `json:"type"`
	BillID       int64     `json:"bill_id"`
	TotalAmount  float64   `json:"total_amount"`
	DueDate      time.Time `json:"due_date"`
	DaysUntilDue int       `json:"days_until_due"`
}

// Reminder periodically scans connected users' unpaid bills and pushes a
// reminder for any bill due within the next three days.
type Reminder struct {
	hub      *Hub
	bills    BillLister
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminder builds the reminder loop.
func NewReminder(hub *Hub, bills BillLister, interval time.Duration, logger *zap.Logger) *Reminder {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reminder{
		hub:      hub,
		bills:    bills,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run checks due bills on every interval tick until the context is
// cancelled.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkDueBills(ctx)
		}
	}
}

func (r *Reminder) checkDueBills(ctx context.Context) {
	for _, userID := range r.hub.UserIDs() {
		bills, err := r.bills.ListByUser(ctx, userID)
		if err != nil {
			r.logger.Warn("failed to list bills for reminders",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		for _, payload := range DueReminders(bills, r.now()) {
			r.hub.Send(userID, payload)
		}
	}
}

// DueReminders returns reminder payloads for unpaid bills due within the
// reminder window of now.
func DueReminders(bills []models.Bill, now time.Time) []DueReminderPayload {
	var payloads []DueReminderPayload
	for _, bill := range bills {
		if bill.Status != models.BillStatusUnpaid {
			continue
		}
		days := int(math.Ceil(bill.DueDate.Sub(now).Hours() / 24))
		if days < 0 || days > dueWindowDays {
			continue
		}
		payloads = append(payloads, DueReminderPayload{
			Type:         "bill.due",
			BillID:       bill.ID,
			TotalAmount:  bill.TotalAmount,
			DueDate:      bill.DueDate,
			DaysUntilDue: days,
		})
	}
	return payloads
}
