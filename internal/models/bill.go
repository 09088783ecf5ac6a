package models

import "time"

// Bill status values.
const (
	BillStatusUnpaid = "Unpaid"
	BillStatusPaid   = "Paid"
)

// Bill is one billing-period record for a user. Bills are append-only; the
// single permitted mutation is the Unpaid -> Paid transition which stamps
// PaidDate and PaymentID.
type Bill struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	Units         int64      `db:"units" json:"units"`
	Amount        float64    `db:"amount" json:"amount"`
	Tax           float64    `db:"tax" json:"tax"`
	TotalAmount   float64    `db:"total_amount" json:"total_amount"`
	Status        string     `db:"status" json:"status"`
	GeneratedDate time.Time  `db:"generated_date" json:"generated_date"`
	DueDate       time.Time  `db:"due_date" json:"due_date"`
	PaidDate      *time.Time `db:"paid_date" json:"paid_date,omitempty"`
	PaymentID     *string    `db:"payment_id" json:"payment_id,omitempty"`
}
