package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"powerbill/internal/models"
)

var (
	// ErrBillNotFound represents missing bill rows.
	ErrBillNotFound = errors.New("bill not found")
	// ErrBillAlreadyPaid is returned when marking a paid bill paid again.
	ErrBillAlreadyPaid = errors.New("bill already paid")
)

const billColumns = `id, user_id, units, amount, tax, total_amount, status, generated_date, due_date, paid_date, payment_id`

// BillRepository persists bills. Bills are append-only except for the
// single Unpaid -> Paid transition in MarkPaid.
type BillRepository struct {
	db *sql.DB
}

// NewBillRepository returns repository instance.
func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Append inserts a new bill.
func (r *BillRepository) Append(ctx context.Context, bill *models.Bill) error {
	const query = `
		INSERT INTO bills (user_id, units, amount, tax, total_amount, status, generated_date, due_date, paid_date, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		bill.UserID,
		bill.Units,
		bill.Amount,
		bill.Tax,
		bill.TotalAmount,
		bill.Status,
		bill.GeneratedDate,
		bill.DueDate,
		bill.PaidDate,
		bill.PaymentID,
	).Scan(&bill.ID)
}

// GetByID fetches a single bill.
func (r *BillRepository) GetByID(ctx context.Context, id int64) (*models.Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
		LIMIT 1
	`
	return scanBill(r.db.QueryRowContext(ctx, query, id))
}

// ListByUser returns all bills for a user, newest first.
func (r *BillRepository) ListByUser(ctx context.Context, userID int64) ([]models.Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1
		ORDER BY generated_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBills(rows)
}

// FindMonthly returns the bill generated for the given user in the given
// calendar month, or ErrBillNotFound.
func (r *BillRepository) FindMonthly(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM generated_date) = $2
		  AND EXTRACT(MONTH FROM generated_date) = $3
		ORDER BY generated_date
		LIMIT 1
	`
	return scanBill(r.db.QueryRowContext(ctx, query, userID, year, int(month)))
}

// MarkPaid transitions a bill from Unpaid to Paid exactly once, stamping the
// payment id and paid date. A second attempt returns ErrBillAlreadyPaid
// without touching the row.
func (r *BillRepository) MarkPaid(ctx context.Context, billID int64, paymentID string, paidAt time.Time) (*models.Bill, error) {
	const query = `
		UPDATE bills
		SET status = $2, paid_date = $3, payment_id = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + billColumns + `
	`
	bill, err := scanBill(r.db.QueryRowContext(ctx, query,
		billID,
		models.BillStatusPaid,
		paidAt,
		paymentID,
		models.BillStatusUnpaid,
	))
	if err == nil {
		return bill, nil
	}
	if !errors.Is(err, ErrBillNotFound) {
		return nil, err
	}

	// No unpaid row matched: distinguish unknown bill from repeated payment.
	existing, getErr := r.GetByID(ctx, billID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == models.BillStatusPaid {
		return nil, ErrBillAlreadyPaid
	}
	return nil, err
}

func scanBill(row *sql.Row) (*models.Bill, error) {
	var (
		b         models.Bill
		paidDate  sql.NullTime
		paymentID sql.NullString
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Units,
		&b.Amount,
		&b.Tax,
		&b.TotalAmount,
		&b.Status,
		&b.GeneratedDate,
		&b.DueDate,
		&paidDate,
		&paymentID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	if paidDate.Valid {
		b.PaidDate = &paidDate.Time
	}
	if paymentID.Valid {
		b.PaymentID = &paymentID.String
	}
	return &b, nil
}

func collectBills(rows *sql.Rows) ([]models.Bill, error) {
	var bills []models.Bill
	for rows.Next() {
		var (
			b         models.Bill
			paidDate  sql.NullTime
			paymentID sql.NullString
		)
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Units,
			&b.Amount,
			&b.Tax,
			&b.TotalAmount,
			&b.Status,
			&b.GeneratedDate,
			&b.DueDate,
			&paidDate,
			&paymentID,
		); err != nil {
			return nil, err
		}
		if paidDate.Valid {
			b.PaidDate = &paidDate.Time
		}
		if paymentID.Valid {
			b.PaymentID = &paymentID.String
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}
