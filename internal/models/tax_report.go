package models

import "time"

// TaxReport is a derived monthly aggregate over a user's bills. It is
// computed on demand and never persisted.
type TaxReport struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	TotalBills   int        `json:"total_bills"`
	TotalUnits   int64      `json:"total_units"`
	TotalAmount  float64    `json:"total_amount"`
	TotalTax     float64    `json:"total_tax"`
	TotalRevenue float64    `json:"total_revenue"`
}
