package service

import (
	"context"
	"time"

	"powerbill/internal/models"
)

// TaxReportService aggregates a user's bills into monthly tax reports.
type TaxReportService struct {
	bills BillRepository
}

// NewTaxReportService builds service.
func NewTaxReportService(bills BillRepository) *TaxReportService {
	return &TaxReportService{bills: bills}
}

// ReportsForYear returns one report per non-empty month of the year, in
// month order.
func (s *TaxReportService) ReportsForYear(ctx context.Context, userID int64, year int) ([]models.TaxReport, error) {
	bills, err := s.bills.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return AggregateYear(bills, year), nil
}

// ReportsForMonth returns at most one report for the given (year, month).
func (s *TaxReportService) ReportsForMonth(ctx context.Context, userID int64, year int, month time.Month) ([]models.TaxReport, error) {
	bills, err := s.bills.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var reports []models.TaxReport
	if report, ok := AggregateMonth(bills, year, month); ok {
		reports = append(reports, report)
	}
	return reports, nil
}

// AggregateYear aggregates bills month by month for the given year,
// skipping months without bills. Input order does not affect the result.
func AggregateYear(bills []models.Bill, year int) []models.TaxReport {
	var reports []models.TaxReport
	for month := time.January; month <= time.December; month++ {
		if report, ok := AggregateMonth(bills, year, month); ok {
			reports = append(reports, report)
		}
	}
	return reports
}

// AggregateMonth sums units, amount, tax and revenue over the bills
// generated in (year, month). ok is false when no bill matches.
func AggregateMonth(bills []models.Bill, year int, month time.Month) (models.TaxReport, bool) {
	report := models.TaxReport{Year: year, Month: month}
	for _, bill := range bills {
		if bill.GeneratedDate.Year() != year || bill.GeneratedDate.Month() != month {
			continue
		}
		report.TotalBills++
		report.TotalUnits += bill.Units
		report.TotalAmount += bill.Amount
		report.TotalTax += bill.Tax
		report.TotalRevenue += bill.TotalAmount
	}
	return report, report.TotalBills > 0
}
