package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"powerbill/internal/models"
)

// WriteCSV renders the yearly tax report as CSV: one row per month plus a
// totals row.
func WriteCSV(w io.Writer, reports []models.TaxReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Month", "Bills", "Units", "Amount", "Tax", "Revenue"}); err != nil {
		return err
	}

	var totals models.TaxReport
	for _, r := range reports {
		row := []string{
			r.Month.String()[:3],
			fmt.Sprintf("%d", r.TotalBills),
			fmt.Sprintf("%d", r.TotalUnits),
			fmt.Sprintf("%.2f", r.TotalAmount),
			fmt.Sprintf("%.2f", r.TotalTax),
			fmt.Sprintf("%.2f", r.TotalRevenue),
		}
		if err := writer.Write(row); err != nil {
			return err
		}

		totals.TotalBills += r.TotalBills
		totals.TotalUnits += r.TotalUnits
		totals.TotalAmount += r.TotalAmount
		totals.TotalTax += r.TotalTax
		totals.TotalRevenue += r.TotalRevenue
	}

	if err := writer.Write([]string{
		"Total",
		fmt.Sprintf("%d", totals.TotalBills),
		fmt.Sprintf("%d", totals.TotalUnits),
		fmt.Sprintf("%.2f", totals.TotalAmount),
		fmt.Sprintf("%.2f", totals.TotalTax),
		fmt.Sprintf("%.2f", totals.TotalRevenue),
	}); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// Filename returns the download name for a yearly export.
func Filename(year int) string {
	return fmt.Sprintf("tax_report_%d.csv", year)
}
