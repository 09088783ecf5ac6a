package handlers

import (
	"net/http"
	"strconv"
	"time"

	"powerbill/internal/http/middleware"
	"powerbill/internal/report"
	"powerbill/internal/service"
)

// NewTaxReportHandler handles GET /reports/tax?year=YYYY[&month=M].
func NewTaxReportHandler(taxService *service.TaxReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		year, ok := parseYear(w, r)
		if !ok {
			return
		}

		if monthStr := r.URL.Query().Get("month"); monthStr != "" {
			month, err := strconv.Atoi(monthStr)
			if err != nil || month < 1 || month > 12 {
				writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
				return
			}
			reports, err := taxService.ReportsForMonth(r.Context(), userID, year, time.Month(month))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to build tax report")
				return
			}
			writeJSON(w, http.StatusOK, reports)
			return
		}

		reports, err := taxService.ReportsForYear(r.Context(), userID, year)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to build tax report")
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// NewExportTaxReportHandler handles GET /reports/tax/export?year=YYYY and
// streams the yearly report as a CSV download.
func NewExportTaxReportHandler(taxService *service.TaxReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		year, ok := parseYear(w, r)
		if !ok {
			return
		}

		reports, err := taxService.ReportsForYear(r.Context(), userID, year)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to build tax report")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename(year))
		// Headers are already written; a mid-stream failure cannot be
		// reported to the client.
		_ = report.WriteCSV(w, reports)
	}
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := r.URL.Query().Get("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, http.StatusBadRequest, "year is required")
		return 0, false
	}
	return year, true
}
