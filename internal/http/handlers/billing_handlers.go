package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"powerbill/internal/http/middleware"
	"powerbill/internal/service"
)

// NewGenerateBillHandler handles POST /bills.
func NewGenerateBillHandler(billingService *service.BillingService) http.HandlerFunc {
	type request struct {
		Units int64 `json:"units"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		bill, err := billingService.IssueBill(r.Context(), userID, req.Units)
		if err != nil {
			if errors.Is(err, service.ErrInvalidUnits) {
				writeError(w, http.StatusBadRequest, "units must be a positive number")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to generate bill")
			return
		}

		writeJSON(w, http.StatusCreated, bill)
	}
}

// NewListBillsHandler handles GET /bills.
func NewListBillsHandler(billingService *service.BillingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		bills, err := billingService.BillsForUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list bills")
			return
		}

		writeJSON(w, http.StatusOK, bills)
	}
}
