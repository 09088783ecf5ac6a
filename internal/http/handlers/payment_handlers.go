package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"powerbill/internal/http/middleware"
	"powerbill/internal/service"
)

// NewPayHandler handles POST /payments.
func NewPayHandler(paymentService *service.PaymentService) http.HandlerFunc {
	type request struct {
		BillID int64 `json:"bill_id"`
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

		bill, err := paymentService.Pay(r.Context(), userID, req.BillID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrBillNotFound):
				writeError(w, http.StatusNotFound, "bill not found")
			case errors.Is(err, service.ErrBillAlreadyPaid):
				writeError(w, http.StatusConflict, "bill is already paid")
			default:
				writeError(w, http.StatusInternalServerError, "payment failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, bill)
	}
}
