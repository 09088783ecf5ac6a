package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"powerbill/internal/http/middleware"
	"powerbill/internal/service"
)

// NewRecordReadingHandler handles POST /meter/readings. When the body
// carries no reading, one is fetched from the meter feed; either way the
// reading is appended to the caller's meter log.
func NewRecordReadingHandler(authService *service.AuthService, meterService *service.MeterService) http.HandlerFunc {
	type request struct {
		Reading *int64 `json:"reading"`
	}
	type response struct {
		MeterNo  string `json:"meter_no"`
		Previous int64  `json:"previous"`
		Reading  int64  `json:"reading"`
		Units    int64  `json:"units"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := authService.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}

		previous, err := meterService.LastReading(r.Context(), user.MeterNo)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read meter log")
			return
		}

		var reading int64
		if req.Reading != nil {
			reading = *req.Reading
		} else {
			reading, err = meterService.NextReading(r.Context(), user.MeterNo)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to fetch meter reading")
				return
			}
		}

		if err := meterService.RecordReading(r.Context(), user.MeterNo, reading); err != nil {
			switch {
			case errors.Is(err, service.ErrNegativeReading):
				writeError(w, http.StatusBadRequest, "meter reading cannot be negative")
			case errors.Is(err, service.ErrNonMonotonicReading):
				writeError(w, http.StatusConflict, "new reading must be greater than the last reading")
			default:
				writeError(w, http.StatusInternalServerError, "failed to record reading")
			}
			return
		}

		writeJSON(w, http.StatusCreated, response{
			MeterNo:  user.MeterNo,
			Previous: previous,
			Reading:  reading,
			Units:    reading - previous,
		})
	}
}

// NewLastReadingHandler handles GET /meter/readings/last.
func NewLastReadingHandler(authService *service.AuthService, meterService *service.MeterService) http.HandlerFunc {
	type response struct {
		MeterNo string `json:"meter_no"`
		Reading int64  `json:"reading"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := authService.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}

		reading, err := meterService.LastReading(r.Context(), user.MeterNo)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read meter log")
			return
		}

		writeJSON(w, http.StatusOK, response{MeterNo: user.MeterNo, Reading: reading})
	}
}
