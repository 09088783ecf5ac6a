package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"powerbill/internal/http/middleware"
	"powerbill/internal/service"
)

// NewProfileHandler handles GET /profile.
func NewProfileHandler(authService *service.AuthService) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

// NewUpdateProfileHandler handles PUT /profile.
func NewUpdateProfileHandler(authService *service.AuthService) http.HandlerFunc {
	type request struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
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

		user, err := authService.UpdateProfile(r.Context(), userID, req.Name, req.Address, req.Phone)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

// NewChangePasswordHandler handles POST /profile/password.
func NewChangePasswordHandler(authService *service.AuthService) http.HandlerFunc {
	type request struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
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

		if err := authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				writeError(w, http.StatusUnauthorized, "current password is incorrect")
			case errors.Is(err, service.ErrPasswordTooShort):
				writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			default:
				writeError(w, http.StatusInternalServerError, "failed to change password")
			}
			return
		}

		writeJSON(w, http.StatusNoContent, nil)
	}
}
