package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"powerbill/internal/http/middleware"
	"powerbill/internal/models"
	"powerbill/internal/service"
)

type userResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	MeterNo string `json:"meter_no"`
	Phone   string `json:"phone"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Address: user.Address,
		MeterNo: user.MeterNo,
		Phone:   user.Phone,
	}
}

// NewSignupHandler handles POST /auth/signup.
func NewSignupHandler(authService *service.AuthService) http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Address  string `json:"address"`
		MeterNo  string `json:"meter_no"`
		Phone    string `json:"phone"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := authService.Signup(r.Context(), service.SignupInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Address:  req.Address,
			MeterNo:  req.MeterNo,
			Phone:    req.Phone,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrDuplicateUser):
				writeError(w, http.StatusConflict, "email or meter number already registered")
			case errors.Is(err, service.ErrPasswordTooShort):
				writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(user))
	}
}

// NewLoginHandler handles POST /auth/login. The identifier may be an email
// or a meter number.
func NewLoginHandler(authService *service.AuthService) http.HandlerFunc {
	type request struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	type response struct {
		Token     string       `json:"token"`
		TokenType string       `json:"token_type"`
		User      userResponse `json:"user"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		req.Identifier = strings.TrimSpace(req.Identifier)
		if req.Identifier == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "identifier and password are required")
			return
		}

		token, user, err := authService.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to login")
			return
		}

		writeJSON(w, http.StatusOK, response{
			Token:     token,
			TokenType: "Bearer",
			User:      toUserResponse(user),
		})
	}
}

// NewLogoutHandler handles POST /auth/logout.
func NewLogoutHandler(authService *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := middleware.TokenFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if err := authService.Logout(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to logout")
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}
