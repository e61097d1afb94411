package handler

import (
	"encoding/json"
	"go-todo-api/common"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/service"
	"net/http"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user account and opens the first session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201 {object} service.AuthResponse
// @Failure      400 {object} common.AppError
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("email", req.Email).Info("Register request received")

	resp, err := h.service.Register(req)
	if err != nil {
		if err == service.ErrDuplicateEmail {
			return common.NewAppError(http.StatusBadRequest, "Email already used", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not register user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)

	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and opens a new session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200 {object} service.AuthResponse
// @Failure      400 {object} common.AppError
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("email", req.Email).Info("Login request received")

	resp, err := h.service.Login(req)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return common.NewAppError(http.StatusBadRequest, "Invalid credentials", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)

	return nil
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new access/refresh pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh payload"
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return common.NewAppError(http.StatusUnauthorized, "No refresh token provided", nil)
	}

	pair, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		switch err {
		case service.ErrMissingToken:
			return common.NewAppError(http.StatusUnauthorized, "No refresh token provided", nil)
		case service.ErrInvalidToken:
			return common.NewAppError(http.StatusUnauthorized, "Invalid refresh token", nil)
		case service.ErrUserNotFound:
			return common.NewAppError(http.StatusUnauthorized, "Invalid refresh token", nil)
		case service.ErrTokenNotRecognized:
			return common.NewAppError(http.StatusUnauthorized, "Refresh token not recognized (maybe logged out)", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not refresh tokens", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)

	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes a refresh token; always succeeds
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LogoutRequest true "Logout payload"
// @Success      200 {object} map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LogoutRequest
	// A malformed body is treated like a missing token; logout still succeeds.
	_ = json.NewDecoder(r.Body).Decode(&req)

	h.service.Logout(req.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})

	return nil
}
