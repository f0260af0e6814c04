// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/oliverandrich/account-service/internal/services/account"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for the account lifecycle endpoints. Flow
// errors are mapped to generic client-facing messages here; internal detail
// only ever reaches the log.
type AuthHandlers struct {
	service     *account.Service
	frontendURL string
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(service *account.Service, frontendURL string) *AuthHandlers {
	return &AuthHandlers{
		service:     service,
		frontendURL: frontendURL,
	}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register handles POST /register.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	_, err := h.service.Register(c.Request().Context(), account.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "Email is already registered. Please use another email.",
			})
		}
		slog.Error("registration_error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Error registering user",
		})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Registration successful! Please check your email to activate your account.",
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	_, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "User not found"})
		case errors.Is(err, account.ErrInvalidPassword):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid password"})
		case errors.Is(err, account.ErrNotActivated):
			return c.JSON(http.StatusForbidden, map[string]string{
				"message": "Account not activated. Please check your email.",
			})
		default:
			slog.Error("login_error", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error logging in"})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Login successful"})
}

// Activate handles GET /activate/:token. On success the client is redirected
// to the front-end login page with the activated email pre-filled.
func (h *AuthHandlers) Activate(c echo.Context) error {
	email, err := h.service.Activate(c.Request().Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidToken):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid activation token."})
		case errors.Is(err, account.ErrActivationFailed):
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"message": "Activation failed: Unable to update user status.",
			})
		default:
			slog.Error("activation_error", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error activating account."})
		}
	}

	redirect := fmt.Sprintf("%s/login?email=%s", h.frontendURL, url.QueryEscape(email))
	return c.Redirect(http.StatusFound, redirect)
}
