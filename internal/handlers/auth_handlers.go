package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gavin100305/Auraflix-sub000/internal/middleware"
	"github.com/gavin100305/Auraflix-sub000/internal/models"
	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
	"github.com/gavin100305/Auraflix-sub000/internal/services"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// AuthResponse is the envelope both auth endpoints return.
type AuthResponse struct {
	Token        string               `json:"token"`
	BusinessUser *models.BusinessUser `json:"businessUser"`
	Suggestions  []models.Influencer  `json:"suggestions"`
}

// Register handles business registration
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.authService.Register(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusBadRequest, "Business already registered")
		case errors.Is(err, services.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Token:        result.Token.AccessToken,
		BusinessUser: result.BusinessUser,
		Suggestions:  result.Suggestions,
	})
}

// Login handles business login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Same status and message for unknown email and wrong password.
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:        result.Token.AccessToken,
		BusinessUser: result.BusinessUser,
		Suggestions:  result.Suggestions,
	})
}

// Me handles getting the current business profile
func (h *AuthHandlers) Me(c echo.Context) error {
	user, ok := c.Get(middleware.BusinessUserContextKey).(*models.BusinessUser)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe handles editing the current business profile
func (h *AuthHandlers) UpdateMe(c echo.Context) error {
	user, ok := c.Get(middleware.BusinessUserContextKey).(*models.BusinessUser)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req services.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	updated, err := h.authService.UpdateProfile(c.Request().Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, updated)
}
