package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gavin100305/Auraflix-sub000/internal/common"
	"github.com/gavin100305/Auraflix-sub000/internal/services"
)

// BusinessUserContextKey is where the authenticated record is stored on the
// echo context.
const BusinessUserContextKey = "business_user"

// JWTMiddleware resolves the bearer token to a business account and attaches
// it to the request. Every failure mode collapses to a plain 401.
func JWTMiddleware(authService services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization token required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			user, err := authService.Authenticate(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, invalid token")
			}

			c.Set(BusinessUserContextKey, user)
			c.SetRequest(c.Request().WithContext(common.WithBusinessID(c.Request().Context(), user.ID)))

			return next(c)
		}
	}
}
