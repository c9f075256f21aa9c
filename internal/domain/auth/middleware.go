package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key holding the acting user's id.
const userIDKey = "user_id"

// Middleware resolves the acting user from the Authorization header and
// stores the id in the request context
func Middleware(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the acting user's id resolved by Middleware
func UserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(userIDKey).(uuid.UUID)
	return id
}
