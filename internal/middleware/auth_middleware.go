package middleware

import (
	"context"
	"strconv"
	"strings"

	"payvance/domain"
	"payvance/pkg/response"
	"payvance/pkg/utils"

	"github.com/labstack/echo/v4"
)

// UserLoader resolves the authenticated user from storage so stale or
// blocked accounts are rejected even with a valid token.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// Auth validates the bearer token, loads the user, and stashes both on the
// request context.
func Auth(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(401, "missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(401, "invalid authorization format")
			}

			claims, err := utils.ParseJWT(secret, tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(401, "invalid token")
			}

			userID, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				return echo.NewHTTPError(401, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), uint(userID))
			if err != nil {
				return echo.NewHTTPError(401, "user not found")
			}

			if user.IsBlocked {
				return echo.NewHTTPError(403, "user is blocked")
			}

			c.Set("user_id", user.ID)
			c.Set("role", string(user.Role))
			c.Set("user", user)

			return next(c)
		}
	}
}

// RequireRoles gates a route to the given roles. Must run after Auth.
func RequireRoles(roles ...domain.UserRole) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[string(role)] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok {
				return echo.NewHTTPError(401, "not authenticated")
			}

			if !allowed[role] {
				return echo.NewHTTPError(403, "not authorized")
			}

			return next(c)
		}
	}
}

// ErrorHandler is the single seam converting any raised error into the
// uniform {status:"error", message} envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := 500
	message := "internal server error"

	if appErr, ok := domain.AsAppError(err); ok {
		code = appErr.Code
		message = appErr.Message
	} else if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code == 500 {
		c.Logger().Error(err)
	}

	if writeErr := c.JSON(code, response.Error(message)); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
