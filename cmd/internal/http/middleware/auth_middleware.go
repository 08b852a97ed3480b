package middleware

import (
	"context"
	"net/http"

	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}

type AuthMiddlewareConfig struct {
	UserRepo UserRepository
	Sessions *utils.SessionTokens
}

// NewAuthMiddleware creates the handler with dependencies injected
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData, err := cfg.Sessions.ParseTokenDataCtx(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			user, err := cfg.UserRepo.FindByID(c.Request().Context(), tokenData.Sub)
			if err != nil {
				log.Errorf("failed to load session user %d: %v", tokenData.Sub, err)
				return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
			}

			// Swept or taken over since the token was issued
			if user == nil || user.Username != tokenData.Username {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			if !user.IsVerified {
				return c.JSON(http.StatusForbidden, apierror.UserNotVerifiedError)
			}

			utils.SetSessionUser(c, user)
			return next(c)
		}
	}
}
