package utils

import (
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const sessionUserKey = "session_user"

// SetSessionUser attaches the authenticated account to the request.
func SetSessionUser(c echo.Context, user *entity.User) {
	c.Set(sessionUserKey, user)
}

// SessionUser returns the account attached by the auth middleware.
// Routes mounted without it get an UnauthorizedError.
func SessionUser(c echo.Context) (*entity.User, apierror.ErrorResponse) {
	switch val := c.Get(sessionUserKey).(type) {
	case *entity.User:
		if val != nil {
			return val, nil
		}
	case nil:
	default:
		log.Errorf("unexpected %T stored as session user on %s", val, c.Path())
		return nil, apierror.InternalServerError
	}

	log.Warnf("route %s read the session user without the auth middleware", c.Path())
	return nil, apierror.UnauthorizedError
}
