package handler

import (
	"errors"
	"fmt"
	"net/http"

	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// HTTPErrorHandler renders errors that escape the handlers (unknown routes,
// wrong methods, body limits, recovered panics) with the usual error body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := toErrorResponse(err, c)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code())
	} else {
		err = c.JSON(resp.Code(), resp)
	}

	if err != nil {
		log.Errorf("failed to write error response: %v", err)
	}
}

func toErrorResponse(err error, c echo.Context) *apierror.APIError {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		log.Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		return apierror.InternalServerError
	}

	if he.Code >= http.StatusInternalServerError {
		log.Errorf("request to %s %s failed: %v", c.Request().Method, c.Path(), err)
		return apierror.InternalServerError
	}

	msg := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		msg = m
	} else if he.Message != nil {
		msg = fmt.Sprint(he.Message)
	}
	return apierror.NewSimple(he.Code, msg)
}
