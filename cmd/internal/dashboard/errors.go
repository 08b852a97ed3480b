package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("not authenticated")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrServer         = errors.New("server error")
	ErrInvalidNote    = errors.New("invalid note")
	ErrUnknownNote    = errors.New("note is not on the dashboard")
	ErrNotSignedIn    = errors.New("no username on the dashboard")
	ErrDeletePending  = errors.New("note is already being deleted")
	errUnexpectedCode = errors.New("unexpected status")
)

// errorBody mirrors the server's error envelope.
type errorBody struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (e *errorBody) String() string {
	if len(e.Errors) == 0 {
		return e.Message
	}

	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Errors[field], ", "))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func mapHTTPError(resp *resty.Response) error {
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	msg := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorBody); ok && body.Message != "" {
		msg = body.String()
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, msg)
	default:
		return fmt.Errorf("%w %d: %s", errUnexpectedCode, code, msg)
	}
}
