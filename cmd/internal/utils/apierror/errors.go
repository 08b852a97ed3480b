package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Status  int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

var (
	MalformedBodyError  = NewSimple(400, "Malformed JSON body")
	InternalServerError = NewSimple(500, "Internal server error")
	NotFoundError       = NewSimple(404, "Resource not found")
	UnauthorizedError   = NewSimple(401, "Not authenticated")

	/*
	 * Registration and verification
	 */
	UsernameTakenError          = NewSimple(400, "Username is already taken")
	EmailAlreadyRegisteredError = NewSimple(400, "User already exists with this email")
	SignUpFailedError           = NewSimple(500, "Error registering user")
	UserNotFoundError           = NewSimple(404, "User not found")
	UserAlreadyVerifiedError    = NewSimple(400, "User is already verified")
	CodeMismatchError           = NewSimple(400, "Incorrect verification code")
	CodeExpiredError            = NewSimple(400, "Verification code has expired, please sign up again")

	/*
	 * Sessions
	 */
	InvalidAuthTokenError    = NewSimple(401, "Not authenticated")
	CredentialsMismatchError = NewSimple(401, "Incorrect username or password")
	UserNotVerifiedError     = NewSimple(403, "Please verify your account before signing in")

	/*
	 * Notes
	 */
	NoteNotFoundError  = NewSimple(404, "Note not found or already deleted")
	NoteOwnershipError = NewSimple(403, "Notes can only be posted to your own collection")
	MissingConnIDError = NewSimple(400, "Missing connection id")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "len":
			problems[field] = append(problems[field], "Value must have exactly "+fe.Param()+" characters")
		case "numeric":
			problems[field] = append(problems[field], "Value must contain only digits")
		case "hasupper":
			problems[field] = append(problems[field], "Value must have at least one uppercase character")
		case "haslower":
			problems[field] = append(problems[field], "Value must have at least one lowercase character")
		case "hasdigit":
			problems[field] = append(problems[field], "Value must have at least one number")
		case "nospaces":
			problems[field] = append(problems[field], "Value must not contain whitespaces")
		case "username":
			problems[field] = append(problems[field], "Value must only contain letters, numbers and underscores")
		case "email":
			problems[field] = append(problems[field], "Value must be a valid email address")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Message: "Invalid request",
		Errors:  problems,
		Status:  http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}

// NewNotificationError reports a sign-up whose user record was persisted
// but whose verification message could not be delivered.
func NewNotificationError(cause error) *APIError {
	return NewSimple(http.StatusInternalServerError, "Failed to send verification email: %v", cause)
}

// Validation converts the result of a failed validator.Struct call into a response.
// Anything other than field errors means the validator itself was misused.
func Validation(err error) ErrorResponse {
	if se := FromValidationError(err); se != nil {
		return se
	}
	return InternalServerError
}
