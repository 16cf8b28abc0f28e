package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/traintrack/traintrack/pkg"

	log "github.com/sirupsen/logrus"
)

// ErrStoreUnavailable marks failures where the database could not be
// reached at all, mapped to 503 at the HTTP boundary.
var ErrStoreUnavailable = errors.New("store unavailable")

// Error is the HTTP-facing error type. The wrapped cause is logged
// server-side and never echoed to the client.
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func Validation(details map[string]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: details,
	}
}

func BadRequest(message string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

func Authentication() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: "Authentication required",
	}
}

func InvalidCredentials() *Error {
	// one message for unknown user and wrong password, to avoid a
	// user-enumeration signal
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: "Invalid username or password",
	}
}

func Authorization(message string) *Error {
	return &Error{
		Status:  http.StatusForbidden,
		Message: message,
	}
}

func NotFound(resource string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Message: resource + " not found",
	}
}

func Conflict(message string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Message: message,
	}
}

func Unavailable(cause error) *Error {
	return &Error{
		Status:  http.StatusServiceUnavailable,
		Message: "Service temporarily unavailable",
		cause:   cause,
	}
}

func Internal(cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		cause:   cause,
	}
}

// FromDBError maps a data-layer error to the nearest taxonomy bucket.
func FromDBError(err error) *Error {
	switch {
	case errors.Is(err, ErrStoreUnavailable), pkg.IsConnectionError(err):
		return Unavailable(err)
	case pkg.IsUniqueViolationError(err):
		return Conflict("Resource already exists")
	default:
		return Internal(err)
	}
}

// Write writes the error as the standard {error, details?} JSON body. Plain
// errors are collapsed into a generic 500; causes are logged, not echoed.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		log.Errorf("request failed [%d]: %s", apiErr.Status, apiErr.Error())
	}

	body, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		log.Errorf("marshal error response: %s", marshalErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, body, apiErr.Status)
}
