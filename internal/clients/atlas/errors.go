package atlas

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"
)

// Typed errors used by higher layers to reason about Atlas failures.
var (
	ErrMissingCredentials = errors.New("API keys not found. Please set ATLAS_PUBLIC_KEY and ATLAS_PRIVATE_KEY in your environment or .env file")

	ErrAPI          = errors.New("atlas: api error")
	ErrTransport    = errors.New("atlas: transport failure")
	ErrNotFound     = errors.New("atlas: not found")
	ErrConflict     = errors.New("atlas: conflict")
	ErrUnauthorized = errors.New("atlas: unauthorized")
)

// UserAlreadyExistsCode is the Atlas error code for a duplicate database user.
const UserAlreadyExistsCode = "USER_ALREADY_EXISTS"

// Error is a failed Atlas exchange. StatusCode is zero when no HTTP response
// was received.
type Error struct {
	Op         string
	StatusCode int
	ErrorCode  string
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		if e.Err == nil {
			return e.Op
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s. Status code: %d, Response: %s", e.Op, e.StatusCode, e.Detail)
}

// Unwrap exposes the classification sentinels and the SDK error.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.StatusCode == 0 {
		errs = append(errs, ErrTransport)
	} else {
		errs = append(errs, ErrAPI)
		switch e.StatusCode {
		case http.StatusNotFound:
			errs = append(errs, ErrNotFound)
		case http.StatusConflict:
			errs = append(errs, ErrConflict)
		case http.StatusUnauthorized, http.StatusForbidden:
			errs = append(errs, ErrUnauthorized)
		}
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps an SDK result onto the success/ApiError/TransportFailure
// contract. Success is decided by the status code alone.
func classify(op string, resp *http.Response, err error) error {
	if resp == nil {
		if err == nil {
			return nil
		}
		return &Error{Op: op, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	out := &Error{Op: op, StatusCode: resp.StatusCode, Err: err}
	if apiErr, ok := admin.AsError(err); ok {
		out.ErrorCode = apiErr.GetErrorCode()
	}
	out.Detail = responseDetail(err)
	if out.Detail == "" {
		out.Detail = http.StatusText(resp.StatusCode)
	}
	return out
}

// responseDetail prefers the raw response body, which is what Atlas users
// recognise from the API documentation.
func responseDetail(err error) string {
	if err == nil {
		return ""
	}
	var openapiErr *admin.GenericOpenAPIError
	if errors.As(err, &openapiErr) {
		if body := strings.TrimSpace(string(openapiErr.Body())); body != "" {
			return body
		}
	}
	if apiErr, ok := admin.AsError(err); ok && apiErr.GetDetail() != "" {
		return apiErr.GetDetail()
	}
	return err.Error()
}

// IsUserAlreadyExists reports whether err is the 409 Atlas returns for a
// duplicate database user.
func IsUserAlreadyExists(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.StatusCode != http.StatusConflict {
		return false
	}
	return e.ErrorCode == UserAlreadyExistsCode || strings.Contains(e.Detail, UserAlreadyExistsCode)
}

// IsTransport reports whether no HTTP response was received.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// IsAPIError reports whether Atlas answered with a non-2xx status.
func IsAPIError(err error) bool { return errors.Is(err, ErrAPI) }

// IsNotFound reports whether err represents a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err represents a conflict condition.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsUnauthorized reports whether err represents an authentication/authorization error.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// StatusCode returns the HTTP status of a failed exchange, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
