// Package cli holds presentation helpers shared by commands.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	atlassvc "github.com/teabranch/atlas-provision/internal/services/atlas"
	"github.com/teabranch/atlas-provision/internal/types"
	"github.com/teabranch/atlas-provision/internal/validation"
)

// Exit codes returned by the binary.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ErrorFormatter provides user-friendly error formatting
type ErrorFormatter struct {
	verbose bool
}

// NewErrorFormatter creates a new error formatter
func NewErrorFormatter(verbose bool) *ErrorFormatter {
	return &ErrorFormatter{verbose: verbose}
}

// Format returns the error message followed by a hint when one applies.
// The message itself is never rewritten so its operation prefix survives.
func (e *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if hint := e.Hint(err); hint != "" {
		return msg + "\nHint: " + hint
	}
	return msg
}

// Hint suggests a next step for err, or "".
func (e *ErrorFormatter) Hint(err error) string {
	switch {
	case errors.Is(err, atlasclient.ErrMissingCredentials):
		return "Set ATLAS_PUBLIC_KEY and ATLAS_PRIVATE_KEY, pass --pub-key and --api-key, or add them to a .env file."
	case errors.Is(err, validation.ErrInvalidInput):
		return "Check the command arguments. Use --help for the accepted values."
	case errors.Is(err, atlassvc.ErrNoOrganizationAvailable):
		return "The API key has no organization access. Pass --org-id or grant the key an organization role."
	case errors.Is(err, atlassvc.ErrProvisioningTimedOut):
		return "The cluster may still finish provisioning. Check the Atlas UI before retrying, or raise --poll-interval."
	case atlasclient.IsTransport(err):
		if e.verbose {
			return "No response from Atlas. Check network access to cloud.mongodb.com and proxy settings, or raise --timeout."
		}
		return "No response from Atlas. Check your network connection or raise --timeout."
	}
	return e.formatHTTPError(atlasclient.StatusCode(err))
}

// formatHTTPError gives hints based on HTTP status codes
func (e *ErrorFormatter) formatHTTPError(statusCode int) string {
	switch statusCode {
	case 0:
		return ""
	case http.StatusBadRequest:
		return "Atlas rejected the request parameters. Use --verbose for more details."
	case http.StatusUnauthorized:
		return "Authentication failed. Please check your API key pair."
	case http.StatusForbidden:
		return "Access denied. Check the API key's organization and project roles and its access list."
	case http.StatusNotFound:
		return "Resource not found. Verify the project ID and cluster name."
	case http.StatusConflict:
		return "The resource already exists or is in a conflicting state. Choose another name."
	case http.StatusPaymentRequired:
		return "Paid clusters need a payment method on the organization."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Wait before making more requests."
	default:
		if statusCode >= 500 {
			return "Atlas server error. Please try again later."
		}
		return fmt.Sprintf("Request failed with status %d.", statusCode)
	}
}

// ExitCode maps an operation result to the process exit status.
func ExitCode(result types.OperationResult) int {
	if result.Success {
		return ExitSuccess
	}
	return ExitFailure
}
