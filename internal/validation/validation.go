// Package validation checks user supplied provisioning arguments before any
// request reaches Atlas.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is matched by every error returned from this package.
var ErrInvalidInput = errors.New("invalid input")

const (
	MaxProjectNameLength = 20
	MinStorageSizeGB     = 1
	MaxStorageSizeGB     = 50
	maxClusterNameLength = 64
)

// PaidInstanceSizes are the dedicated tiers accepted for paid clusters.
var PaidInstanceSizes = []string{"M10", "M20", "M30", "M40", "M50", "M60", "M80", "M140", "M200"}

var (
	validate = validator.New()

	// clusterNameRegex matches Atlas cluster naming rules
	clusterNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
)

// InputError describes a rejected argument.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateProjectName requires 1-20 ASCII letters or digits.
func ValidateProjectName(name string) error {
	tag := fmt.Sprintf("required,max=%d,alphanum", MaxProjectNameLength)
	switch failedTag(validate.Var(name, tag)) {
	case "":
		return nil
	case "required":
		return invalid("name", "Project name cannot be empty")
	case "max":
		return invalid("name", "Project name cannot exceed %d characters", MaxProjectNameLength)
	default:
		return invalid("name", "Project name must contain only English characters and numbers")
	}
}

// ValidateStorageSize bounds a paid cluster's disk size in GB.
func ValidateStorageSize(size int) error {
	tag := fmt.Sprintf("min=%d,max=%d", MinStorageSizeGB, MaxStorageSizeGB)
	if failedTag(validate.Var(size, tag)) != "" {
		return invalid("storageSizeGB", "Storage size must be between %d and %d GB", MinStorageSizeGB, MaxStorageSizeGB)
	}
	return nil
}

// ValidateInstanceSize accepts only the dedicated tiers in PaidInstanceSizes.
func ValidateInstanceSize(size string) error {
	tag := "required,oneof=" + strings.Join(PaidInstanceSizes, " ")
	switch failedTag(validate.Var(size, tag)) {
	case "":
		return nil
	case "required":
		return invalid("instanceSize", "Instance size is required")
	default:
		return invalid("instanceSize", "Invalid instance size %q (allowed: %s)", size, strings.Join(PaidInstanceSizes, ", "))
	}
}

// ValidateClusterName validates an Atlas cluster name.
func ValidateClusterName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "Cluster name cannot be empty")
	}
	if len(name) > maxClusterNameLength {
		return invalid("name", "Cluster name cannot exceed %d characters", maxClusterNameLength)
	}
	if !clusterNameRegex.MatchString(name) {
		return invalid("name", "Cluster name must start and end with a letter or number and contain only letters, numbers and hyphens")
	}
	return nil
}

// ValidateRequired validates that a field is non-empty.
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(fieldName, "%s is required", fieldName)
	}
	return nil
}

// failedTag returns the first failing validator tag, or "" when err is nil.
func failedTag(err error) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return "invalid"
}
