package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration indicates a malformed report request: bad date
	// range, unknown enum value, negative threshold. Raised before any
	// computation starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDataUnavailable indicates the data source could not supply the
	// snapshots or activity the pipeline asked for.
	ErrDataUnavailable = errors.New("data unavailable")
)

// InvalidConfigf wraps ErrInvalidConfiguration with context so callers branch
// on the kind with errors.Is instead of matching messages.
func InvalidConfigf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// DataUnavailablef wraps ErrDataUnavailable with context.
func DataUnavailablef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, fmt.Sprintf(format, args...))
}

// IsDomainError reports whether err already carries one of the domain
// sentinels, so infrastructure layers do not re-wrap it.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrDataUnavailable)
}
