package core

import "github.com/pkg/errors"

// ErrInvalidConfiguration marks construction-time parameter errors; they are fatal and never recovered
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Invalid wraps ErrInvalidConfiguration with a formatted reason
func Invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}
