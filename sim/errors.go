package sim

import "errors"

var (
	// ErrConfiguration is wrapped by every Config validation failure.
	// Initialize returns it before building any state.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidAction is wrapped when an ego delta falls outside {-1, 0, +1}.
	ErrInvalidAction = errors.New("invalid action")
)
