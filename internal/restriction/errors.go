package restriction

import "errors"

var (
	// ErrInvalidDuration means a lock duration is missing, malformed or not positive.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrUnsupportedChannel means the channel cannot be locked.
	ErrUnsupportedChannel = errors.New("unsupported channel")
)
