package txn

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Profile validation errors. Compare with errors.Is().
var (
	// ErrInvalidDelay indicates a negative delay bound or min > max.
	ErrInvalidDelay = constError("invalid delay range")

	// ErrInvalidTick indicates a non-positive delay tick.
	ErrInvalidTick = constError("delay tick must be positive")

	// ErrInvalidFailureRate indicates a failure probability outside [0, 1].
	ErrInvalidFailureRate = constError("failure rate must be between 0 and 1")
)
