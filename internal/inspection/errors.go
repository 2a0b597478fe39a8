package inspection

import "errors"

var (
	// ErrEmptyID is returned when a submission carries no identifier.
	ErrEmptyID = errors.New("piece id must not be empty")
	// ErrInvalidNumber is returned when a measurement is not a finite number.
	ErrInvalidNumber = errors.New("measurement must be a number")
	// ErrNonPositiveMeasure is returned when weight or length is zero or negative.
	ErrNonPositiveMeasure = errors.New("weight and length must be positive")
	// ErrDuplicateID is returned by boundary pre-checks when the id was already inspected.
	ErrDuplicateID = errors.New("piece id was already inspected")
	// ErrUnknownReasonPolicy is returned when parsing an unsupported reason policy name.
	ErrUnknownReasonPolicy = errors.New("reason policy must be \"whole\" or \"split\"")
)
