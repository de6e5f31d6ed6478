package dataset

import "errors"

var (
	// ErrLoad reports a missing, unreadable or unparsable input file.
	ErrLoad = errors.New("load dataset")
	// ErrPersist reports a failure writing the cleaned table.
	ErrPersist = errors.New("persist dataset")
	// ErrNonNumeric reports text that cannot be read as a number in a column
	// that is normalized or used in a derived feature.
	ErrNonNumeric = errors.New("non-numeric value")
	// ErrUnknownKind reports a dataset kind outside weather, soil, crop_yield and market.
	ErrUnknownKind = errors.New("unknown dataset kind")
)
