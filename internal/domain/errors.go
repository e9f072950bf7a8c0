package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChunking reports an unusable chunker configuration,
	// such as an overlap that is not smaller than the window size.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrDimensionMismatch reports a vector whose dimension disagrees
	// with the index it is being added to or searched against.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexCorrupted reports persisted index artifacts that are
	// unreadable or inconsistent with each other.
	ErrIndexCorrupted = errors.New("index artifacts corrupted")
)

// GenerationError reports a non-success HTTP status from the generation
// endpoint. The whole call fails; no partial output precedes it.
type GenerationError struct {
	Status int
	Body   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation request failed with status %d: %s", e.Status, e.Body)
}
