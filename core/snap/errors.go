package snap

import "errors"

var (
	// ErrCapacityExceeded is returned by AddSnapPoint when the engine
	// already holds MaxSnapPoints points.
	ErrCapacityExceeded = errors.New("snap: point capacity exceeded")

	// ErrUnknownPoint is returned when an operation references an ID
	// that is not in the index.
	ErrUnknownPoint = errors.New("snap: unknown point id")

	// ErrInvalidPoint indicates a structurally invalid point (empty id,
	// non-finite position).
	ErrInvalidPoint = errors.New("snap: invalid point")

	// ErrEngineClosed is returned by mutations after Close.
	ErrEngineClosed = errors.New("snap: engine closed")
)
