package nn

import "errors"

var (
	// ErrBadSize indicates a non-positive layer dimension.
	ErrBadSize = errors.New("nn: layer size must be positive")

	// ErrNilRand indicates a missing random source.
	ErrNilRand = errors.New("nn: rand source is nil")

	// ErrBadActivation indicates an unknown activation name.
	ErrBadActivation = errors.New("nn: unknown activation")
)
