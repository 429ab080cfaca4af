package world

import "errors"

var (
	// ErrDomain reports a NaN, infinite, or negative scalar argument.
	ErrDomain = errors.New("world: argument must be finite and non-negative")

	// ErrInvalidMaterial reports a material ID outside the registry.
	ErrInvalidMaterial = errors.New("world: invalid material id")

	// ErrOutOfRange reports a coordinate outside the representable cell range.
	ErrOutOfRange = errors.New("world: coordinate out of range")

	// ErrBadHeightMap reports a malformed terrain height map.
	ErrBadHeightMap = errors.New("world: height map must be square and non-empty")
)
