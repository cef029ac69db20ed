package scene

import "errors"

var (
	// ErrInvalidPose is returned when a transform write or a matrix decomposition
	// would leave a non-finite component in a cached matrix.
	ErrInvalidPose = errors.New("scene: invalid pose")

	// ErrUnknownType is returned by TypeRegistry.Instantiate for tags without a factory.
	// Callers are expected to skip the record and keep going.
	ErrUnknownType = errors.New("scene: unknown type tag")

	// ErrMissingIdentity reports that an ID no longer resolves to a live entity.
	ErrMissingIdentity = errors.New("scene: missing identity")

	// ErrCyclicParent is returned when an entity would become its own ancestor.
	ErrCyclicParent = errors.New("scene: cyclic parent")
)
