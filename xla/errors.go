package xla

import (
	"github.com/pkg/errors"
)

var (
	// ErrRaggedMatrix is the panic value (wrapped with a stack trace) when a matrix is given as rows of
	// different lengths. It signals a bug in the caller, and it is raised before any native call.
	ErrRaggedMatrix = errors.New("all rows must have the same number of columns")

	// ErrDestroyed is returned when using an object (or an Op of a builder) that has already been destroyed.
	ErrDestroyed = errors.New("object is nil or has already been destroyed")

	// ErrBuilderMismatch is returned when combining Ops created by different builders.
	ErrBuilderMismatch = errors.New("ops belong to different XlaBuilder objects")

	// ErrNotATuple is returned when decomposing a Literal that is not a tuple.
	ErrNotATuple = errors.New("literal is not a tuple")

	// ErrElementTypeMismatch is returned when reading a Literal with a Go type that doesn't match its element type.
	ErrElementTypeMismatch = errors.New("element type mismatch")
)
