package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/goxla/dtypes"
	"github.com/pkg/errors"
)

// Kind of Shape.
type Kind int

const (
	// KindArray is a shape of an array: see ArrayShape.
	KindArray Kind = iota

	// KindTuple is a shape of a tuple of values.
	KindTuple

	// KindUnsupported is a shape of a value that is neither an array nor a tuple (tokens and opaque values).
	KindUnsupported
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindUnsupported:
		return "Unsupported"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape of a value: either an array, a tuple of values with their own Shape, or an unsupported
// type (tokens and opaque values), for which only the PrimitiveType is kept.
//
// The zero value is an array shape with an invalid element type.
type Shape struct {
	kind        Kind
	array       ArrayShape
	tupleShapes []Shape
	unsupported dtypes.PrimitiveType
}

// ArrayOf returns the Shape of an array.
func ArrayOf(array ArrayShape) Shape {
	return Shape{kind: KindArray, array: MakeArrayShape(array.ElementType, array.Dimensions...)}
}

// Make is a shortcut to ArrayOf(MakeArrayShape(et, dims...)).
func Make(et dtypes.ElementType, dims ...int64) Shape {
	return ArrayOf(MakeArrayShape(et, dims...))
}

// TupleOf returns the Shape of a tuple with the given element shapes. An empty tuple is valid.
func TupleOf(shapes ...Shape) Shape {
	s := Shape{kind: KindTuple, tupleShapes: make([]Shape, len(shapes))}
	for ii, elem := range shapes {
		s.tupleShapes[ii] = elem.Clone()
	}
	return s
}

// Unsupported returns a Shape of a value whose type is neither an array nor a tuple.
func Unsupported(pt dtypes.PrimitiveType) Shape {
	return Shape{kind: KindUnsupported, unsupported: pt}
}

// Kind returns whether the shape is an array, tuple or unsupported.
func (s Shape) Kind() Kind {
	return s.kind
}

// IsArray returns whether s is an array shape.
func (s Shape) IsArray() bool { return s.kind == KindArray }

// IsTuple returns whether s is a tuple shape.
func (s Shape) IsTuple() bool { return s.kind == KindTuple }

// PrimitiveType returns the XLA type tag of the shape: the element type of arrays, Tuple for tuples, or
// the type of the unsupported value.
func (s Shape) PrimitiveType() dtypes.PrimitiveType {
	switch s.kind {
	case KindTuple:
		return dtypes.Tuple
	case KindUnsupported:
		return s.unsupported
	}
	return s.array.ElementType.PrimitiveType()
}

// TupleSize returns the number of elements of a tuple shape, and false if s is not a tuple.
func (s Shape) TupleSize() (int, bool) {
	if s.kind != KindTuple {
		return 0, false
	}
	return len(s.tupleShapes), true
}

// TupleShapes returns the shapes of the elements of a tuple, or nil if not a tuple.
// The returned slice is owned by s, don't change it.
func (s Shape) TupleShapes() []Shape {
	return s.tupleShapes
}

// ArrayShape returns the ArrayShape if s is an array shape, or an error otherwise.
func (s Shape) ArrayShape() (ArrayShape, error) {
	if s.kind != KindArray {
		return ArrayShape{}, errors.Errorf("shape %s is not an array shape", s)
	}
	return MakeArrayShape(s.array.ElementType, s.array.Dimensions...), nil
}

// Dims returns the dimensions of an array shape, or an error otherwise.
func (s Shape) Dims() ([]int64, error) {
	if s.kind != KindArray {
		return nil, errors.Errorf("shape %s has no dimensions, it is not an array", s)
	}
	return s.array.Dims(), nil
}

// Equal compares the structure of the shapes: kind, element type and dimensions, recursively for tuples.
func (s Shape) Equal(other Shape) bool {
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case KindArray:
		return s.array.Equal(other.array)
	case KindTuple:
		return slices.EqualFunc(s.tupleShapes, other.tupleShapes, Shape.Equal)
	}
	return s.unsupported == other.unsupported
}

// Clone makes a deep copy.
func (s Shape) Clone() Shape {
	switch s.kind {
	case KindArray:
		return ArrayOf(s.array)
	case KindTuple:
		return TupleOf(s.tupleShapes...)
	}
	return s
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s.kind {
	case KindTuple:
		parts := make([]string, 0, len(s.tupleShapes))
		for _, elem := range s.tupleShapes {
			parts = append(parts, elem.String())
		}
		return fmt.Sprintf("Tuple<%s>", strings.Join(parts, ", "))
	case KindUnsupported:
		return fmt.Sprintf("Unsupported<%s>", s.unsupported)
	}
	return s.array.String()
}
