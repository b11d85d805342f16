package dtypes

import (
	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/x448/float16"
)

// ArrayElement lists the Go types that can be used as elements of an array on the host.
// Used as a generics constraint.
//
// Go's int and uint are not included, since their size is platform dependent.
type ArrayElement interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float16.Float16 | bfloat16.BFloat16 | float32 | float64 | complex64 | complex128
}

// NativeType lists the Go types for which the native library provides direct constructors of constants
// and literals (scalars, vectors and matrices), and direct readers of a literal's first element.
//
// Float16 and BFloat16 are ArrayElement but not NativeType: they can only be transferred as raw data.
type NativeType interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// ElementTypeOf returns the ElementType for the Go type T.
func ElementTypeOf[T ArrayElement]() ElementType {
	var t T
	switch any(t).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	}
	return InvalidElementType
}

// SizeOf returns the size in bytes of one element of type T.
func SizeOf[T ArrayElement]() int {
	return ElementTypeOf[T]().SizeInBytes()
}

// Zero returns the additive identity of T (false for bool).
func Zero[T ArrayElement]() T {
	var zero T
	return zero
}
