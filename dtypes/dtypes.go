// Package dtypes maps host Go types to the XLA type system.
//
// PrimitiveType is every tag the runtime knows about, including structural markers (tuples, tokens,
// opaque values). ElementType is the subset that can be used as the element type of an array, with
// its size in bytes and its corresponding Go type.
package dtypes

import (
	"math"
	"reflect"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/x448/float16"
)

// ElementType is a PrimitiveType that can be used as the element of an array.
// The numeric values are the same as PrimitiveType.
type ElementType int32

const (
	// InvalidElementType is the zero value, used only to signal errors.
	InvalidElementType ElementType = 0

	// Bool (PRED) is used as the output and input of logic operations.
	Bool       = ElementType(Pred)
	Int8       = ElementType(S8)
	Int16      = ElementType(S16)
	Int32      = ElementType(S32)
	Int64      = ElementType(S64)
	Uint8      = ElementType(U8)
	Uint16     = ElementType(U16)
	Uint32     = ElementType(U32)
	Uint64     = ElementType(U64)
	Float16    = ElementType(F16)
	BFloat16   = ElementType(BF16)
	Float32    = ElementType(F32)
	Float64    = ElementType(F64)
	Complex64  = ElementType(C64)
	Complex128 = ElementType(C128)
)

// ElementTypes lists all valid element types.
var ElementTypes = []ElementType{
	Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
	Float16, BFloat16, Float32, Float64, Complex64, Complex128,
}

// PrimitiveType returns the corresponding PrimitiveType tag.
func (et ElementType) PrimitiveType() PrimitiveType {
	return PrimitiveType(et)
}

// String implements fmt.Stringer. It uses the XLA short names (F32, S64, ...).
func (et ElementType) String() string {
	return PrimitiveType(et).String()
}

// IsValid returns whether et is one of the ElementTypes.
func (et ElementType) IsValid() bool {
	pt := PrimitiveType(et)
	return pt.IsValid() && !pt.IsStructural()
}

// SizeInBytes returns the number of bytes used by one element of the type.
// It returns 0 for InvalidElementType.
func (et ElementType) SizeInBytes() int {
	switch et {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	}
	return 0
}

// IsFloat returns whether et is one of the float types (it excludes complex numbers).
func (et ElementType) IsFloat() bool {
	return et == Float16 || et == BFloat16 || et == Float32 || et == Float64
}

// IsComplex returns whether et is a complex number type.
func (et ElementType) IsComplex() bool {
	return et == Complex64 || et == Complex128
}

// IsInt returns whether et is a signed or unsigned integer type.
func (et ElementType) IsInt() bool {
	return et == Int8 || et == Int16 || et == Int32 || et == Int64 || et.IsUnsigned()
}

// IsUnsigned returns whether et is an unsigned integer type.
func (et ElementType) IsUnsigned() bool {
	return et == Uint8 || et == Uint16 || et == Uint32 || et == Uint64
}

// Pre-generate constant reflect.TypeOf for convenience.
var (
	float16Type  = reflect.TypeOf(float16.Float16(0))
	bfloat16Type = reflect.TypeOf(bfloat16.BFloat16(0))
)

// GoType returns the Go reflect.Type used to hold one element of the type on the host.
// It panics for InvalidElementType.
func (et ElementType) GoType() reflect.Type {
	switch et {
	case Bool:
		return reflect.TypeOf(true)
	case Int8:
		return reflect.TypeOf(int8(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int64:
		return reflect.TypeOf(int64(0))
	case Uint8:
		return reflect.TypeOf(uint8(0))
	case Uint16:
		return reflect.TypeOf(uint16(0))
	case Uint32:
		return reflect.TypeOf(uint32(0))
	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Float16:
		return float16Type
	case BFloat16:
		return bfloat16Type
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	case Complex64:
		return reflect.TypeOf(complex64(0))
	case Complex128:
		return reflect.TypeOf(complex128(0))
	}
	exceptions.Panicf("element type %s (%d) has no Go type", et, int32(et))
	panic(nil) // Quiet linter.
}

// FromGoType returns the ElementType for the given reflect.Type, or InvalidElementType if not supported.
// Go's int and uint are not supported, since their size is platform dependent.
func FromGoType(t reflect.Type) ElementType {
	if t == float16Type {
		return Float16
	} else if t == bfloat16Type {
		return BFloat16
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Complex64:
		return Complex64
	case reflect.Complex128:
		return Complex128
	default:
		return InvalidElementType
	}
}

// LowestValue for the element type, converted to the corresponding Go type.
// For float values it returns negative infinity. Complex numbers are not ordered and return 0.
func (et ElementType) LowestValue() any {
	switch et {
	case Bool:
		return false
	case Int8:
		return int8(math.MinInt8)
	case Int16:
		return int16(math.MinInt16)
	case Int32:
		return int32(math.MinInt32)
	case Int64:
		return int64(math.MinInt64)
	case Uint8:
		return uint8(0)
	case Uint16:
		return uint16(0)
	case Uint32:
		return uint32(0)
	case Uint64:
		return uint64(0)
	case Float16:
		return float16.Inf(-1)
	case BFloat16:
		return bfloat16.Inf(-1)
	case Float32:
		return math32.Inf(-1)
	case Float64:
		return math.Inf(-1)
	default:
		return reflect.New(et.GoType()).Elem().Interface()
	}
}

// HighestValue for the element type, converted to the corresponding Go type.
// For float values it returns positive infinity. Complex numbers are not ordered and return 0.
func (et ElementType) HighestValue() any {
	switch et {
	case Bool:
		return true
	case Int8:
		return int8(math.MaxInt8)
	case Int16:
		return int16(math.MaxInt16)
	case Int32:
		return int32(math.MaxInt32)
	case Int64:
		return int64(math.MaxInt64)
	case Uint8:
		return uint8(math.MaxUint8)
	case Uint16:
		return uint16(math.MaxUint16)
	case Uint32:
		return uint32(math.MaxUint32)
	case Uint64:
		return uint64(math.MaxUint64)
	case Float16:
		return float16.Inf(1)
	case BFloat16:
		return bfloat16.Inf(1)
	case Float32:
		return math32.Inf(1)
	case Float64:
		return math.Inf(1)
	default:
		return reflect.New(et.GoType()).Elem().Interface()
	}
}
