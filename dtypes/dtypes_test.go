package dtypes

import (
	"math"
	"testing"

	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestPrimitiveType_ElementType(t *testing.T) {
	for _, et := range ElementTypes {
		got, err := et.PrimitiveType().ElementType()
		require.NoError(t, err)
		require.Equal(t, et, got)
	}

	for _, pt := range []PrimitiveType{Invalid, Tuple, Token, OpaqueType, PrimitiveType(99)} {
		_, err := pt.ElementType()
		require.Error(t, err)
		var notElement *NotAnElementTypeError
		require.True(t, errors.As(err, &notElement), "expected NotAnElementTypeError for %s", pt)
		require.Equal(t, pt, notElement.Got)
	}
}

func TestElementType_SizeInBytes(t *testing.T) {
	want := map[ElementType]int{
		Bool: 1, Int8: 1, Int16: 2, Int32: 4, Int64: 8,
		Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
		Float16: 2, BFloat16: 2, Float32: 4, Float64: 8,
		Complex64: 8, Complex128: 16,
	}
	for et, size := range want {
		require.Equalf(t, size, et.SizeInBytes(), "SizeInBytes of %s", et)
		require.Equalf(t, uintptr(size), et.GoType().Size(), "Go type size of %s", et)
	}
	require.Equal(t, 0, InvalidElementType.SizeInBytes())
}

func TestElementTypeOf(t *testing.T) {
	require.Equal(t, Float32, ElementTypeOf[float32]())
	require.Equal(t, Float64, ElementTypeOf[float64]())
	require.Equal(t, Float16, ElementTypeOf[float16.Float16]())
	require.Equal(t, BFloat16, ElementTypeOf[bfloat16.BFloat16]())
	require.Equal(t, Uint16, ElementTypeOf[uint16]())
	require.Equal(t, Bool, ElementTypeOf[bool]())
	require.Equal(t, Complex128, ElementTypeOf[complex128]())
	require.Equal(t, 2, SizeOf[float16.Float16]())
	require.Equal(t, int64(0), Zero[int64]())
	require.Equal(t, float32(0), Zero[float32]())

	for _, et := range ElementTypes {
		require.Equal(t, et, FromGoType(et.GoType()))
	}
}

func TestHighestLowestValues(t *testing.T) {
	require.True(t, math.IsInf(Float64.HighestValue().(float64), 1))
	require.True(t, math.IsInf(float64(Float32.LowestValue().(float32)), -1))
	require.Equal(t, int8(math.MinInt8), Int8.LowestValue())
	require.Equal(t, uint32(math.MaxUint32), Uint32.HighestValue())
	require.Equal(t, float16.Inf(1), Float16.HighestValue())
	require.Equal(t, bfloat16.Inf(-1), BFloat16.LowestValue())

	// Complex numbers are not ordered, and return 0.
	require.Equal(t, complex64(0), Complex64.HighestValue().(complex64))
	require.Equal(t, complex128(0), Complex128.LowestValue().(complex128))
}

func TestMapOfNames(t *testing.T) {
	require.Equal(t, Float16, MapOfNames["Float16"])
	require.Equal(t, Float16, MapOfNames["float16"])
	require.Equal(t, Float16, MapOfNames["F16"])
	require.Equal(t, Float16, MapOfNames["f16"])
	require.Equal(t, BFloat16, MapOfNames["bf16"])
	require.Equal(t, Bool, MapOfNames["pred"])

	et, err := ElementTypeFromName("S64")
	require.NoError(t, err)
	require.Equal(t, Int64, et)
	_, err = ElementTypeFromName("int")
	require.Error(t, err)
}

func TestPrimitiveType_String(t *testing.T) {
	require.Equal(t, "F32", Float32.String())
	require.Equal(t, "TUPLE", Tuple.String())
	require.Equal(t, "PrimitiveType(77)", PrimitiveType(77).String())
	require.True(t, Token.IsStructural())
	require.False(t, C64.IsStructural())
}
