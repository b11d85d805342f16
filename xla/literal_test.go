package xla_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/gomlx/goxla/shapes"
	. "github.com/gomlx/goxla/xla"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestTupleLiteral(t *testing.T) {
	x := NewScalarLiteral(float32(3.1))
	y := NewVec1Literal([]float32{4.2, 1.337})
	tuple := capture(NewTupleLiteral(x, y)).Test(t)
	defer tuple.Destroy()
	require.True(t, x.IsNil(), "elements must be consumed by NewTupleLiteral")
	require.True(t, y.IsNil(), "elements must be consumed by NewTupleLiteral")

	size, ok := tuple.TupleSize()
	require.True(t, ok)
	require.Equal(t, 2, size)
	require.Equal(t, 0, tuple.ElementCount())
	_, err := tuple.ElementType()
	var notAnElementType *dtypes.NotAnElementTypeError
	require.ErrorAs(t, err, &notAnElementType)
	require.Equal(t, dtypes.Tuple, notAnElementType.Got)

	elements := capture(tuple.DecomposeTuple()).Test(t)
	require.Len(t, elements, 2)
	require.Equal(t, []float32{4.2, 1.337}, capture(LiteralToVec[float32](elements[1])).Test(t))
	require.Equal(t, []float32{3.1}, capture(LiteralToVec[float32](elements[0])).Test(t))

	// Decomposition is destructive: the tuple is released and can't be used anymore.
	require.True(t, tuple.IsNil())
	_, err = tuple.DecomposeTuple()
	require.ErrorIs(t, err, ErrDestroyed)
	for _, element := range elements {
		element.Destroy()
	}

	// Non tuples can't be decomposed, and are left untouched.
	scalar := NewScalarLiteral(int32(1))
	defer scalar.Destroy()
	_, err = scalar.DecomposeTuple()
	require.ErrorIs(t, err, ErrNotATuple)
	require.False(t, scalar.IsNil())
	require.Equal(t, int32(1), capture(LiteralFirstElement[int32](scalar)).Test(t))
}

func testNativeRoundTrip[T dtypes.NativeType](t *testing.T, client *Client, values ...T) {
	t.Run(dtypes.ElementTypeOf[T]().String(), func(t *testing.T) {
		scalar := NewScalarLiteral(values[0])
		defer scalar.Destroy()
		require.Equal(t, values[0], capture(LiteralFirstElement[T](scalar)).Test(t))
		require.Equal(t, dtypes.ElementTypeOf[T](), capture(scalar.ElementType()).Test(t))
		require.Equal(t, dtypes.SizeOf[T](), scalar.SizeInBytes())

		vec := NewVec1Literal(values)
		defer vec.Destroy()
		require.Equal(t, values, capture(LiteralToVec[T](vec)).Test(t))
		require.Equal(t, len(values), vec.ElementCount())

		matrix := NewMatrixLiteral([][]T{values, values})
		defer matrix.Destroy()
		require.True(t, capture(matrix.ArrayShape()).Test(t).Equal(shapes.ArrayShapeOf[T](2, int64(len(values)))))
		require.Equal(t, append(values, values...), capture(LiteralToVec[T](matrix)).Test(t))

		// Same values as constants of rank 0, 1 and 2, compiled and executed.
		builder := NewBuilder("roundtrip")
		defer builder.Destroy()
		r0 := capture(ConstantR0(builder, values[0])).Test(t)
		exec := compile(t, client, r0)
		require.Equal(t, values[0], execScalarOutput[T](t, exec))
		exec.Destroy()

		r1 := capture(ConstantR1(builder, values)).Test(t)
		require.Equal(t, []int64{int64(len(values))}, capture(r1.Dims()).Test(t))
		exec = compile(t, client, r1)
		flat, dims := execArrayOutput[T](t, exec)
		require.Equal(t, values, flat)
		require.Equal(t, []int64{int64(len(values))}, dims)
		exec.Destroy()

		reversed := slices.Clone(values)
		slices.Reverse(reversed)
		r2 := capture(ConstantR2(builder, [][]T{values, reversed})).Test(t)
		exec = compile(t, client, r2)
		flat, dims = execArrayOutput[T](t, exec)
		require.Equal(t, append(slices.Clone(values), reversed...), flat)
		require.Equal(t, []int64{2, int64(len(values))}, dims)
		exec.Destroy()
	})
}

func TestNativeTypesRoundTrip(t *testing.T) {
	client := getClient(t)
	testNativeRoundTrip[int8](t, client, -128, 0, 127)
	testNativeRoundTrip[int16](t, client, -32768, 1, 32767)
	testNativeRoundTrip[int32](t, client, -7, 0, 1<<30)
	testNativeRoundTrip[int64](t, client, -1<<62, 3, 1<<62)
	testNativeRoundTrip[uint8](t, client, 0, 1, 255)
	testNativeRoundTrip[uint16](t, client, 0, 2, 65535)
	testNativeRoundTrip[uint32](t, client, 0, 3, 1<<31)
	testNativeRoundTrip[uint64](t, client, 0, 4, 1<<63)
	testNativeRoundTrip[float32](t, client, -1.5, 0, 3.25)
	testNativeRoundTrip[float64](t, client, -1e100, 0.5, 1e100)
}

func TestArrayLiteral(t *testing.T) {
	{
		flat := []float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(-2.5), float16.Fromfloat32(0.25), float16.Fromfloat32(8)}
		l := capture(NewArrayLiteral(flat, 2, 2)).Test(t)
		require.Equal(t, dtypes.Float16, capture(l.ElementType()).Test(t))
		require.Equal(t, flat, capture(LiteralToVec[float16.Float16](l)).Test(t))
		l.Destroy()
	}
	{
		flat := []bfloat16.BFloat16{bfloat16.FromFloat32(1), bfloat16.FromFloat32(3)}
		l := capture(NewArrayLiteral(flat)).Test(t)
		require.Equal(t, dtypes.BFloat16, capture(l.ElementType()).Test(t))
		require.Equal(t, flat, capture(LiteralToVec[bfloat16.BFloat16](l)).Test(t))
		asF32 := capture(l.Convert(dtypes.Float32)).Test(t)
		require.Equal(t, []float32{1, 3}, capture(LiteralToVec[float32](asF32)).Test(t))
		asF32.Destroy()
		l.Destroy()
	}
	{
		flat := []bool{true, false, true}
		l := capture(NewArrayLiteral(flat)).Test(t)
		require.Equal(t, flat, capture(LiteralToVec[bool](l)).Test(t))
		l.Destroy()
	}
	{
		flat := []complex64{1 + 2i, -3i}
		l := capture(NewArrayLiteral(flat)).Test(t)
		require.Equal(t, flat, capture(LiteralToVec[complex64](l)).Test(t))
		l.Destroy()
	}

	// Wrong number of elements, or dynamic shape.
	_, err := NewArrayLiteral([]float32{1, 2, 3}, 2, 2)
	require.Error(t, err)
	_, err = NewArrayLiteral([]float32{1, 2}, shapes.DynamicDim(2))
	require.ErrorIs(t, err, shapes.ErrDynamicShape)
}

func TestLiteralTransformations(t *testing.T) {
	l := capture(NewLiteralFromShape(shapes.MakeArrayShape(dtypes.Int32, 2, 3))).Test(t)
	defer l.Destroy()
	require.Equal(t, make([]int32, 6), capture(LiteralToVec[int32](l)).Test(t))

	// Raw copies: int32 in native endianness.
	src := NewVec1Literal([]int32{1, 2, 3, 4, 5, 6})
	raw := make([]byte, src.SizeInBytes())
	require.NoError(t, src.CopyRawTo(raw))
	require.NoError(t, l.CopyRawFrom(raw))
	require.Equal(t, []int32{1, 2, 3, 4, 5, 6}, capture(LiteralToVec[int32](l)).Test(t))
	require.Error(t, l.CopyRawFrom(raw[:5]))
	src.Destroy()

	reshaped := capture(l.Reshape(3, 2)).Test(t)
	require.Equal(t, []int64{3, 2}, capture(reshaped.ArrayShape()).Test(t).Dims())
	_, err := l.Reshape(4, 2)
	require.Error(t, err)

	cloned := capture(reshaped.Clone()).Test(t)
	reshaped.Destroy()
	require.Equal(t, []int32{1, 2, 3, 4, 5, 6}, capture(LiteralToVec[int32](cloned)).Test(t))
	fmt.Printf("  > %s\n", cloned)

	_, err = LiteralToVec[float32](cloned)
	require.ErrorIs(t, err, ErrElementTypeMismatch)
	_, err = LiteralFirstElement[int64](cloned)
	require.ErrorIs(t, err, ErrElementTypeMismatch)
	cloned.Destroy()
	cloned.Destroy() // No-op.
	_, err = cloned.Shape()
	require.ErrorIs(t, err, ErrDestroyed)
}
