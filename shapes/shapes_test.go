package shapes

import (
	"math"
	"testing"

	"github.com/gomlx/goxla/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestArrayShape(t *testing.T) {
	s := ArrayShapeOf[float32](3, 2)
	require.Equal(t, dtypes.Float32, s.ElementType)
	require.Equal(t, 2, s.Rank())
	require.False(t, s.IsScalar())
	require.False(t, s.IsDynamic())
	count, err := s.ElementCount()
	require.NoError(t, err)
	require.Equal(t, int64(6), count)
	size, err := s.SizeInBytes()
	require.NoError(t, err)
	require.Equal(t, int64(24), size)
	require.Equal(t, "(F32)[3 2]", s.String())

	scalar := MakeArrayShape(dtypes.Int64)
	require.True(t, scalar.IsScalar())
	count, err = scalar.ElementCount()
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Equal(t, "(S64)[]", scalar.String())

	// Dims returns a copy.
	dims := s.Dims()
	dims[0] = 7
	require.Equal(t, []int64{3, 2}, s.Dimensions)
}

func TestDynamicDimensions(t *testing.T) {
	s := ArrayShapeOf[float32](DynamicDim(2), 5)
	require.Equal(t, []int64{-2, 5}, s.Dimensions)
	require.True(t, s.IsDynamic())
	require.Equal(t, []int{0}, s.DynamicAxes())
	require.Equal(t, []int64{2, 5}, s.Bounds())
	require.Equal(t, int64(10), s.UpperBoundElementCount())
	_, err := s.ElementCount()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDynamicShape))
	require.Equal(t, "(F32)[<=2 5]", s.String())

	// Equality is exact: a dynamic dimension is not equal to the static dimension of its bound.
	require.True(t, s.Equal(ArrayShapeOf[float32](-2, 5)))
	require.False(t, s.Equal(ArrayShapeOf[float32](2, 5)))
	require.False(t, s.Equal(ArrayShapeOf[float32](-3, 5)))

	require.Panics(t, func() { DynamicDim(0) })
}

func TestElementCountOverflow(t *testing.T) {
	// 2^40 * 2^40 elements don't fit an int64.
	huge := ArrayShapeOf[float32](1<<40, 1<<40)
	_, err := huge.ElementCount()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrShapeTooLarge))
	_, err = huge.SizeInBytes()
	require.True(t, errors.Is(err, ErrShapeTooLarge))
	require.Equal(t, int64(math.MaxInt64), ArrayShapeOf[float32](DynamicDim(1<<40), 1<<40).UpperBoundElementCount())

	// The element count fits, but not the number of bytes.
	_, err = ArrayShapeOf[float64](1<<31, 1<<31).SizeInBytes()
	require.True(t, errors.Is(err, ErrShapeTooLarge))

	// A zero dimension never overflows.
	count, err := ArrayShapeOf[float32](1<<40, 0, 1<<40).ElementCount()
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestShape(t *testing.T) {
	a := Make(dtypes.Float32, 2)
	size, isTuple := a.TupleSize()
	require.False(t, isTuple)
	require.Equal(t, 0, size)
	dims, err := a.Dims()
	require.NoError(t, err)
	require.Equal(t, []int64{2}, dims)
	require.Equal(t, dtypes.F32, a.PrimitiveType())

	tuple := TupleOf(Make(dtypes.Float32), a)
	size, isTuple = tuple.TupleSize()
	require.True(t, isTuple)
	require.Equal(t, 2, size)
	require.Equal(t, dtypes.Tuple, tuple.PrimitiveType())
	_, err = tuple.Dims()
	require.Error(t, err)
	_, err = tuple.ArrayShape()
	require.Error(t, err)
	require.Equal(t, "Tuple<(F32)[], (F32)[2]>", tuple.String())

	require.True(t, tuple.Equal(TupleOf(Make(dtypes.Float32), Make(dtypes.Float32, 2))))
	require.False(t, tuple.Equal(TupleOf(Make(dtypes.Float32, 2), Make(dtypes.Float32))))
	require.False(t, tuple.Equal(a))

	empty := TupleOf()
	size, isTuple = empty.TupleSize()
	require.True(t, isTuple)
	require.Equal(t, 0, size)

	token := Unsupported(dtypes.Token)
	require.Equal(t, KindUnsupported, token.Kind())
	require.Equal(t, "Unsupported<TOKEN>", token.String())
	require.True(t, token.Equal(Unsupported(dtypes.Token)))
	require.False(t, token.Equal(Unsupported(dtypes.OpaqueType)))
}

func TestShape_Clone(t *testing.T) {
	dims := []int64{3, 4}
	s := Make(dtypes.Int32, dims...)
	dims[0] = 1 // Shape holds its own copy.
	cloned := TupleOf(s).Clone()
	require.True(t, cloned.Equal(TupleOf(Make(dtypes.Int32, 3, 4))))
	arr, err := cloned.TupleShapes()[0].ArrayShape()
	require.NoError(t, err)
	arr.Dimensions[0] = 100
	require.True(t, cloned.Equal(TupleOf(Make(dtypes.Int32, 3, 4))))
}
