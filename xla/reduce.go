package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"fmt"
	"runtime"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
)

// This file implements the various types of reduce operations.

// ReduceOpType selects among the standard reductions, see XlaBuilder.ReduceComputation.
type ReduceOpType int

const (
	// ReduceSumType reduces by summing all elements being reduced.
	ReduceSumType ReduceOpType = iota

	// ReduceProductType reduces by multiplying all elements being reduced.
	ReduceProductType

	// ReduceMaxType reduces by taking the maximum value.
	ReduceMaxType

	// ReduceMinType reduces by taking the minimum value.
	ReduceMinType
)

var reduceOpTypeNames = []string{"ReduceSum", "ReduceProduct", "ReduceMax", "ReduceMin"}

// String implements fmt.Stringer.
func (r ReduceOpType) String() string {
	if r < 0 || int(r) >= len(reduceOpTypeNames) {
		return fmt.Sprintf("ReduceOpType(%d)", int(r))
	}
	return reduceOpTypeNames[r]
}

// ReduceComputation builds or returns a cached computation that implements one of the standard reductions
// for the element type et, along with its initial value.
//
// Both are owned by the builder b, and released when it is destroyed.
func (b *XlaBuilder) ReduceComputation(reduction ReduceOpType, et dtypes.ElementType) (comp *XlaComputation, initialValue *Op, err error) {
	if b.IsNil() {
		err = errors.WithStack(ErrDestroyed)
		return
	}
	if !et.IsValid() {
		err = errors.Errorf("invalid element type (%s) for reduce operation", et)
		return
	}

	reductionName := fmt.Sprintf("#_%s_%s", reduction, et)
	comp = b.cachedReductions[reductionName]
	if comp == nil {
		comp, err = buildReduceComputation(b.CreateSubBuilder(reductionName), reduction, et)
		if err != nil {
			err = errors.WithMessagef(err, "while trying to create a reduce computation %s", reduction)
			return
		}
		b.cachedReductions[reductionName] = comp
	}

	initialValue = b.cachedInitValues[reductionName]
	if initialValue == nil {
		switch reduction {
		case ReduceSumType:
			initialValue, err = Zero(b, et)
		case ReduceProductType:
			initialValue, err = One(b, et)
		case ReduceMaxType:
			initialValue, err = MinValue(b, et)
		case ReduceMinType:
			initialValue, err = MaxValue(b, et)
		}
		if err != nil {
			err = errors.WithMessagef(err, "while trying to create the initial value for %s", reduction)
			return
		}
		b.cachedInitValues[reductionName] = initialValue
	}
	return
}

// buildReduceComputation builds the scalar function (lhs, rhs) -> lhs <op> rhs. The sub-builder is destroyed
// on return.
func buildReduceComputation(subBuilder *XlaBuilder, reduction ReduceOpType, et dtypes.ElementType) (*XlaComputation, error) {
	defer subBuilder.Destroy()
	// lhs -> left-hand-side, rhs -> right-hand-side
	lhs, err := Parameter(subBuilder, 0, et, nil, "lhs")
	if err != nil {
		return nil, err
	}
	rhs, err := Parameter(subBuilder, 1, et, nil, "rhs")
	if err != nil {
		return nil, err
	}
	var output *Op
	switch reduction {
	case ReduceSumType:
		output, err = Add(lhs, rhs)
	case ReduceProductType:
		output, err = Mul(lhs, rhs)
	case ReduceMaxType:
		output, err = Max(lhs, rhs)
	case ReduceMinType:
		output, err = Min(lhs, rhs)
	default:
		return nil, errors.Errorf("unknown reduce computation type: %s", reduction)
	}
	if err != nil {
		return nil, err
	}
	return subBuilder.Build(output)
}

// Reduce the selected axes of x, using the given reduceComputation, a function of two scalars returning
// a scalar. The initialValue should be a scalar value that the reduction starts with.
//
// If no axes are given, nothing is reduced and the output has the same shape as x.
//
// Consider instead using one of the standard ReduceSum, ReduceProduct, ReduceMax and ReduceMin. They use
// cached values for both the corresponding reduceComputation and initialValue, per element type of x.
func Reduce(x *Op, reduceComputation *XlaComputation, initialValue *Op, axes ...int64) (*Op, error) {
	b, err := checkOps("Reduce", x, initialValue)
	if err != nil {
		return nil, err
	}
	if reduceComputation.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Reduce: reduceComputation")
	}
	if len(axes) == 0 {
		return x, nil
	}
	defer runtime.KeepAlive(reduceComputation)
	cAxes, numAxes := cInt64Array(axes)
	defer cFree(cAxes)
	return b.newOp(C.op_reduce(x.cOp, initialValue.cOp, reduceComputation.cComp, cAxes, numAxes), "Reduce")
}

func simpleReduceImpl(reduceType ReduceOpType, x *Op, keepDims bool, axes ...int64) (*Op, error) {
	b, err := checkOps(reduceType.String(), x)
	if err != nil {
		return nil, err
	}
	shape, err := x.ArrayShape()
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", reduceType)
	}
	// Validates the axes before the native call.
	keptShape, err := reducedArrayShape(shape, true, axes)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", reduceType)
	}
	if len(axes) == 0 {
		return x, nil
	}
	comp, initialValue, err := b.ReduceComputation(reduceType, shape.ElementType)
	if err != nil {
		return nil, errors.WithMessagef(err, "while creating %s sub-computation", reduceType)
	}
	output, err := Reduce(x, comp, initialValue, axes...)
	if err != nil || !keepDims {
		return output, err
	}
	return Reshape(output, keptShape.Dimensions...)
}

// ReduceSum reduces x on the given axes by taking the sum of the reduced elements.
// If keepDims is true, the reduced axes are kept with dimension 1.
//
// If no axes are given, x is returned unchanged.
func ReduceSum(x *Op, keepDims bool, axes ...int64) (*Op, error) {
	return simpleReduceImpl(ReduceSumType, x, keepDims, axes...)
}

// ReduceProduct reduces x on the given axes by taking the product of the reduced elements.
// If keepDims is true, the reduced axes are kept with dimension 1.
//
// If no axes are given, x is returned unchanged.
func ReduceProduct(x *Op, keepDims bool, axes ...int64) (*Op, error) {
	return simpleReduceImpl(ReduceProductType, x, keepDims, axes...)
}

// ReduceMax reduces x on the given axes by taking the max value.
// If keepDims is true, the reduced axes are kept with dimension 1.
//
// If no axes are given, x is returned unchanged.
func ReduceMax(x *Op, keepDims bool, axes ...int64) (*Op, error) {
	return simpleReduceImpl(ReduceMaxType, x, keepDims, axes...)
}

// ReduceMin reduces x on the given axes by taking the min value.
// If keepDims is true, the reduced axes are kept with dimension 1.
//
// If no axes are given, x is returned unchanged.
func ReduceMin(x *Op, keepDims bool, axes ...int64) (*Op, error) {
	return simpleReduceImpl(ReduceMinType, x, keepDims, axes...)
}

// ReduceMean reduces x on the given axes by taking the mean of the reduced elements.
//
// The number of elements is computed with DimensionsSize, so it works with dynamic dimensions.
// If no axes are given, x is returned unchanged.
func ReduceMean(x *Op, keepDims bool, axes ...int64) (*Op, error) {
	b, err := checkOps("ReduceMean", x)
	if err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		return x, nil
	}
	et, err := x.ElementType()
	if err != nil {
		return nil, errors.WithMessage(err, "ReduceMean")
	}
	scale, err := One(b, dtypes.Int32)
	if err != nil {
		return nil, errors.WithMessage(err, "ReduceMean")
	}
	for _, axis := range axes {
		size, err := DimensionsSize(x, axis)
		if err != nil {
			return nil, errors.WithMessagef(err, "ReduceMean: size of axis %d", axis)
		}
		scale, err = Mul(scale, size)
		if err != nil {
			return nil, errors.WithMessage(err, "ReduceMean")
		}
	}
	sum, err := ReduceSum(x, keepDims, axes...)
	if err != nil {
		return nil, errors.WithMessage(err, "ReduceMean")
	}
	if scale, err = ConvertElementType(scale, et); err != nil {
		return nil, errors.WithMessage(err, "ReduceMean")
	}
	return Div(sum, scale)
}

// reducedArrayShape returns the shape of the reduction of an array of the given shape over axes.
// It fails if any axis is out of range.
func reducedArrayShape(shape shapes.ArrayShape, keepDims bool, axes []int64) (shapes.ArrayShape, error) {
	reduced := make(map[int64]bool, len(axes))
	for _, axis := range axes {
		if axis < 0 || axis >= int64(shape.Rank()) {
			return shapes.ArrayShape{}, errors.Errorf("reduce axis %d out of range for shape %s", axis, shape)
		}
		reduced[axis] = true
	}
	dims := make([]int64, 0, shape.Rank())
	for axis, dim := range shape.Dimensions {
		switch {
		case !reduced[int64(axis)]:
			dims = append(dims, dim)
		case keepDims:
			dims = append(dims, 1)
		}
	}
	return shapes.MakeArrayShape(shape.ElementType, dims...), nil
}
