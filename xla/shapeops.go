package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"

	"github.com/gomlx/goxla/dtypes"
	"github.com/pkg/errors"
)

// axesOp builds an op that takes one operand and a list of int64 values (dimensions, axes or a permutation).
func axesOp(opName string, x *Op, values []int64, fn func(x C.xla_op, n C.size_t, values *C.int64_t) C.xla_op) (*Op, error) {
	b, err := checkOps(opName, x)
	if err != nil {
		return nil, err
	}
	cValues, n := cInt64Array(values)
	defer cFree(cValues)
	return b.newOp(fn(x.cOp, n, cValues), opName)
}

// Reshape x to the given dimensions, keeping the elements in the same (row-major) order.
// The total number of elements must be preserved.
func Reshape(x *Op, dims ...int64) (*Op, error) {
	return axesOp("Reshape", x, dims, func(x C.xla_op, n C.size_t, dims *C.int64_t) C.xla_op {
		return C.op_reshape(x, n, dims)
	})
}

// Broadcast x by prepending the given dimensions: the values of x are repeated over the new axes.
func Broadcast(x *Op, prefixDims ...int64) (*Op, error) {
	return axesOp("Broadcast", x, prefixDims, func(x C.xla_op, n C.size_t, dims *C.int64_t) C.xla_op {
		return C.op_broadcast(x, n, dims)
	})
}

// BroadcastInDim broadcasts x to the outputDims shape. broadcastAxes maps each axis of x to the axis of the
// output it corresponds to: the other output axes are broadcast.
func BroadcastInDim(x *Op, outputDims, broadcastAxes []int64) (*Op, error) {
	b, err := checkOps("BroadcastInDim", x)
	if err != nil {
		return nil, err
	}
	cOut, numOut := cInt64Array(outputDims)
	defer cFree(cOut)
	cAxes, numAxes := cInt64Array(broadcastAxes)
	defer cFree(cAxes)
	return b.newOp(C.op_broadcast_in_dim(x.cOp, numOut, cOut, numAxes, cAxes), "BroadcastInDim")
}

// Collapse merges the given consecutive axes into one.
func Collapse(x *Op, axes ...int64) (*Op, error) {
	return axesOp("Collapse", x, axes, func(x C.xla_op, n C.size_t, axes *C.int64_t) C.xla_op {
		return C.op_collapse(x, n, axes)
	})
}

// Transpose permutes the axes of x: output axis i is the input axis permutation[i].
func Transpose(x *Op, permutation ...int64) (*Op, error) {
	return axesOp("Transpose", x, permutation, func(x C.xla_op, n C.size_t, permutation *C.int64_t) C.xla_op {
		return C.op_transpose(x, n, permutation)
	})
}

// Clamp returns x limited to the range [lower, upper], element-wise.
// lower and upper can be scalars.
func Clamp(lower, x, upper *Op) (*Op, error) {
	b, err := checkOps("Clamp", lower, x, upper)
	if err != nil {
		return nil, err
	}
	return b.newOp(C.op_clamp(lower.cOp, x.cOp, upper.cOp), "Clamp")
}

// Select returns onTrue where pred is true, and onFalse otherwise, element-wise.
func Select(pred, onTrue, onFalse *Op) (*Op, error) {
	b, err := checkOps("Select", pred, onTrue, onFalse)
	if err != nil {
		return nil, err
	}
	return b.newOp(C.op_select(pred.cOp, onTrue.cOp, onFalse.cOp), "Select")
}

// SliceInDim slices x along one axis, taking the elements start, start+stride, ... up to limit (exclusive).
func SliceInDim(x *Op, start, limit, stride, axis int64) (*Op, error) {
	b, err := checkOps("SliceInDim", x)
	if err != nil {
		return nil, err
	}
	if stride <= 0 {
		return nil, errors.Errorf("SliceInDim: stride must be positive, got %d", stride)
	}
	cOp := C.op_slice_in_dim(x.cOp, C.int64_t(start), C.int64_t(limit), C.int64_t(stride), C.int64_t(axis))
	return b.newOp(cOp, "SliceInDim")
}

// ConcatInDim concatenates the operands along the given axis. All other dimensions must match.
func ConcatInDim(axis int64, operands ...*Op) (*Op, error) {
	b, err := checkOps("ConcatInDim", operands...)
	if err != nil {
		return nil, err
	}
	cOthers := make([]C.xla_op, 0, len(operands)-1)
	for _, op := range operands[1:] {
		cOthers = append(cOthers, op.cOp)
	}
	cArray := cMallocArrayFromSlice(cOthers)
	defer cFree(cArray)
	cOp := C.op_concat_in_dim(operands[0].cOp, cArray, C.size_t(len(cOthers)), C.int64_t(axis))
	return b.newOp(cOp, "ConcatInDim")
}

// Tuple creates a tuple from the given elements, which must have been created by b.
// The tuple can be empty.
func Tuple(b *XlaBuilder, elements ...*Op) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Tuple")
	}
	cElements := make([]C.xla_op, 0, len(elements))
	for ii, element := range elements {
		if !element.IsValid() {
			return nil, errors.Wrapf(ErrDestroyed, "Tuple: element #%d", ii)
		}
		if element.builder != b {
			return nil, errors.Wrapf(ErrBuilderMismatch, "Tuple: element #%d created by %s, tuple built on %s",
				ii, element.builder, b)
		}
		cElements = append(cElements, element.cOp)
	}
	cArray := cMallocArrayFromSlice(cElements)
	defer cFree(cArray)
	defer runtime.KeepAlive(elements)
	return b.newOp(C.op_tuple(b.wrapper.c, cArray, C.size_t(len(cElements))), "Tuple")
}

// GetTupleElement returns the element at the given index of the tuple x.
func GetTupleElement(x *Op, index int64) (*Op, error) {
	b, err := checkOps("GetTupleElement", x)
	if err != nil {
		return nil, err
	}
	return b.newOp(C.op_get_tuple_element(x.cOp, C.int64_t(index)), "GetTupleElement")
}

// ConvertElementType converts x to the given element type, element-wise.
func ConvertElementType(x *Op, et dtypes.ElementType) (*Op, error) {
	b, err := checkOps("ConvertElementType", x)
	if err != nil {
		return nil, err
	}
	if !et.IsValid() {
		return nil, errors.Errorf("ConvertElementType: invalid element type %s", et)
	}
	return b.newOp(C.op_convert_element_type(x.cOp, C.int(et)), "ConvertElementType")
}

// DimensionsSize returns the size of the given axis of x, as an Int32 scalar.
// It works also for dynamic dimensions, where the size is only known at execution time.
func DimensionsSize(x *Op, axis int64) (*Op, error) {
	b, err := checkOps("DimensionsSize", x)
	if err != nil {
		return nil, err
	}
	return b.newOp(C.op_dimensions_size(x.cOp, C.int64_t(axis)), "DimensionsSize")
}
