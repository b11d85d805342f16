package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"
	"unsafe"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
)

// flattenMatrix returns the rows concatenated in a flat slice.
//
// It panics with ErrRaggedMatrix if the rows don't all have the same length.
func flattenMatrix[T any](rows [][]T) (flat []T, numRows, numCols int) {
	numRows = len(rows)
	if numRows == 0 {
		return nil, 0, 0
	}
	numCols = len(rows[0])
	flat = make([]T, 0, numRows*numCols)
	for ii, row := range rows {
		if len(row) != numCols {
			panic(errors.Wrapf(ErrRaggedMatrix, "row #%d has %d columns, but row #0 has %d", ii, len(row), numCols))
		}
		flat = append(flat, row...)
	}
	return
}

// ConstantR0 returns a scalar constant.
func ConstantR0[T dtypes.NativeType](b *XlaBuilder, value T) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantR0")
	}
	return b.newOp(nativeFor[T]().constantR0(b.wrapper.c, value), "ConstantR0")
}

// ConstantR1 returns a vector constant with the given values.
func ConstantR1[T dtypes.NativeType](b *XlaBuilder, values []T) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantR1")
	}
	cOp := nativeFor[T]().constantR1(b.wrapper.c, unsafe.SliceData(values), C.size_t(len(values)))
	return b.newOp(cOp, "ConstantR1")
}

// ConstantR1C returns a vector constant of length n filled with value.
func ConstantR1C[T dtypes.NativeType](b *XlaBuilder, value T, n int) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantR1C")
	}
	if n < 0 {
		return nil, errors.Errorf("ConstantR1C: invalid negative length %d", n)
	}
	return b.newOp(nativeFor[T]().constantR1C(b.wrapper.c, value, C.size_t(n)), "ConstantR1C")
}

// ConstantR2 returns a matrix constant with the given rows.
//
// It panics with ErrRaggedMatrix (wrapped) if the rows have different lengths.
func ConstantR2[T dtypes.NativeType](b *XlaBuilder, rows [][]T) (*Op, error) {
	flat, numRows, numCols := flattenMatrix(rows)
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantR2")
	}
	cOp := nativeFor[T]().constantR2(b.wrapper.c, unsafe.SliceData(flat), C.size_t(numRows), C.size_t(numCols))
	return b.newOp(cOp, "ConstantR2")
}

// ConstantLiteral returns a constant with the contents of the literal, which is copied.
// The literal is not modified, and it can be destroyed right after.
func ConstantLiteral(b *XlaBuilder, literal *Literal) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantLiteral")
	}
	if literal.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ConstantLiteral: literal")
	}
	defer runtime.KeepAlive(literal)
	return b.newOp(C.constant_literal(b.wrapper.c, literal.cLiteral), "ConstantLiteral")
}

// scalarOfType creates one of the special scalar constants for an element type.
func scalarOfType(b *XlaBuilder, et dtypes.ElementType, opName string,
	fn func(b C.xla_builder, et C.int) C.xla_op) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, opName)
	}
	if !et.IsValid() {
		return nil, errors.Errorf("%s: invalid element type %s", opName, et)
	}
	return b.newOp(fn(b.wrapper.c, C.int(et)), opName)
}

// Zero returns the scalar 0 (or false) of the given element type.
func Zero(b *XlaBuilder, et dtypes.ElementType) (*Op, error) {
	return scalarOfType(b, et, "Zero", func(b C.xla_builder, et C.int) C.xla_op { return C.op_zero(b, et) })
}

// One returns the scalar 1 (or true) of the given element type.
func One(b *XlaBuilder, et dtypes.ElementType) (*Op, error) {
	return scalarOfType(b, et, "One", func(b C.xla_builder, et C.int) C.xla_op { return C.op_one(b, et) })
}

// MinValue returns the lowest value of the element type: -inf for floating point types.
func MinValue(b *XlaBuilder, et dtypes.ElementType) (*Op, error) {
	return scalarOfType(b, et, "MinValue", func(b C.xla_builder, et C.int) C.xla_op { return C.op_min_value(b, et) })
}

// MaxValue returns the highest value of the element type: +inf for floating point types.
func MaxValue(b *XlaBuilder, et dtypes.ElementType) (*Op, error) {
	return scalarOfType(b, et, "MaxValue", func(b C.xla_builder, et C.int) C.xla_op { return C.op_max_value(b, et) })
}

// Iota1 returns the vector [0, 1, ..., n-1] of the given element type.
func Iota1(b *XlaBuilder, et dtypes.ElementType, n int) (*Op, error) {
	if n < 0 {
		return nil, errors.Errorf("Iota1: invalid negative length %d", n)
	}
	return scalarOfType(b, et, "Iota1", func(b C.xla_builder, et C.int) C.xla_op {
		return C.op_iota1(b, et, C.size_t(n))
	})
}

// Iota returns an array with the given dimensions, whose values are incremented along iotaAxis,
// and constant along the other axes.
func Iota(b *XlaBuilder, et dtypes.ElementType, dims []int64, iotaAxis int) (*Op, error) {
	if iotaAxis < 0 || iotaAxis >= len(dims) {
		return nil, errors.Errorf("Iota: iotaAxis %d out of range for dimensions %v", iotaAxis, dims)
	}
	cDims, rank := cInt64Array(dims)
	defer cFree(cDims)
	return scalarOfType(b, et, "Iota", func(b C.xla_builder, et C.int) C.xla_op {
		return C.op_iota(b, et, rank, cDims, C.int64_t(iotaAxis))
	})
}

// Parameter creates an input parameter for the computation, with the given element type and dimensions.
//
// The index is the position of the parameter in the compiled computation's input list: parameters of a
// computation must have indices 0, 1, ..., n-1. A negative dimension declares a dynamic dimension bounded
// by its absolute value (see shapes.DynamicDim).
func Parameter(b *XlaBuilder, index int64, et dtypes.ElementType, dims []int64, name string) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Parameter")
	}
	if !et.IsValid() {
		return nil, errors.Errorf("Parameter %q: invalid element type %s", name, et)
	}
	rank, err := cCount(len(dims))
	if err != nil {
		return nil, errors.WithMessagef(err, "Parameter %q", name)
	}
	cDims, _ := cInt64Array(dims)
	defer cFree(cDims)
	cName := C.CString(name)
	defer cFree(cName)
	cOp := C.parameter(b.wrapper.c, C.int64_t(index), C.int(et), rank, cDims, cName)
	return b.newOp(cOp, "Parameter")
}

// ParameterWithShape creates an input parameter for the computation with an arbitrary shape,
// including tuples.
func ParameterWithShape(b *XlaBuilder, index int64, shape shapes.Shape, name string) (*Op, error) {
	if b.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "ParameterWithShape")
	}
	cShape, err := cShapeFromShape(shape)
	if err != nil {
		return nil, errors.WithMessagef(err, "ParameterWithShape %q", name)
	}
	// parameter_s copies the shape.
	defer C.shape_free(cShape)
	cName := C.CString(name)
	defer cFree(cName)
	return b.newOp(C.parameter_s(b.wrapper.c, C.int64_t(index), cShape, cName), "ParameterWithShape")
}
