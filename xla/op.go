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

// Op is the handle to one operation of a computation graph being built by an XlaBuilder.
//
// Ops are owned by their builder: they are never released individually, and they become invalid when
// the builder is destroyed. Using an invalid Op returns ErrDestroyed.
type Op struct {
	builder *XlaBuilder
	cOp     C.xla_op

	// index of the op in the builder, only used for logging.
	index int
}

// Builder returns the XlaBuilder that created the op.
func (op *Op) Builder() *XlaBuilder {
	if op == nil {
		return nil
	}
	return op.builder
}

// IsValid returns whether the op can still be used, that is, its builder has not been destroyed.
func (op *Op) IsValid() bool {
	return op != nil && op.cOp != nil && !op.builder.IsNil()
}

// String implements fmt.Stringer.
func (op *Op) String() string {
	if !op.IsValid() {
		return "Op(invalid)"
	}
	shape, err := op.Shape()
	if err != nil {
		return fmt.Sprintf("Op(#%d in %q)", op.index, op.builder.name)
	}
	return fmt.Sprintf("Op(#%d in %q, %s)", op.index, op.builder.name, shape)
}

// checkOps verifies that all ops are valid and belong to the same builder, which is returned.
func checkOps(opName string, ops ...*Op) (*XlaBuilder, error) {
	var b *XlaBuilder
	for ii, op := range ops {
		if !op.IsValid() {
			return nil, errors.Wrapf(ErrDestroyed, "%s: operand #%d", opName, ii)
		}
		if b == nil {
			b = op.builder
		} else if op.builder != b {
			return nil, errors.Wrapf(ErrBuilderMismatch, "%s: operand #%d created by %s, but operand #0 created by %s",
				opName, ii, op.builder, b)
		}
	}
	if b == nil {
		return nil, errors.Errorf("%s: no operands given", opName)
	}
	return b, nil
}

// Shape returns the shape of the op's output.
func (op *Op) Shape() (shapes.Shape, error) {
	if !op.IsValid() {
		return shapes.Shape{}, errors.WithStack(ErrDestroyed)
	}
	defer runtime.KeepAlive(op.builder)
	var cShape C.shape
	err := statusToError(C.get_shape(op.builder.wrapper.c, op.cOp, &cShape))
	if err != nil {
		return shapes.Shape{}, errors.WithMessage(err, "while getting the shape of an op")
	}
	return shapeFromCAndFree(cShape)
}

// ArrayShape returns the shape of the op's output, which must be an array.
func (op *Op) ArrayShape() (shapes.ArrayShape, error) {
	shape, err := op.Shape()
	if err != nil {
		return shapes.ArrayShape{}, err
	}
	return shape.ArrayShape()
}

// ElementType of the op's output, which must be an array.
func (op *Op) ElementType() (dtypes.ElementType, error) {
	if !op.IsValid() {
		return dtypes.InvalidElementType, errors.WithStack(ErrDestroyed)
	}
	defer runtime.KeepAlive(op.builder)
	var cType C.int
	err := statusToError(C.get_element_type(op.builder.wrapper.c, op.cOp, &cType))
	if err != nil {
		return dtypes.InvalidElementType, errors.WithMessage(err, "while getting the element type of an op")
	}
	return dtypes.PrimitiveType(cType).ElementType()
}

// Rank returns the number of dimensions of the op's output.
func (op *Op) Rank() (int, error) {
	if !op.IsValid() {
		return 0, errors.WithStack(ErrDestroyed)
	}
	defer runtime.KeepAlive(op.builder)
	var cRank C.int
	err := statusToError(C.get_dimensions_size(op.builder.wrapper.c, op.cOp, &cRank))
	if err != nil {
		return 0, errors.WithMessage(err, "while getting the rank of an op")
	}
	return goCount(int32(cRank))
}

// Dims returns the dimensions of the op's output, which must be an array.
// Dynamic dimensions are returned as negative values (see package shapes).
func (op *Op) Dims() ([]int64, error) {
	shape, err := op.ArrayShape()
	if err != nil {
		return nil, err
	}
	return shape.Dims(), nil
}
