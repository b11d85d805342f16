package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"unsafe"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
)

// shapeFromC converts a native shape to shapes.Shape. The native shape is not freed.
//
// Tokens and opaque values are returned as shapes.Unsupported.
func shapeFromC(cShape C.shape) shapes.Shape {
	pt := dtypes.PrimitiveType(C.shape_element_type(cShape))
	if pt == dtypes.Tuple {
		n := int(C.shape_tuple_shapes_size(cShape))
		elements := make([]shapes.Shape, n)
		for ii := range n {
			// Tuple elements are borrowed from the parent shape.
			elements[ii] = shapeFromC(C.shape_tuple_shapes(cShape, C.int(ii)))
		}
		return shapes.TupleOf(elements...)
	}
	et, err := pt.ElementType()
	if err != nil {
		return shapes.Unsupported(pt)
	}
	rank := int(C.shape_dimensions_size(cShape))
	dims := make([]int64, rank)
	for axis := range rank {
		dims[axis] = int64(C.shape_dimensions(cShape, C.int(axis)))
	}
	return shapes.Make(et, dims...)
}

// shapeFromCAndFree converts a native shape and frees it.
func shapeFromCAndFree(cShape C.shape) (shapes.Shape, error) {
	if cShape == nil {
		return shapes.Shape{}, errors.New("XLA returned a nil shape")
	}
	defer C.shape_free(cShape)
	return shapeFromC(cShape), nil
}

// cShapeFromShape allocates a native shape. It must be freed with C.shape_free.
func cShapeFromShape(s shapes.Shape) (C.shape, error) {
	switch s.Kind() {
	case shapes.KindArray:
		array, _ := s.ArrayShape()
		if !array.ElementType.IsValid() {
			return nil, errors.Errorf("invalid element type in shape %s", s)
		}
		cDims, rank := cInt64Array(array.Dimensions)
		defer cFree(cDims)
		return C.make_shape_array(C.int(array.ElementType), rank, cDims), nil

	case shapes.KindTuple:
		elements := s.TupleShapes()
		cElements := make([]C.shape, 0, len(elements))
		defer func() {
			for _, cElement := range cElements {
				C.shape_free(cElement)
			}
		}()
		for ii, element := range elements {
			cElement, err := cShapeFromShape(element)
			if err != nil {
				return nil, errors.WithMessagef(err, "tuple element #%d", ii)
			}
			cElements = append(cElements, cElement)
		}
		// make_shape_tuple copies the elements, which are freed by the deferred function above.
		cArray := cMallocArrayFromSlice(cElements)
		defer cFree(cArray)
		return C.make_shape_tuple(C.size_t(len(cElements)), cArray), nil
	}
	return nil, errors.Errorf("shape %s cannot be converted to an XLA shape", s)
}

// cHandles returns a pointer to the first element of a slice of native handles, to be passed as a C array.
// The slice holds only C pointers, so it can be passed to C directly.
func cHandles[T any](handles []T) *T {
	if len(handles) == 0 {
		return nil
	}
	return unsafe.SliceData(handles)
}
