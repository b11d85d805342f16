package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Literal is a value (an array or a tuple of values) on the host, used to feed constants and inputs of a
// computation, and to read back its outputs.
//
// It owns its native handle: call Literal.Destroy to release it as soon as it is no longer needed, or else
// it is released when garbage collected.
type Literal struct {
	cLiteral C.literal
}

// newLiteral wraps the native literal and registers the finalizer.
func newLiteral(cLiteral C.literal) *Literal {
	l := &Literal{cLiteral: cLiteral}
	handleAcquired(LiteralHandle)
	runtime.SetFinalizer(l, func(l *Literal) { l.Destroy() })
	return l
}

// newLiteralOrError checks that the native call returned a literal.
func newLiteralOrError(cLiteral C.literal, what string) (*Literal, error) {
	if cLiteral == nil {
		return nil, errors.Errorf("XLA failed to create literal for %s", what)
	}
	return newLiteral(cLiteral), nil
}

// NewScalarLiteral creates a scalar Literal initialized with the given value.
func NewScalarLiteral[T dtypes.NativeType](value T) *Literal {
	return newLiteral(nativeFor[T]().createR0(value))
}

// NewVec1Literal creates a vector Literal with the given values.
func NewVec1Literal[T dtypes.NativeType](values []T) *Literal {
	return newLiteral(nativeFor[T]().createR1(unsafe.SliceData(values), C.size_t(len(values))))
}

// NewMatrixLiteral creates a matrix Literal with the given rows.
//
// It panics with ErrRaggedMatrix (wrapped) if the rows have different lengths.
func NewMatrixLiteral[T dtypes.NativeType](rows [][]T) *Literal {
	flat, numRows, numCols := flattenMatrix(rows)
	return newLiteral(nativeFor[T]().createR2(unsafe.SliceData(flat), C.size_t(numRows), C.size_t(numCols)))
}

// NewLiteralFromShape creates a zero-initialized literal with the given shape.
// The shape can't have dynamic dimensions.
func NewLiteralFromShape(shape shapes.ArrayShape) (*Literal, error) {
	if !shape.ElementType.IsValid() {
		return nil, errors.Errorf("NewLiteralFromShape: invalid element type in %s", shape)
	}
	if shape.IsDynamic() {
		return nil, errors.Wrapf(shapes.ErrDynamicShape, "NewLiteralFromShape(%s)", shape)
	}
	cDims, rank := cInt64Array(shape.Dimensions)
	defer cFree(cDims)
	return newLiteralOrError(C.literal_create_from_shape(C.int(shape.ElementType), cDims, rank), shape.String())
}

// NewArrayLiteral creates a Literal initialized from the array flat data (in row-major order) and the
// dimensions of the array.
//
// If dims is omitted, it is assumed to represent a 1D-array of the length given.
// Differently from NewVec1Literal, it accepts any ArrayElement type, including Float16, BFloat16, bool and
// complex numbers.
func NewArrayLiteral[T dtypes.ArrayElement](flat []T, dims ...int64) (*Literal, error) {
	if len(dims) == 0 {
		dims = []int64{int64(len(flat))}
	}
	shape := shapes.ArrayShapeOf[T](dims...)
	count, err := shape.ElementCount()
	if err != nil {
		return nil, errors.WithMessage(err, "NewArrayLiteral")
	}
	if count != int64(len(flat)) {
		return nil, errors.Errorf("NewArrayLiteral got a slice of length %d, but the shape %s given has %d elements",
			len(flat), shape, count)
	}
	cDims, rank := cInt64Array(dims)
	defer cFree(cDims)
	sizeInBytes := C.size_t(len(flat) * dtypes.SizeOf[T]())
	cLiteral := C.literal_create_from_shape_and_data(C.int(shape.ElementType), cDims, rank,
		unsafe.Pointer(unsafe.SliceData(flat)), sizeInBytes)
	return newLiteralOrError(cLiteral, shape.String())
}

// NewTupleLiteral creates a tuple Literal with the given elements.
//
// The elements are consumed: their contents are moved to the new tuple, and they are destroyed.
func NewTupleLiteral(elements ...*Literal) (*Literal, error) {
	cElements := make([]C.literal, len(elements))
	for ii, element := range elements {
		if element.IsNil() {
			return nil, errors.Wrapf(ErrDestroyed, "NewTupleLiteral: element #%d", ii)
		}
		cElements[ii] = element.cLiteral
	}
	cArray := cMallocArrayFromSlice(cElements)
	defer cFree(cArray)
	cTuple := C.literal_make_tuple_owned(cArray, C.size_t(len(cElements)))
	// The contents were moved, but the element handles must still be freed.
	for _, element := range elements {
		element.Destroy()
	}
	return newLiteralOrError(cTuple, "tuple")
}

// Destroy the Literal, releasing its resources. The Literal is no longer valid afterward.
// This is automatically called if the Literal is garbage collected.
func (l *Literal) Destroy() {
	if l == nil || l.cLiteral == nil {
		return
	}
	C.literal_free(l.cLiteral)
	l.cLiteral = nil
	handleReleased(LiteralHandle)
}

// IsNil returns true if either l is nil, or its underlying C pointer is nil.
func (l *Literal) IsNil() bool {
	return l == nil || l.cLiteral == nil
}

// String implements fmt.Stringer.
func (l *Literal) String() string {
	if l.IsNil() {
		return "Literal(nil)"
	}
	shape, err := l.Shape()
	if err != nil {
		return "Literal(?)"
	}
	return fmt.Sprintf("Literal(%s)", shape)
}

// Shape of the literal, which can be a tuple.
func (l *Literal) Shape() (shapes.Shape, error) {
	if l.IsNil() {
		return shapes.Shape{}, errors.Wrap(ErrDestroyed, "Literal.Shape")
	}
	defer runtime.KeepAlive(l)
	var cShape C.shape
	C.literal_shape(l.cLiteral, &cShape)
	return shapeFromCAndFree(cShape)
}

// ArrayShape of the literal. It fails if the literal is a tuple.
func (l *Literal) ArrayShape() (shapes.ArrayShape, error) {
	shape, err := l.Shape()
	if err != nil {
		return shapes.ArrayShape{}, err
	}
	return shape.ArrayShape()
}

// TupleSize returns the number of elements of a tuple literal, and whether the literal is a tuple.
func (l *Literal) TupleSize() (int, bool) {
	shape, err := l.Shape()
	if err != nil {
		return 0, false
	}
	return shape.TupleSize()
}

func (l *Literal) isTuple() bool {
	return dtypes.PrimitiveType(C.literal_element_type(l.cLiteral)) == dtypes.Tuple
}

// ElementType of the elements of the literal. It fails with a *dtypes.NotAnElementTypeError for tuples.
func (l *Literal) ElementType() (dtypes.ElementType, error) {
	if l.IsNil() {
		return dtypes.InvalidElementType, errors.Wrap(ErrDestroyed, "Literal.ElementType")
	}
	defer runtime.KeepAlive(l)
	return dtypes.PrimitiveType(C.literal_element_type(l.cLiteral)).ElementType()
}

// ElementCount returns the number of elements of an array literal. It returns 0 for tuples.
func (l *Literal) ElementCount() int {
	if l.IsNil() {
		return 0
	}
	defer runtime.KeepAlive(l)
	if l.isTuple() {
		return 0
	}
	count, err := goCount(int64(C.literal_element_count(l.cLiteral)))
	if err != nil {
		klog.Errorf("Literal.ElementCount: %+v", err)
		return 0
	}
	return count
}

// SizeInBytes returns the size of the data of an array literal.
func (l *Literal) SizeInBytes() int {
	if l.IsNil() {
		return 0
	}
	defer runtime.KeepAlive(l)
	size, err := goCount(int64(C.literal_size_bytes(l.cLiteral)))
	if err != nil {
		klog.Errorf("Literal.SizeInBytes: %+v", err)
		return 0
	}
	return size
}

// checkElementType returns an error if the literal elements are not of type T.
func checkElementType[T dtypes.ArrayElement](l *Literal) error {
	et, err := l.ElementType()
	if err != nil {
		return err
	}
	if want := dtypes.ElementTypeOf[T](); et != want {
		return errors.Wrapf(ErrElementTypeMismatch, "literal has element type %s, but %s was requested", et, want)
	}
	return nil
}

// LiteralToVec returns a copy of the elements of the literal as a flat slice (in row-major order).
// It fails with ErrElementTypeMismatch if T doesn't match the literal's element type.
func LiteralToVec[T dtypes.ArrayElement](l *Literal) ([]T, error) {
	if err := checkElementType[T](l); err != nil {
		return nil, errors.WithMessage(err, "LiteralToVec")
	}
	defer runtime.KeepAlive(l)
	values := make([]T, l.ElementCount())
	if len(values) > 0 {
		sizeInBytes := C.size_t(len(values) * dtypes.SizeOf[T]())
		C.literal_copy_to(l.cLiteral, unsafe.Pointer(unsafe.SliceData(values)), sizeInBytes)
	}
	return values, nil
}

// LiteralFirstElement returns the first element of the literal.
// It fails with ErrElementTypeMismatch if T doesn't match the literal's element type.
func LiteralFirstElement[T dtypes.NativeType](l *Literal) (T, error) {
	var zero T
	if err := checkElementType[T](l); err != nil {
		return zero, errors.WithMessage(err, "LiteralFirstElement")
	}
	if l.ElementCount() == 0 {
		return zero, errors.Errorf("LiteralFirstElement: literal %s has no elements", l)
	}
	defer runtime.KeepAlive(l)
	return nativeFor[T]().firstElement(l.cLiteral), nil
}

// CopyRawTo copies the raw data of an array literal to dst, which must have exactly SizeInBytes bytes.
func (l *Literal) CopyRawTo(dst []byte) error {
	if l.IsNil() {
		return errors.Wrap(ErrDestroyed, "Literal.CopyRawTo")
	}
	if size := l.SizeInBytes(); len(dst) != size {
		return errors.Errorf("Literal.CopyRawTo: literal %s has %d bytes, got buffer of %d bytes", l, size, len(dst))
	}
	defer runtime.KeepAlive(l)
	if len(dst) > 0 {
		C.literal_copy_to(l.cLiteral, unsafe.Pointer(unsafe.SliceData(dst)), C.size_t(len(dst)))
	}
	return nil
}

// CopyRawFrom overwrites the data of an array literal with src, which must have exactly SizeInBytes bytes.
func (l *Literal) CopyRawFrom(src []byte) error {
	if l.IsNil() {
		return errors.Wrap(ErrDestroyed, "Literal.CopyRawFrom")
	}
	if size := l.SizeInBytes(); len(src) != size {
		return errors.Errorf("Literal.CopyRawFrom: literal %s has %d bytes, got buffer of %d bytes", l, size, len(src))
	}
	defer runtime.KeepAlive(l)
	if len(src) > 0 {
		C.literal_copy_from(l.cLiteral, unsafe.Pointer(unsafe.SliceData(src)), C.size_t(len(src)))
	}
	return nil
}

// DecomposeTuple moves the elements of a tuple literal out to new literals, owned by the caller.
//
// It is destructive: l is destroyed, and it is no longer valid afterward. It fails with ErrNotATuple
// if l is not a tuple, in which case l is left untouched.
func (l *Literal) DecomposeTuple() ([]*Literal, error) {
	if l.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Literal.DecomposeTuple")
	}
	n, ok := l.TupleSize()
	if !ok {
		return nil, errors.Wrapf(ErrNotATuple, "DecomposeTuple(%s)", l)
	}
	cElements := make([]C.literal, max(n, 1))
	C.literal_decompose_tuple(l.cLiteral, unsafe.SliceData(cElements), C.size_t(n))
	l.Destroy()

	// Every returned handle is owned before checking for failures, so none is leaked.
	elements := make([]*Literal, n)
	missing := -1
	for ii, cElement := range cElements[:n] {
		if cElement == nil {
			if missing < 0 {
				missing = ii
			}
			continue
		}
		elements[ii] = newLiteral(cElement)
	}
	if missing >= 0 {
		for _, element := range elements {
			element.Destroy()
		}
		return nil, errors.Errorf("DecomposeTuple: XLA returned nil for element #%d", missing)
	}
	return elements, nil
}

// Clone returns an independent copy of the literal.
func (l *Literal) Clone() (*Literal, error) {
	if l.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Literal.Clone")
	}
	defer runtime.KeepAlive(l)
	return newLiteralOrError(C.literal_clone(l.cLiteral), "clone")
}

// Reshape returns a new literal with the same data and the given dimensions.
// The total number of elements must be preserved.
func (l *Literal) Reshape(dims ...int64) (*Literal, error) {
	if l.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Literal.Reshape")
	}
	defer runtime.KeepAlive(l)
	cDims, rank := cInt64Array(dims)
	defer cFree(cDims)
	var cLiteral C.literal
	if err := statusToError(C.literal_reshape(l.cLiteral, cDims, rank, &cLiteral)); err != nil {
		return nil, errors.WithMessagef(err, "Literal.Reshape(%v)", dims)
	}
	return newLiteral(cLiteral), nil
}

// Convert returns a new literal with the elements converted to the given element type.
func (l *Literal) Convert(et dtypes.ElementType) (*Literal, error) {
	if l.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Literal.Convert")
	}
	if !et.IsValid() {
		return nil, errors.Errorf("Literal.Convert: invalid element type %s", et)
	}
	defer runtime.KeepAlive(l)
	var cLiteral C.literal
	if err := statusToError(C.literal_convert(l.cLiteral, C.int(et), &cLiteral)); err != nil {
		return nil, errors.WithMessagef(err, "Literal.Convert(%s)", et)
	}
	return newLiteral(cLiteral), nil
}
