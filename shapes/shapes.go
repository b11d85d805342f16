// Package shapes defines ArrayShape and Shape: the static shape of values built, staged and returned by XLA.
//
// Shapes are plain Go values, they hold no native resources.
//
// A dimension may be negative to denote a dynamic dimension: a dimension of size -d means "dynamic, with
// upper bound d". Dynamic dimensions are an explicit tag (see IsDynamicDim), never a size: counting elements
// of a dynamic shape is an error (ErrDynamicShape), and equality compares the tags exactly.
package shapes

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/goxla/dtypes"
	"github.com/pkg/errors"
)

// ErrDynamicShape is returned when a static element count is requested from a shape with dynamic dimensions.
var ErrDynamicShape = errors.New("shape has dynamic dimensions")

// ErrShapeTooLarge is returned when the number of elements or bytes of a shape doesn't fit an int64.
var ErrShapeTooLarge = errors.New("shape is too large")

// mulCount returns count*factor for non-negative values, or false if it overflows an int64.
func mulCount(count, factor int64) (int64, bool) {
	if factor != 0 && count > math.MaxInt64/factor {
		return 0, false
	}
	return count * factor, true
}

// IsDynamicDim returns whether the dimension value is a dynamic dimension tag.
func IsDynamicDim(dim int64) bool {
	return dim < 0
}

// DynamicDim returns the tag of a dynamic dimension with the given upper bound.
func DynamicDim(bound int64) int64 {
	if bound <= 0 {
		exceptions.Panicf("DynamicDim(%d): the upper bound of a dynamic dimension must be > 0", bound)
	}
	return -bound
}

// DimBound returns the upper bound of the dimension: the dimension itself if static.
func DimBound(dim int64) int64 {
	if dim < 0 {
		return -dim
	}
	return dim
}

// ArrayShape is the shape of an array: its element type and the dimensions of each axis.
// A scalar has no dimensions.
type ArrayShape struct {
	ElementType dtypes.ElementType
	Dimensions  []int64
}

// MakeArrayShape returns an ArrayShape with a copy of the dimensions given.
// Negative dimensions denote dynamic dimensions.
func MakeArrayShape(et dtypes.ElementType, dims ...int64) ArrayShape {
	return ArrayShape{ElementType: et, Dimensions: slices.Clone(dims)}
}

// ArrayShapeOf returns the ArrayShape with the element type corresponding to T.
func ArrayShapeOf[T dtypes.ArrayElement](dims ...int64) ArrayShape {
	return MakeArrayShape(dtypes.ElementTypeOf[T](), dims...)
}

// Rank returns the number of axes. Scalars have rank 0.
func (s ArrayShape) Rank() int {
	return len(s.Dimensions)
}

// IsScalar returns whether the shape has rank 0.
func (s ArrayShape) IsScalar() bool {
	return len(s.Dimensions) == 0
}

// Dims returns a copy of the dimensions.
func (s ArrayShape) Dims() []int64 {
	return slices.Clone(s.Dimensions)
}

// IsDynamic returns whether any of the dimensions is dynamic.
func (s ArrayShape) IsDynamic() bool {
	return slices.ContainsFunc(s.Dimensions, IsDynamicDim)
}

// DynamicAxes returns the axes with dynamic dimensions.
func (s ArrayShape) DynamicAxes() []int {
	var axes []int
	for axis, dim := range s.Dimensions {
		if IsDynamicDim(dim) {
			axes = append(axes, axis)
		}
	}
	return axes
}

// Bounds returns the dimensions with the dynamic ones replaced by their upper bound.
func (s ArrayShape) Bounds() []int64 {
	bounds := make([]int64, len(s.Dimensions))
	for ii, dim := range s.Dimensions {
		bounds[ii] = DimBound(dim)
	}
	return bounds
}

// ElementCount returns the number of elements of a static shape. A scalar has 1 element.
// It returns ErrDynamicShape if any of the dimensions is dynamic.
func (s ArrayShape) ElementCount() (int64, error) {
	if s.IsDynamic() {
		return 0, errors.Wrapf(ErrDynamicShape, "ElementCount of %s", s)
	}
	count := int64(1)
	for _, dim := range s.Dimensions {
		var ok bool
		if count, ok = mulCount(count, dim); !ok {
			return 0, errors.Wrapf(ErrShapeTooLarge, "ElementCount of %s", s)
		}
	}
	return count, nil
}

// UpperBoundElementCount returns the maximum number of elements, using the upper bound of dynamic dimensions.
// It saturates at math.MaxInt64.
func (s ArrayShape) UpperBoundElementCount() int64 {
	count := int64(1)
	for _, dim := range s.Dimensions {
		var ok bool
		if count, ok = mulCount(count, DimBound(dim)); !ok {
			return math.MaxInt64
		}
	}
	return count
}

// SizeInBytes returns the number of bytes used by a static shape.
func (s ArrayShape) SizeInBytes() (int64, error) {
	count, err := s.ElementCount()
	if err != nil {
		return 0, err
	}
	size, ok := mulCount(count, int64(s.ElementType.SizeInBytes()))
	if !ok {
		return 0, errors.Wrapf(ErrShapeTooLarge, "SizeInBytes of %s", s)
	}
	return size, nil
}

// Equal returns whether both shapes have the same element type and the same dimensions.
// Dynamic dimensions are only equal to the same dynamic tag.
func (s ArrayShape) Equal(other ArrayShape) bool {
	return s.ElementType == other.ElementType && slices.Equal(s.Dimensions, other.Dimensions)
}

// String implements fmt.Stringer. Dynamic dimensions are printed as "<=bound".
func (s ArrayShape) String() string {
	parts := make([]string, len(s.Dimensions))
	for ii, dim := range s.Dimensions {
		if IsDynamicDim(dim) {
			parts[ii] = fmt.Sprintf("<=%d", DimBound(dim))
		} else {
			parts[ii] = fmt.Sprintf("%d", dim)
		}
	}
	return fmt.Sprintf("(%s)[%s]", s.ElementType, strings.Join(parts, " "))
}
