package runconfig

import (
	"math"

	"fortio.org/safecast"
	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Input holds the value of one parameter of a module: a dense array given in row-major order.
//
// Values are given as TOML numbers and converted to the element type. Conversions to integer types
// must be exact. For booleans, any non-zero value is true.
type Input struct {
	DType string `toml:"dtype"`

	// Dims of the array. Empty for a scalar.
	Dims   []int64   `toml:"dims"`
	Values []float64 `toml:"values"`
}

// ElementType of the input.
func (in *Input) ElementType() (dtypes.ElementType, error) {
	et, err := dtypes.ElementTypeFromName(in.DType)
	if err != nil {
		return dtypes.InvalidElementType, err
	}
	if et.IsComplex() {
		return dtypes.InvalidElementType, errors.Errorf("complex inputs (%s) are not supported in run files", et)
	}
	return et, nil
}

// Size returns the number of elements of the input, given its dimensions.
// It fails if the count overflows an int.
func (in *Input) Size() (int, error) {
	for axis, dim := range in.Dims {
		if dim < 0 {
			return 0, errors.Errorf("dimension of axis %d is %d: only static dimensions can be given as inputs", axis, dim)
		}
	}
	count, err := shapes.ArrayShape{Dimensions: in.Dims}.ElementCount()
	if err != nil {
		return 0, errors.WithMessagef(err, "input dims %v", in.Dims)
	}
	size, err := safecast.Conv[int](count)
	if err != nil {
		return 0, errors.Wrapf(err, "input dims %v", in.Dims)
	}
	return size, nil
}

// Validate checks the element type and that the number of values matches the dimensions.
func (in *Input) Validate() error {
	if _, err := in.ElementType(); err != nil {
		return err
	}
	size, err := in.Size()
	if err != nil {
		return err
	}
	if size != len(in.Values) {
		return errors.Errorf("dims %v require %d values, got %d", in.Dims, size, len(in.Values))
	}
	return nil
}

// Flat returns the values converted to a slice of the Go type of the element type: e.g. []float32
// for F32, []bool for PRED, []float16.Float16 for F16.
func (in *Input) Flat() (any, error) {
	et, err := in.ElementType()
	if err != nil {
		return nil, err
	}
	switch et {
	case dtypes.Bool:
		flat := make([]bool, len(in.Values))
		for ii, v := range in.Values {
			flat[ii] = v != 0
		}
		return flat, nil
	case dtypes.Int8:
		return convertInts[int8](in.Values)
	case dtypes.Int16:
		return convertInts[int16](in.Values)
	case dtypes.Int32:
		return convertInts[int32](in.Values)
	case dtypes.Int64:
		return convertInts[int64](in.Values)
	case dtypes.Uint8:
		return convertInts[uint8](in.Values)
	case dtypes.Uint16:
		return convertInts[uint16](in.Values)
	case dtypes.Uint32:
		return convertInts[uint32](in.Values)
	case dtypes.Uint64:
		return convertInts[uint64](in.Values)
	case dtypes.Float16:
		flat := make([]float16.Float16, len(in.Values))
		for ii, v := range in.Values {
			flat[ii] = float16FromFloat64(v)
		}
		return flat, nil
	case dtypes.BFloat16:
		flat := make([]bfloat16.BFloat16, len(in.Values))
		for ii, v := range in.Values {
			flat[ii] = bfloat16.FromFloat64(v)
		}
		return flat, nil
	case dtypes.Float32:
		flat := make([]float32, len(in.Values))
		for ii, v := range in.Values {
			flat[ii] = float32(v)
		}
		return flat, nil
	case dtypes.Float64:
		return in.Values, nil
	}
	return nil, errors.Errorf("element type %s not supported in run files", et)
}

func convertInts[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](values []float64) ([]T, error) {
	flat := make([]T, len(values))
	for ii, v := range values {
		converted, err := safecast.Convert[T](v)
		if err != nil {
			return nil, errors.Wrapf(err, "value #%d (%g) can't be converted to %s", ii, v, dtypes.ElementTypeOf[T]())
		}
		flat[ii] = converted
	}
	return flat, nil
}

// float16FromFloat64 rounds v to the nearest Float16 (ties to even).
// Going through float32 alone may round twice, so the neighbours of that first guess are checked.
func float16FromFloat64(v float64) float16.Float16 {
	guess := float16.Fromfloat32(float32(v))
	if guess.IsNaN() || guess.IsInf(0) {
		return guess
	}
	best, bestDiff := guess, math.Abs(float64(guess.Float32())-v)
	for _, bits := range []uint16{guess.Bits() - 1, guess.Bits() + 1} {
		candidate := float16.Frombits(bits)
		if candidate.IsNaN() || candidate.IsInf(0) {
			continue
		}
		diff := math.Abs(float64(candidate.Float32()) - v)
		if diff < bestDiff || (diff == bestDiff && candidate.Bits()&1 == 0 && best.Bits()&1 == 1) {
			best, bestDiff = candidate, diff
		}
	}
	return best
}
