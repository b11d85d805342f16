// Package bfloat16 holds the host representation of the BF16 ("brain floating point") element type.
//
// Only conversions are provided: arithmetic on BF16 values is expected to happen on device.
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 is the upper half of an IEEE 754 float32: 1 sign bit, 8 exponent bits and 7 mantissa bits.
type BFloat16 uint16

// Float32 converts to float32 exactly.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 converts a float32 to a BFloat16, rounding to the nearest even value.
// NaN values are preserved as a quiet NaN.
func FromFloat32(x float32) BFloat16 {
	bits := math.Float32bits(x)
	if x != x {
		return BFloat16((bits >> 16) | 0x0040)
	}
	rounding := uint32(0x7FFF) + ((bits >> 16) & 1)
	return BFloat16((bits + rounding) >> 16)
}

// FromFloat64 converts a float64 to a BFloat16.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits converts the raw bits to a BFloat16.
func FromBits(bits uint16) BFloat16 {
	return BFloat16(bits)
}

// Bits returns the raw bits.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// String implements fmt.Stringer, and prints a float representation of the BFloat16.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}

// Inf returns a BFloat16 infinity: positive if sign >= 0, negative otherwise.
func Inf(sign int) BFloat16 {
	if sign >= 0 {
		return BFloat16(0x7F80)
	}
	return BFloat16(0xFF80)
}

// SmallestNonzero is the smallest positive denormal BFloat16 value (about 9.18e-41).
const SmallestNonzero = BFloat16(0x0001)
