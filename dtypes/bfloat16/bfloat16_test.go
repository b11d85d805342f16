package bfloat16

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversions(t *testing.T) {
	for _, v := range []float32{0, 1, -2, 0.5, 256, -1024} {
		require.Equal(t, v, FromFloat32(v).Float32())
	}
	require.InDelta(t, 3.140625, FromFloat64(3.14159).Float32(), 1e-6)
	require.True(t, math.IsInf(float64(Inf(1).Float32()), 1))
	require.True(t, math.IsInf(float64(Inf(-1).Float32()), -1))
	nan := FromFloat32(float32(math.NaN())).Float32()
	require.True(t, nan != nan)
	require.Equal(t, uint16(0x3F80), FromFloat32(1).Bits())
	require.Equal(t, "1.5", FromBits(0x3FC0).String())
}
