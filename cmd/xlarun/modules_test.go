package main

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/goxla/internal/runconfig"
	"github.com/gomlx/goxla/xla"
	"github.com/stretchr/testify/require"
)

const sumDiffHlo = `HloModule sum_diff

ENTRY main {
  x = f32[3] parameter(0)
  y = f32[3] parameter(1)
  sum = f32[3] add(x, y)
  diff = f32[3] subtract(x, y)
  ROOT out = (f32[3], f32[3]) tuple(sum, diff)
}
`

func newTestClient(t *testing.T) *xla.Client {
	cfg, err := xla.DefaultClientConfig()
	require.NoError(t, err)
	client, err := xla.NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Destroy)
	return client
}

func writeModule(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func decodeFloat32s(data []byte) []float32 {
	values := make([]float32, len(data)/4)
	for ii := range values {
		values[ii] = math.Float32frombits(binary.NativeEndian.Uint32(data[4*ii:]))
	}
	return values
}

func TestFlattenTuple(t *testing.T) {
	inner, err := xla.NewTupleLiteral(xla.NewVec1Literal([]int32{2, 3}), xla.NewScalarLiteral(int32(4)))
	require.NoError(t, err)
	tuple, err := xla.NewTupleLiteral(xla.NewScalarLiteral(int32(1)), inner)
	require.NoError(t, err)

	arrays, err := flattenTuple(tuple)
	require.NoError(t, err)
	require.True(t, tuple.IsNil(), "the tuple must be consumed")
	require.True(t, inner.IsNil())
	var got [][]int32
	for _, array := range arrays {
		values, err := xla.LiteralToVec[int32](array)
		require.NoError(t, err)
		got = append(got, values)
	}
	destroyLiterals(arrays)
	require.Equal(t, [][]int32{{1}, {2, 3}, {4}}, got)

	// A non-tuple is returned as is.
	scalar := xla.NewScalarLiteral(float32(7))
	arrays, err = flattenTuple(scalar)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	require.Same(t, scalar, arrays[0])
	scalar.Destroy()

	// A destroyed literal is neither a tuple nor usable: it is returned as is, and reading it fails.
	_, err = arrayOutput(0, scalar)
	require.Error(t, err)
}

func TestRunModule(t *testing.T) {
	client := newTestClient(t)
	configs := []runconfig.Module{{
		Path: writeModule(t, "sum_diff.hlo", sumDiffHlo),
		Inputs: []runconfig.Input{
			{DType: "F32", Dims: []int64{3}, Values: []float64{10, 20, 30}},
			{DType: "F32", Dims: []int64{3}, Values: []float64{1, 2, 3}},
		},
	}}
	modules, err := loadModules(configs, 2)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	defer modules[0].proto.Destroy()

	result, err := runModule(client, modules[0])
	require.NoError(t, err)
	require.Len(t, result.Outputs, 2)
	for _, out := range result.Outputs {
		require.NoError(t, out.Validate())
		require.Equal(t, "F32", out.DType)
		require.Equal(t, []int64{3}, out.Dims)
	}
	require.Equal(t, []float32{11, 22, 33}, decodeFloat32s(result.Outputs[0].Data))
	require.Equal(t, []float32{9, 18, 27}, decodeFloat32s(result.Outputs[1].Data))
	require.Zero(t, client.NumExecutables(), "the executable must be released after the run")

	// An invalid input fails the run, and releases the inputs already converted and the executable.
	literalsBefore := xla.HandlesAlive(xla.LiteralHandle)
	modules[0].config.Inputs[1] = runconfig.Input{DType: "U8", Dims: []int64{3}, Values: []float64{1, 2, 256}}
	_, err = runModule(client, modules[0])
	require.Error(t, err)
	require.Zero(t, client.NumExecutables())
	require.LessOrEqual(t, xla.HandlesAlive(xla.LiteralHandle), literalsBefore)
}

func TestLoadModulesError(t *testing.T) {
	protosBefore := xla.HandlesAlive(xla.ModuleProtoHandle)
	configs := []runconfig.Module{
		{Path: writeModule(t, "sum_diff.hlo", sumDiffHlo)},
		{Path: filepath.Join(t.TempDir(), "missing.hlo")},
		{Path: writeModule(t, "broken.hlo", "HloModule broken\nENTRY {")},
	}
	_, err := loadModules(configs, 1)
	require.Error(t, err)
	require.Equal(t, protosBefore, xla.HandlesAlive(xla.ModuleProtoHandle),
		"modules loaded before the failure must be released")
}
