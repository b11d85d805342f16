package runconfig

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/gomlx/goxla/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

const sampleRunFile = `
platform = "gpu"

[gpu]
memory_fraction = 0.5
preallocate = true

[[module]]
path = "add_one.hlo"

[[module.input]]
dtype = "F32"
dims = [3]
values = [1, 2, 3]

[[module]]
path = "mean.pb"

[[module.input]]
dtype = "int64"
dims = [2, 2]
values = [1, -2, 3, 4]

[[module.input]]
dtype = "PRED"
values = [1]
`

func TestParse(t *testing.T) {
	f, err := Parse(sampleRunFile)
	require.NoError(t, err)
	assert.Equal(t, "gpu", f.Platform)
	assert.Equal(t, 0.5, f.GPU.MemoryFraction)
	assert.True(t, f.GPU.Preallocate)
	require.Len(t, f.Modules, 2)

	format, err := f.Modules[0].ResolvedFormat()
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)
	format, err = f.Modules[1].ResolvedFormat()
	require.NoError(t, err)
	assert.Equal(t, FormatProto, format)

	flat, err := f.Modules[0].Inputs[0].Flat()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, flat)
	flat, err = f.Modules[1].Inputs[0].Flat()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2, 3, 4}, flat)
	flat, err = f.Modules[1].Inputs[1].Flat()
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, flat)
}

func TestParseErrors(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":        "platform = ",
		"unknown key":   "platforms = \"cpu\"\n[[module]]\npath = \"a.hlo\"",
		"platform":      "platform = \"abacus\"\n[[module]]\npath = \"a.hlo\"",
		"no modules":    "platform = \"cpu\"",
		"no path":       "[[module]]\nformat = \"text\"",
		"format":        "[[module]]\npath = \"a.hlo\"\nformat = \"xml\"",
		"extension":     "[[module]]\npath = \"a.json\"",
		"memory":        "[gpu]\nmemory_fraction = 1.5\n[[module]]\npath = \"a.hlo\"",
		"count":         "[[module]]\npath = \"a.hlo\"\n[[module.input]]\ndtype = \"F32\"\ndims = [2]\nvalues = [1]",
		"dynamic dim":   "[[module]]\npath = \"a.hlo\"\n[[module.input]]\ndtype = \"F32\"\ndims = [-2]\nvalues = [1, 2]",
		"dtype":         "[[module]]\npath = \"a.hlo\"\n[[module.input]]\ndtype = \"F24\"\nvalues = [1]",
		"complex dtype": "[[module]]\npath = \"a.hlo\"\n[[module.input]]\ndtype = \"C64\"\nvalues = [1]",
		"huge dims":     "[[module]]\npath = \"a.hlo\"\n[[module.input]]\ndtype = \"F32\"\ndims = [1099511627776, 1099511627776]\nvalues = []",
	} {
		_, err := Parse(data)
		assert.Errorf(t, err, "run file with %s error should fail", name)
	}
}

func TestInputConversions(t *testing.T) {
	in := Input{DType: "U8", Values: []float64{0, 255}, Dims: []int64{2}}
	flat, err := in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255}, flat)

	in.Values = []float64{0, 256}
	_, err = in.Flat()
	require.Error(t, err, "out of range")
	in.Values = []float64{0.5, 1}
	_, err = in.Flat()
	require.Error(t, err, "not an integer")
	in.DType = "U32"
	in.Values = []float64{-1, 1}
	_, err = in.Flat()
	require.Error(t, err, "negative unsigned")

	in = Input{DType: "F16", Values: []float64{1.5}}
	flat, err = in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []float16.Float16{float16.Fromfloat32(1.5)}, flat)
	in.DType = "bf16"
	flat, err = in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []bfloat16.BFloat16{bfloat16.FromFloat32(1.5)}, flat)
	in.DType = "F64"
	flat, err = in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, flat)

	size, err := (&Input{Dims: []int64{2, 3, 0}}).Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	// 2^40 * 2^40 elements overflow the count: it must not wrap around to 0.
	_, err = (&Input{Dims: []int64{1 << 40, 1 << 40}}).Size()
	require.ErrorIs(t, err, shapes.ErrShapeTooLarge)

	// Signed integers and exact large values.
	in = Input{DType: "S8", Values: []float64{-128, 127}, Dims: []int64{2}}
	flat, err = in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []int8{-128, 127}, flat)
	in = Input{DType: "S64", Values: []float64{1 << 52}}
	flat, err = in.Flat()
	require.NoError(t, err)
	assert.Equal(t, []int64{1 << 52}, flat)
}

func TestFloat16Rounding(t *testing.T) {
	// 1 + 2^-11 + 2^-40 is just above the midpoint between 1 and the next F16 value (1 + 2^-10).
	// Rounding to float32 first drops the 2^-40 and leaves an exact tie, which rounds down to 1.
	v := 1 + math.Ldexp(1, -11) + math.Ldexp(1, -40)
	in := Input{DType: "F16", Values: []float64{v, 1 + math.Ldexp(1, -11), -v, 65504, 1e6}}
	flat, err := in.Flat()
	require.NoError(t, err)
	got := flat.([]float16.Float16)
	assert.Equal(t, float32(1+math.Ldexp(1, -10)), got[0].Float32())
	assert.Equal(t, float32(1), got[1].Float32(), "exact ties round to even")
	assert.Equal(t, float32(-1-math.Ldexp(1, -10)), got[2].Float32())
	assert.Equal(t, float32(65504), got[3].Float32())
	assert.True(t, got[4].IsInf(1))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRunFile), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "add_one.hlo"), f.Modules[0].Path)

	_, err = f.Modules[0].ReadFile()
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, os.WriteFile(f.Modules[0].Path, []byte("HloModule m"), 0o644))
	data, err := f.Modules[0].ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "HloModule m", string(data))

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestResults(t *testing.T) {
	results := []Result{
		{Module: "add_one.hlo", Outputs: []Output{
			{Device: 0, DType: "F32", Dims: []int64{2}, Data: []byte{0, 0, 128, 63, 0, 0, 0, 64}},
		}},
		{Module: "empty.hlo"},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeResults(&buf, results))
	got, err := DecodeResults(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, results[0], got[0])
	assert.Equal(t, "empty.hlo", got[1].Module)
	assert.Empty(t, got[1].Outputs)

	path := filepath.Join(t.TempDir(), "results.msgpack")
	require.NoError(t, WriteResults(path, results))
	got, err = ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, results[0], got[0])

	// Byte count overflows: 2^31 * 2^31 F32 elements.
	huge := Output{DType: "F32", Dims: []int64{1 << 31, 1 << 31}}
	require.ErrorIs(t, huge.Validate(), shapes.ErrShapeTooLarge)

	// Data doesn't match the dims.
	results[0].Outputs[0].Dims = []int64{3}
	buf.Reset()
	require.NoError(t, EncodeResults(&buf, results))
	_, err = DecodeResults(&buf)
	require.Error(t, err)
}
