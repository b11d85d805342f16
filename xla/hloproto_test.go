package xla_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	. "github.com/gomlx/goxla/xla"
	"github.com/stretchr/testify/require"
)

// meanComputation builds mean(x) for a dynamic vector x.
func meanComputation(t *testing.T) *XlaComputation {
	builder := NewBuilder("test")
	defer builder.Destroy()
	x := capture(Parameter(builder, 0, dtypes.Float32, []int64{shapes.DynamicDim(2)}, "x")).Test(t)
	mean := capture(ReduceMean(x, false, 0)).Test(t)
	return capture(builder.Build(mean)).Test(t)
}

func TestHloComputations(t *testing.T) {
	comp := meanComputation(t)
	defer comp.Destroy()
	fmt.Printf("computation %q\n", comp.Name())
	proto := capture(comp.Proto()).Test(t)
	defer proto.Destroy()

	comps := capture(proto.Computations()).Test(t)
	require.Equal(t, capture(proto.NumComputations()).Test(t), len(comps))
	require.GreaterOrEqual(t, len(comps), 2, "expected the entry computation and the sum sub-computation")
	var numInstructions int
	opcodes := make(map[string]int)
	for _, c := range comps {
		instrs := capture(c.Instructions()).Test(t)
		require.Equal(t, capture(c.NumInstructions()).Test(t), len(instrs))
		numInstructions += len(instrs)
		for _, instr := range instrs {
			opcode := capture(instr.Opcode()).Test(t)
			opcodes[opcode]++
			instr.Destroy()
		}
		c.Destroy()
	}
	fmt.Printf("  > opcodes: %v\n", opcodes)
	require.Contains(t, opcodes, "reduce")
	require.Contains(t, opcodes, "parameter")

	// The pure Go decoding of the serialized module must agree.
	summary := capture(proto.Summary()).Test(t)
	require.Len(t, summary.Computations, len(comps))
	require.Equal(t, numInstructions, summary.NumInstructions())
	require.Equal(t, opcodes, summary.OpcodeHistogram())
	require.NotNil(t, summary.Entry())

	// The computation can still be compiled.
	client := getClient(t)
	exec := capture(comp.Compile(client)).Test(t)
	got, _ := execArrayOutput[float32](t, exec, NewVec1Literal([]float32{4.2, 1.337}))
	require.Equal(t, []float32{2.7684999}, got)
}

func TestHloModuleLoaders(t *testing.T) {
	comp := meanComputation(t)
	defer comp.Destroy()
	proto := capture(comp.Proto()).Test(t)
	defer proto.Destroy()

	// Binary round trip through a file.
	data := capture(proto.Bytes()).Test(t)
	path := filepath.Join(t.TempDir(), "mean.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded := capture(ModuleFromProtoFile(path, true)).Test(t)
	defer loaded.Destroy()
	require.Equal(t, capture(proto.NumComputations()).Test(t), capture(loaded.NumComputations()).Test(t))

	fromProto := capture(NewXlaComputationFromProto(loaded)).Test(t)
	defer fromProto.Destroy()
	client := getClient(t)
	exec := capture(fromProto.Compile(client)).Test(t)
	got, _ := execArrayOutput[float32](t, exec, NewVec1Literal([]float32{1, 2}))
	require.Equal(t, []float32{1.5}, got)

	// HLO text format.
	hloText := `HloModule add_one

ENTRY main {
  x = f32[3] parameter(0)
  one = f32[] constant(1)
  ones = f32[3] broadcast(one), dimensions={}
  ROOT sum = f32[3] add(x, ones)
}
`
	textPath := filepath.Join(t.TempDir(), "add_one.hlo")
	require.NoError(t, os.WriteFile(textPath, []byte(hloText), 0o644))
	fromText := capture(ModuleFromTextFile(textPath)).Test(t)
	defer fromText.Destroy()
	summary := capture(fromText.Summary()).Test(t)
	require.Equal(t, 4, summary.NumInstructions())
	textComp := capture(NewXlaComputationFromProto(fromText)).Test(t)
	defer textComp.Destroy()
	exec = capture(textComp.Compile(client)).Test(t)
	gotText, _ := execArrayOutput[float32](t, exec, NewVec1Literal([]float32{1, 2, 3}))
	require.Equal(t, []float32{2, 3, 4}, gotText)
}

func TestHloModuleLoaderErrors(t *testing.T) {
	_, err := ModuleFromTextFile(filepath.Join(t.TempDir(), "missing.hlo"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ParseAndReturnUnverifiedModule([]byte("this is not HLO"))
	require.Error(t, err)
	var xlaErr *Error
	require.ErrorAs(t, err, &xlaErr)

	_, err = ParseProto([]byte{0xff, 0xff, 0xff}, true)
	require.Error(t, err)
}
