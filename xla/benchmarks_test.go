package xla_test

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	. "github.com/gomlx/goxla/xla"
	"github.com/janpfeifer/must"
)

var benchShapes = []shapes.ArrayShape{
	shapes.MakeArrayShape(dtypes.Float32, 1, 1),
	shapes.MakeArrayShape(dtypes.Float32, 10, 10),
	shapes.MakeArrayShape(dtypes.Float32, 100, 100),
	shapes.MakeArrayShape(dtypes.Float32, 1000, 1000),
}

func benchInputs() [][]float32 {
	inputs := make([][]float32, len(benchShapes))
	for shapeIdx, s := range benchShapes {
		inputs[shapeIdx] = make([]float32, s.UpperBoundElementCount())
		for ii := range inputs[shapeIdx] {
			inputs[shapeIdx][ii] = float32(ii)
		}
	}
	return inputs
}

// BenchmarkClient_CGO measures a minimal cgo call.
func BenchmarkClient_CGO(b *testing.B) {
	client := getClient(b)
	b.ResetTimer()
	for range b.N {
		_ = client.AddressableDeviceCount()
	}
}

func BenchmarkClient_BufferFromHost(b *testing.B) {
	client := getClient(b)
	inputs := benchInputs()
	benchShape := func(shapeIdx int) {
		buffer := must.M1(BufferFromHostBuffer(client, nil, inputs[shapeIdx], benchShapes[shapeIdx].Dims()...))
		buffer.Destroy()
	}

	// Warmup.
	for shapeIdx := range benchShapes {
		for range 10 {
			benchShape(shapeIdx)
		}
	}
	b.ResetTimer()
	for shapeIdx, s := range benchShapes {
		b.Run(s.String(), func(b *testing.B) {
			for range b.N {
				benchShape(shapeIdx)
			}
		})
	}
}

func BenchmarkBuffer_CopyRawToHost(b *testing.B) {
	client := getClient(b)
	inputs := benchInputs()
	buffers := make([]*Buffer, len(benchShapes))
	for shapeIdx, s := range benchShapes {
		buffers[shapeIdx] = must.M1(BufferFromHostBuffer(client, nil, inputs[shapeIdx], s.Dims()...))
	}
	benchShape := func(shapeIdx int) {
		flat := inputs[shapeIdx]
		raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(flat))), len(flat)*int(unsafe.Sizeof(flat[0])))
		must.M(buffers[shapeIdx].CopyRawToHostSync(raw, 0))
	}

	for shapeIdx := range benchShapes {
		for range 10 {
			benchShape(shapeIdx)
		}
	}
	b.ResetTimer()
	for shapeIdx, s := range benchShapes {
		b.Run(s.String(), func(b *testing.B) {
			for range b.N {
				benchShape(shapeIdx)
			}
		})
	}
}

// BenchmarkExecute measures the execution of x+1 with the input already on the device.
func BenchmarkExecute(b *testing.B) {
	client := getClient(b)
	inputs := benchInputs()
	execs := make([]*LoadedExecutable, len(benchShapes))
	buffers := make([]*Buffer, len(benchShapes))
	for shapeIdx, s := range benchShapes {
		builder := NewBuilder(fmt.Sprintf("x+1 %s", s))
		x := must.M1(Parameter(builder, 0, s.ElementType, s.Dims(), "x"))
		one := must.M1(One(builder, s.ElementType))
		comp := must.M1(must.M1(Add(x, one)).Build())
		execs[shapeIdx] = must.M1(client.Compile(comp))
		comp.Destroy()
		builder.Destroy()
		buffers[shapeIdx] = must.M1(BufferFromHostBuffer(client, nil, inputs[shapeIdx], s.Dims()...))
	}
	benchShape := func(shapeIdx int) {
		outputs := must.M1(execs[shapeIdx].ExecuteBuffers(buffers[shapeIdx]))
		for _, output := range outputs[0] {
			output.Destroy()
		}
	}

	for shapeIdx := range benchShapes {
		for range 10 {
			benchShape(shapeIdx)
		}
	}
	b.ResetTimer()
	for shapeIdx, s := range benchShapes {
		b.Run(s.String(), func(b *testing.B) {
			for range b.N {
				benchShape(shapeIdx)
			}
		})
	}
}
