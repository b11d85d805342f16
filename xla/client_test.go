package xla_test

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gomlx/goxla/dtypes"
	. "github.com/gomlx/goxla/xla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for name, want := range map[string]Platform{"cpu": CPU, "Host": CPU, "gpu": GPU, " CUDA ": GPU, "tpu": TPU} {
		got, err := ParsePlatform(name)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "ParsePlatform(%q)", name)
	}
	_, err := ParsePlatform("abacus")
	require.Error(t, err)
	assert.Equal(t, "gpu", GPU.String())

	t.Setenv(PlatformEnvVar, "")
	p := capture(DefaultPlatform()).Test(t)
	assert.Equal(t, CPU, p)
	t.Setenv(PlatformEnvVar, "tpu")
	p = capture(DefaultPlatform()).Test(t)
	assert.Equal(t, TPU, p)
	t.Setenv(PlatformEnvVar, "abacus")
	_, err = DefaultPlatform()
	require.Error(t, err)
	cfg, err := DefaultClientConfig()
	require.Error(t, err)
	assert.Equal(t, CPU, cfg.Platform)
}

func TestClientConfigValidate(t *testing.T) {
	t.Setenv(PlatformEnvVar, "cpu")
	cfg := capture(DefaultClientConfig()).Test(t)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.WithPlatform(GPU).Validate())
	require.Error(t, cfg.WithPlatform(GPU).WithGPUMemory(0, false).Validate())
	require.Error(t, cfg.WithPlatform(GPU).WithGPUMemory(1.5, true).Validate())
	require.NoError(t, cfg.WithPlatform(TPU).Validate())
	require.Error(t, cfg.WithPlatform(TPU).WithMaxInflightComputations(0).Validate())
	require.Error(t, cfg.WithPlatform(Platform(7)).Validate())
	_, err := NewClient(cfg.WithPlatform(TPU).WithMaxInflightComputations(-1))
	require.Error(t, err)
}

func TestBuffers(t *testing.T) {
	client := getClient(t)
	devices := capture(client.AddressableDevices()).Test(t)
	device := devices[0]
	require.Same(t, client, device.Client())

	buffer := capture(BufferFromHostBuffer(client, device, []float32{1, 2, 3, 4, 5, 6}, 2, 3)).Test(t)
	require.Equal(t, 1, client.NumBuffers())
	require.Same(t, device, buffer.Device())
	shape := capture(buffer.OnDeviceShape()).Test(t)
	arrayShape := capture(shape.ArrayShape()).Test(t)
	require.Equal(t, dtypes.Float32, arrayShape.ElementType)
	require.Equal(t, []int64{2, 3}, arrayShape.Dims())

	// Raw copy of the elements 1 to 2 (inclusive).
	raw := make([]byte, 2*4)
	require.NoError(t, buffer.CopyRawToHostSync(raw, 4))
	require.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(raw[0:4])))
	require.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(raw[4:8])))
	require.Error(t, buffer.CopyRawToHostSync(raw, -1))

	// Round trip to the host.
	literal := capture(buffer.ToLiteralSync()).Test(t)
	require.Equal(t, []float32{1, 2, 3, 4, 5, 6}, capture(LiteralToVec[float32](literal)).Test(t))
	literal.Destroy()

	// Copy to the same device is a new buffer.
	bufferCopy := capture(buffer.CopyToDevice(device)).Test(t)
	require.Equal(t, 2, client.NumBuffers())
	bufferCopy.Destroy()
	bufferCopy.Destroy() // Destroying twice is a no-op.
	require.True(t, bufferCopy.IsNil())
	require.Equal(t, 1, client.NumBuffers())
	_, err := bufferCopy.ToLiteralSync()
	require.ErrorIs(t, err, ErrDestroyed)

	// Mismatched dimensions.
	_, err = BufferFromHostBuffer(client, nil, []int32{1, 2, 3}, 2, 2)
	require.Error(t, err)
	require.Equal(t, 1, client.NumBuffers())

	// Transfer of a literal to the default device.
	literal = NewVec1Literal([]int32{7, 11})
	defer literal.Destroy()
	intBuffer := capture(client.BufferFromHostLiteral(nil, literal)).Test(t)
	require.Nil(t, intBuffer.Device())
	require.Equal(t, 2, client.NumBuffers())
	buffer.Destroy()
	intBuffer.Destroy()
	require.Equal(t, 0, client.NumBuffers())
}

func TestExecuteBuffers(t *testing.T) {
	client := getClient(t)
	builder := NewBuilder(t.Name())
	defer builder.Destroy()
	x := capture(Parameter(builder, 0, dtypes.Int32, []int64{3}, "x")).Test(t)
	y := capture(Parameter(builder, 1, dtypes.Int32, []int64{3}, "y")).Test(t)
	sum := capture(Add(x, y)).Test(t)
	diff := capture(Sub(x, y)).Test(t)
	tuple := capture(Tuple(builder, sum, diff)).Test(t)
	exec := compile(t, client, tuple)
	require.Equal(t, 1, client.NumExecutables())
	require.Same(t, client, exec.Client())

	xBuffer := capture(BufferFromHostBuffer(client, nil, []int32{10, 20, 30})).Test(t)
	_, err := exec.ExecuteBuffers(xBuffer)
	require.Error(t, err, "wrong number of parameters")
	yBuffer := capture(BufferFromHostBuffer(client, nil, []int32{1, 2, 3})).Test(t)

	outputs := capture(exec.ExecuteBuffers(xBuffer, yBuffer)).Test(t)
	require.Len(t, outputs, 1)
	require.False(t, xBuffer.IsNil(), "inputs must remain owned by the caller")
	var results [][]int32
	for _, output := range outputs[0] {
		literal := capture(output.ToLiteralSync()).Test(t)
		if size, isTuple := literal.TupleSize(); isTuple {
			elements := capture(literal.DecomposeTuple()).Test(t)
			require.Len(t, elements, size)
			for _, element := range elements {
				results = append(results, capture(LiteralToVec[int32](element)).Test(t))
				element.Destroy()
			}
		} else {
			results = append(results, capture(LiteralToVec[int32](literal)).Test(t))
		}
		literal.Destroy()
	}
	require.Equal(t, [][]int32{{11, 22, 33}, {9, 18, 27}}, results)

	// Client.Destroy releases all buffers and executables.
	numBuffers := client.NumBuffers()
	require.GreaterOrEqual(t, numBuffers, 3)
	client.Destroy()
	require.True(t, client.IsNil())
	require.True(t, exec.IsNil())
	require.True(t, xBuffer.IsNil())
	require.True(t, outputs[0][0].IsNil())
	require.Equal(t, 0, client.NumBuffers())
	require.Equal(t, 0, client.NumExecutables())
	_, err = exec.ExecuteBuffers(xBuffer, yBuffer)
	require.ErrorIs(t, err, ErrDestroyed)
	_, err = client.Compile(nil)
	require.ErrorIs(t, err, ErrDestroyed)
	_, err = BufferFromHostBuffer(client, nil, []int32{1})
	require.ErrorIs(t, err, ErrDestroyed)

	// Destroying again, directly or through the buffers, is a no-op.
	xBuffer.Destroy()
	exec.Destroy()
	client.Destroy()
}

func TestClientDestroyWhileInUse(t *testing.T) {
	client := getClient(t)
	builder := NewBuilder(t.Name())
	defer builder.Destroy()
	x := capture(Parameter(builder, 0, dtypes.Float32, []int64{1000}, "x")).Test(t)
	one := capture(ConstantR0(builder, float32(1))).Test(t)
	exec := compile(t, client, capture(Add(x, one)).Test(t))
	input := capture(BufferFromHostBuffer(client, nil, make([]float32, 1000))).Test(t)

	// Buffers of another client can't be used as inputs.
	other := getClient(t)
	otherInput := capture(BufferFromHostBuffer(other, nil, make([]float32, 1000))).Test(t)
	_, err := exec.ExecuteBuffers(otherInput)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDestroyed)

	// Destroying the client while other goroutines use its buffers and executable: the calls in flight
	// complete, and the following ones fail with ErrDestroyed.
	const numWorkers = 4
	start := make(chan struct{})
	errs := make(chan error, numWorkers)
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			raw := make([]byte, 4)
			for {
				outputs, err := exec.ExecuteBuffers(input)
				if err != nil {
					errs <- err
					return
				}
				for _, buffer := range outputs[0] {
					if err := buffer.CopyRawToHostSync(raw, 0); err != nil {
						errs <- err
						return
					}
					buffer.Destroy()
				}
			}
		}()
	}
	close(start)
	time.Sleep(20 * time.Millisecond)
	client.Destroy()
	wg.Wait()
	close(errs)
	require.Len(t, errs, numWorkers)
	for err := range errs {
		require.ErrorIs(t, err, ErrDestroyed)
	}
	require.True(t, input.IsNil())
	require.True(t, exec.IsNil())
	require.Zero(t, client.NumBuffers())
	require.False(t, otherInput.IsNil(), "other clients are not affected")
}
