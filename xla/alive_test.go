package xla_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/gomlx/goxla/dtypes"
	. "github.com/gomlx/goxla/xla"
	"github.com/stretchr/testify/require"
)

// Finalizers of objects left over by other tests may run at any time, so the counters are only
// checked to not grow.
func requireNoLeaks(t *testing.T, baseline map[HandleKind]int64) {
	t.Helper()
	for kind, alive := range AllHandlesAlive() {
		require.LessOrEqualf(t, alive, baseline[kind], "%s handles leaked", kind)
	}
}

func TestHandlesReleased(t *testing.T) {
	baseline := AllHandlesAlive()
	for range 20 {
		client := capture(NewCPUClient()).Test(t)
		builder := NewBuilder(t.Name())
		x := capture(Parameter(builder, 0, dtypes.Float64, []int64{4}, "x")).Test(t)
		sum := capture(ReduceSum(x, false, 0)).Test(t)
		comp := capture(builder.Build(sum)).Test(t)
		exec := capture(client.Compile(comp)).Test(t)
		input := NewVec1Literal([]float64{1, 2, 3, 4})
		buffer := capture(client.BufferFromHostLiteral(nil, input)).Test(t)
		outputs := capture(exec.ExecuteBuffers(buffer)).Test(t)
		result := capture(outputs[0][0].ToLiteralSync()).Test(t)
		require.Equal(t, 10.0, capture(LiteralFirstElement[float64](result)).Test(t))

		proto := capture(comp.Proto()).Test(t)
		comps := capture(proto.Computations()).Test(t)
		for _, c := range comps {
			instrs := capture(c.Instructions()).Test(t)
			for _, instr := range instrs {
				instr.Destroy()
			}
			c.Destroy()
		}
		proto.Destroy()

		// Buffers and the executable are left for the client to release.
		result.Destroy()
		input.Destroy()
		comp.Destroy()
		builder.Destroy()
		client.Destroy()
		require.True(t, sum.Builder().IsNil())
		_, err := sum.Shape()
		require.ErrorIs(t, err, ErrDestroyed)
	}
	requireNoLeaks(t, baseline)
}

func TestHandlesGarbageCollected(t *testing.T) {
	before := HandlesAlive(LiteralHandle)
	const numLiterals = 100
	for ii := range numLiterals {
		_ = NewScalarLiteral(int32(ii))
	}
	require.GreaterOrEqual(t, HandlesAlive(LiteralHandle), before+1)
	require.Eventually(t, func() bool {
		runtime.GC()
		return HandlesAlive(LiteralHandle) <= before
	}, 10*time.Second, 50*time.Millisecond)
}

func TestHandleKindString(t *testing.T) {
	require.Equal(t, "Literal", LiteralHandle.String())
	require.Equal(t, "Buffer", BufferHandle.String())
	require.Equal(t, "HandleKind(99)", HandleKind(99).String())
}
