// Package xla is a Go binding to the XLA compiler and its PJRT runtime, through the xla_rs C library.
//
// Computation graphs are built with an XlaBuilder, finalized into an XlaComputation, compiled by a Client
// into a LoadedExecutable, and executed on Literal (host) or Buffer (device) inputs:
//
//	client, err := xla.NewCPUClient()
//	...
//	builder := xla.NewBuilder("add")
//	x, err := xla.Parameter(builder, 0, dtypes.Float32, []int64{3}, "x")
//	one, err := xla.ConstantR0(builder, float32(1))
//	sum, err := xla.Add(x, one)
//	comp, err := builder.Build(sum)
//	exec, err := comp.Compile(client)
//	outputs, err := xla.ExecuteAndFetch(exec, xla.NewVec1Literal([]float32{1, 2, 3}))
//
// Every object holding a native resource has a Destroy method, which releases it exactly once. Objects
// not destroyed explicitly are released when garbage collected. Ops are owned by their XlaBuilder, and
// buffers and executables are tracked by their Client: destroying the owner releases them too.
// HandlesAlive reports the number of native resources currently held, per HandleKind.
//
// Errors from the native library are returned as *Error, with a stack trace. Dimensions given as
// negative numbers declare dynamic dimensions, see package shapes.
//
// The native library (libxla_rs) must be available to the linker.
package xla
