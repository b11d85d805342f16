package xla

// This file binds the native per-type constructors of literals and constants: the bindings
// for each type are generated in gen_native_types.go.

//go:generate go run ../internal/cmd/xla_codegen

/*
#include "xla_rs.h"
*/
import "C"
import "github.com/gomlx/goxla/dtypes"

// nativeFuncs holds the native functions specialized for one NativeType.
type nativeFuncs[T dtypes.NativeType] struct {
	createR0     func(v T) C.literal
	createR1     func(data *T, n C.size_t) C.literal
	createR2     func(data *T, rows, cols C.size_t) C.literal
	firstElement func(l C.literal) T
	constantR0   func(b C.xla_builder, v T) C.xla_op
	constantR1C  func(b C.xla_builder, v T, n C.size_t) C.xla_op
	constantR1   func(b C.xla_builder, data *T, n C.size_t) C.xla_op
	constantR2   func(b C.xla_builder, data *T, rows, cols C.size_t) C.xla_op
}

// nativeFor returns the table of native functions for T.
func nativeFor[T dtypes.NativeType]() *nativeFuncs[T] {
	var t T
	var table any
	switch any(t).(type) {
	case int8:
		table = nativeInt8
	case int16:
		table = nativeInt16
	case int32:
		table = nativeInt32
	case int64:
		table = nativeInt64
	case uint8:
		table = nativeUint8
	case uint16:
		table = nativeUint16
	case uint32:
		table = nativeUint32
	case uint64:
		table = nativeUint64
	case float32:
		table = nativeFloat32
	case float64:
		table = nativeFloat64
	}
	return table.(*nativeFuncs[T])
}
