// xla_codegen generates the bindings of the per-type native functions of the xla package
// (gen_native_types.go). It should be run from the xla package directory with go generate.
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"text/template"

	"github.com/janpfeifer/must"
)

const nativeTypesFileName = "gen_native_types.go"

// nativeType is a Go type with native literal and constant constructors. The C functions are
// named after the C type: e.g. create_r0_int8_t, constant_r1_float.
type nativeType struct {
	Name   string // Capitalized name used in the variable name.
	GoType string
	CType  string
}

var nativeTypes = []nativeType{
	{"Int8", "int8", "int8_t"},
	{"Int16", "int16", "int16_t"},
	{"Int32", "int32", "int32_t"},
	{"Int64", "int64", "int64_t"},
	{"Uint8", "uint8", "uint8_t"},
	{"Uint16", "uint16", "uint16_t"},
	{"Uint32", "uint32", "uint32_t"},
	{"Uint64", "uint64", "uint64_t"},
	{"Float32", "float32", "float"},
	{"Float64", "float64", "double"},
}

var nativeTypesTemplate = template.Must(template.New(nativeTypesFileName).Parse(`// Code generated by internal/cmd/xla_codegen. DO NOT EDIT.

package xla

/*
#include "xla_rs.h"
*/
import "C"
import "unsafe"
{{range .}}
var native{{.Name}} = &nativeFuncs[{{.GoType}}]{
	createR0: func(v {{.GoType}}) C.literal { return C.create_r0_{{.CType}}(C.{{.CType}}(v)) },
	createR1: func(data *{{.GoType}}, n C.size_t) C.literal {
		return C.create_r1_{{.CType}}((*C.{{.CType}})(unsafe.Pointer(data)), n)
	},
	createR2: func(data *{{.GoType}}, rows, cols C.size_t) C.literal {
		return C.create_r2_{{.CType}}((*C.{{.CType}})(unsafe.Pointer(data)), rows, cols)
	},
	firstElement: func(l C.literal) {{.GoType}} { return {{.GoType}}(C.literal_get_first_element_{{.CType}}(l)) },
	constantR0: func(b C.xla_builder, v {{.GoType}}) C.xla_op { return C.constant_r0_{{.CType}}(b, C.{{.CType}}(v)) },
	constantR1C: func(b C.xla_builder, v {{.GoType}}, n C.size_t) C.xla_op {
		return C.constant_r1c_{{.CType}}(b, C.{{.CType}}(v), n)
	},
	constantR1: func(b C.xla_builder, data *{{.GoType}}, n C.size_t) C.xla_op {
		return C.constant_r1_{{.CType}}(b, (*C.{{.CType}})(unsafe.Pointer(data)), n)
	},
	constantR2: func(b C.xla_builder, data *{{.GoType}}, rows, cols C.size_t) C.xla_op {
		return C.constant_r2_{{.CType}}(b, (*C.{{.CType}})(unsafe.Pointer(data)), rows, cols)
	},
}
{{end}}`))

func main() {
	var buf bytes.Buffer
	must.M(nativeTypesTemplate.Execute(&buf, nativeTypes))
	contents := must.M1(format.Source(buf.Bytes()))
	must.M(os.WriteFile(nativeTypesFileName, contents, 0o644))
	fmt.Printf("Generated %q with %d native types\n", nativeTypesFileName, len(nativeTypes))
}
