package main

import (
	"fmt"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/dtypes/bfloat16"
	"github.com/gomlx/goxla/hloproto"
	"github.com/gomlx/goxla/internal/runconfig"
	"github.com/gomlx/goxla/xla"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// loadedModule is a parsed module, along with its decoded summary.
type loadedModule struct {
	config  *runconfig.Module
	proto   *xla.HloModuleProto
	summary *hloproto.Module
}

// loadModules reads and parses the module files concurrently, with at most parallelism files at a time.
// On error, the modules already loaded are destroyed.
func loadModules(configs []runconfig.Module, parallelism int) ([]*loadedModule, error) {
	modules := make([]*loadedModule, len(configs))
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for ii := range configs {
		g.Go(func() error {
			m, err := loadModule(&configs[ii])
			if err != nil {
				return err
			}
			modules[ii] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, m := range modules {
			if m != nil {
				m.proto.Destroy()
			}
		}
		return nil, err
	}
	return modules, nil
}

func loadModule(config *runconfig.Module) (*loadedModule, error) {
	format, err := config.ResolvedFormat()
	if err != nil {
		return nil, err
	}
	data, err := config.ReadFile()
	if err != nil {
		return nil, err
	}
	var proto *xla.HloModuleProto
	switch format {
	case runconfig.FormatText:
		proto, err = xla.ParseAndReturnUnverifiedModule(data)
	case runconfig.FormatProto:
		proto, err = xla.ParseProto(data, true)
	case runconfig.FormatProtoText:
		proto, err = xla.ParseProto(data, false)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing module %q", config.Path)
	}
	summary, err := proto.Summary()
	if err != nil {
		proto.Destroy()
		return nil, errors.WithMessagef(err, "while decoding module %q", config.Path)
	}
	klog.V(1).Infof("loaded module %q: %d computations, %d instructions", config.Path,
		len(summary.Computations), summary.NumInstructions())
	return &loadedModule{config: config, proto: proto, summary: summary}, nil
}

// runModule compiles and executes the module, prints its outputs and returns them.
func runModule(client *xla.Client, m *loadedModule) (runconfig.Result, error) {
	result := runconfig.Result{Module: m.config.Path}
	comp, err := xla.NewXlaComputationFromProto(m.proto)
	if err != nil {
		return result, err
	}
	defer comp.Destroy()
	exec, err := comp.Compile(client)
	if err != nil {
		return result, err
	}
	defer exec.Destroy()

	inputs := make([]*xla.Literal, 0, len(m.config.Inputs))
	defer func() { destroyLiterals(inputs) }()
	for ii := range m.config.Inputs {
		input, err := inputLiteral(&m.config.Inputs[ii])
		if err != nil {
			return result, errors.WithMessagef(err, "module %q, input #%d", m.config.Path, ii)
		}
		inputs = append(inputs, input)
	}

	outputs, err := xla.ExecuteAndFetch(exec, inputs...)
	if err != nil {
		return result, errors.WithMessagef(err, "while executing module %q", m.config.Path)
	}
	// Outputs are consumed as they are processed: on error the remaining ones are released.
	var pending []*xla.Literal
	for _, deviceOutputs := range outputs {
		pending = append(pending, deviceOutputs...)
	}
	defer func() { destroyLiterals(pending) }()

	fmt.Printf("Module %q outputs:\n", m.config.Path)
	for deviceIdx, deviceOutputs := range outputs {
		for _, output := range deviceOutputs {
			arrays, err := flattenTuple(output)
			if err != nil {
				return result, err
			}
			pending = append(pending, arrays...)
			for _, array := range arrays {
				out, err := arrayOutput(deviceIdx, array)
				array.Destroy()
				if err != nil {
					return result, err
				}
				fmt.Printf("\tdevice #%d: %s%v\n", deviceIdx, out.DType, out.Dims)
				result.Outputs = append(result.Outputs, out)
			}
		}
	}
	return result, nil
}

// flattenTuple returns the arrays of a (possibly nested) tuple literal, in order.
// The literal is consumed, also on error.
func flattenTuple(literal *xla.Literal) ([]*xla.Literal, error) {
	if _, isTuple := literal.TupleSize(); !isTuple {
		return []*xla.Literal{literal}, nil
	}
	elements, err := literal.DecomposeTuple()
	if err != nil {
		literal.Destroy()
		return nil, err
	}
	var arrays []*xla.Literal
	for ii, element := range elements {
		elementArrays, err := flattenTuple(element)
		if err != nil {
			destroyLiterals(arrays)
			destroyLiterals(elements[ii+1:])
			return nil, err
		}
		arrays = append(arrays, elementArrays...)
	}
	return arrays, nil
}

func destroyLiterals(literals []*xla.Literal) {
	for _, literal := range literals {
		literal.Destroy()
	}
}

func arrayOutput(deviceIdx int, array *xla.Literal) (runconfig.Output, error) {
	shape, err := array.ArrayShape()
	if err != nil {
		return runconfig.Output{}, err
	}
	data := make([]byte, array.SizeInBytes())
	if err := array.CopyRawTo(data); err != nil {
		return runconfig.Output{}, err
	}
	klog.V(2).Infof("output %s: %s", shape, array)
	return runconfig.Output{
		Device: deviceIdx,
		DType:  shape.ElementType.String(),
		Dims:   shape.Dims(),
		Data:   data,
	}, nil
}

// inputLiteral converts a run file input to a Literal.
func inputLiteral(in *runconfig.Input) (*xla.Literal, error) {
	flat, err := in.Flat()
	if err != nil {
		return nil, err
	}
	var literal *xla.Literal
	switch values := flat.(type) {
	case []bool:
		literal, err = newInputLiteral(values, in.Dims)
	case []int8:
		literal, err = newInputLiteral(values, in.Dims)
	case []int16:
		literal, err = newInputLiteral(values, in.Dims)
	case []int32:
		literal, err = newInputLiteral(values, in.Dims)
	case []int64:
		literal, err = newInputLiteral(values, in.Dims)
	case []uint8:
		literal, err = newInputLiteral(values, in.Dims)
	case []uint16:
		literal, err = newInputLiteral(values, in.Dims)
	case []uint32:
		literal, err = newInputLiteral(values, in.Dims)
	case []uint64:
		literal, err = newInputLiteral(values, in.Dims)
	case []float16.Float16:
		literal, err = newInputLiteral(values, in.Dims)
	case []bfloat16.BFloat16:
		literal, err = newInputLiteral(values, in.Dims)
	case []float32:
		literal, err = newInputLiteral(values, in.Dims)
	case []float64:
		literal, err = newInputLiteral(values, in.Dims)
	default:
		err = errors.Errorf("unsupported input values of type %T", flat)
	}
	return literal, err
}

// newInputLiteral creates the literal with the given dims: a scalar if dims is empty.
func newInputLiteral[T dtypes.ArrayElement](flat []T, dims []int64) (*xla.Literal, error) {
	if len(dims) > 0 {
		return xla.NewArrayLiteral(flat, dims...)
	}
	vector, err := xla.NewArrayLiteral(flat, 1)
	if err != nil {
		return nil, err
	}
	defer vector.Destroy()
	return vector.Reshape()
}
