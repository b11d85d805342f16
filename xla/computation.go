package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"

	"github.com/pkg/errors"
)

// XlaComputation represents a computation created with XlaBuilder.Build, or loaded from an HloModuleProto.
//
// Computations are device independent: they are compiled for a Client with XlaComputation.Compile.
// They are also used as "subroutines" by some ops, like Reduce, which takes the computation to use for
// the reduction.
type XlaComputation struct {
	cComp C.xla_computation
	name  string
}

func newXlaComputation(cComp C.xla_computation) *XlaComputation {
	comp := &XlaComputation{
		cComp: cComp,
		name:  cStrFree(C.xla_computation_name(cComp)),
	}
	handleAcquired(ComputationHandle)
	runtime.SetFinalizer(comp, func(comp *XlaComputation) { comp.Destroy() })
	return comp
}

// NewXlaComputationFromProto creates a computation from the HLO module. The proto is not modified,
// and it can be destroyed right after.
func NewXlaComputationFromProto(proto *HloModuleProto) (*XlaComputation, error) {
	if proto.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "NewXlaComputationFromProto")
	}
	defer runtime.KeepAlive(proto)
	cComp := C.xla_computation_from_hlo_module_proto(proto.cProto)
	if cComp == nil {
		return nil, errors.New("failed to create XlaComputation from HloModuleProto")
	}
	return newXlaComputation(cComp), nil
}

// Destroy immediately the underlying XlaComputation.
// This is called automatically at garbage-collection.
func (comp *XlaComputation) Destroy() {
	if comp == nil || comp.cComp == nil {
		return
	}
	C.xla_computation_free(comp.cComp)
	comp.cComp = nil
	handleReleased(ComputationHandle)
}

// IsNil returns whether the computation or the underlying C/C++ object are nil.
// It's true after it is destroyed.
func (comp *XlaComputation) IsNil() bool {
	return comp == nil || comp.cComp == nil
}

// Name of the computation.
func (comp *XlaComputation) Name() string {
	if comp == nil {
		return ""
	}
	return comp.name
}

// Proto returns the HloModuleProto of the computation, which can be introspected and serialized.
// It is an independent copy, that must be destroyed separately.
func (comp *XlaComputation) Proto() (*HloModuleProto, error) {
	if comp.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "XlaComputation.Proto")
	}
	defer runtime.KeepAlive(comp)
	cProto := C.xla_computation_proto(comp.cComp)
	if cProto == nil {
		return nil, errors.Errorf("failed to get the HloModuleProto of computation %q", comp.name)
	}
	return newHloModuleProto(cProto), nil
}

// Compile the computation for the given client. It is a shortcut to Client.Compile.
func (comp *XlaComputation) Compile(client *Client) (*LoadedExecutable, error) {
	return client.Compile(comp)
}
