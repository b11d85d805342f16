package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"os"
	"runtime"
	"slices"
	"unsafe"

	"github.com/gomlx/goxla/hloproto"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// HloModuleProto is an HLO module: the serializable form of a computation, with its sub-computations.
//
// It can be loaded from text or proto files, introspected (Computations), converted to an
// XlaComputation (NewXlaComputationFromProto) and serialized (Bytes).
type HloModuleProto struct {
	cProto C.hlo_module_proto
}

func newHloModuleProto(cProto C.hlo_module_proto) *HloModuleProto {
	p := &HloModuleProto{cProto: cProto}
	handleAcquired(ModuleProtoHandle)
	runtime.SetFinalizer(p, func(p *HloModuleProto) { p.Destroy() })
	return p
}

// ModuleFromTextFile reads an HLO module from a file in the HLO text format.
func ModuleFromTextFile(path string) (*HloModuleProto, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read HLO text file %q", path)
	}
	p, err := ParseAndReturnUnverifiedModule(content)
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing HLO text file %q", path)
	}
	return p, nil
}

// ModuleFromProtoFile reads an HLO module from a file with an HloModuleProto, either in binary or in text
// (pbtxt) format.
func ModuleFromProtoFile(path string, binary bool) (*HloModuleProto, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read HLO proto file %q", path)
	}
	p, err := ParseProto(content, binary)
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing HLO proto file %q", path)
	}
	return p, nil
}

// ParseAndReturnUnverifiedModule parses an HLO module in the HLO text format.
// The module is not verified: errors in the graph will only be reported when it is compiled.
func ParseAndReturnUnverifiedModule(data []byte) (*HloModuleProto, error) {
	var cProto C.hlo_module_proto
	cData := C.CBytes(data)
	defer C.free(cData)
	err := statusToError(C.hlo_module_proto_parse_and_return_unverified_module((*C.char)(cData), C.size_t(len(data)), &cProto))
	if err != nil {
		return nil, err
	}
	return newHloModuleProto(cProto), nil
}

// ParseProto parses a serialized HloModuleProto, either in binary or text (pbtxt) format.
func ParseProto(data []byte, binary bool) (*HloModuleProto, error) {
	var cProto C.hlo_module_proto
	cData := C.CBytes(data)
	defer C.free(cData)
	err := statusToError(C.hlo_module_proto_parse_proto((*C.char)(cData), C.size_t(len(data)), C.bool(binary), &cProto))
	if err != nil {
		return nil, err
	}
	return newHloModuleProto(cProto), nil
}

// Destroy the underlying proto. It is called automatically at garbage collection.
func (p *HloModuleProto) Destroy() {
	if p == nil || p.cProto == nil {
		return
	}
	C.hlo_module_proto_free(p.cProto)
	p.cProto = nil
	handleReleased(ModuleProtoHandle)
}

// IsNil returns whether p is nil or has been destroyed.
func (p *HloModuleProto) IsNil() bool {
	return p == nil || p.cProto == nil
}

// NumComputations returns the number of computations in the module, including the entry computation.
func (p *HloModuleProto) NumComputations() (int, error) {
	if p.IsNil() {
		return 0, errors.Wrap(ErrDestroyed, "HloModuleProto.NumComputations")
	}
	defer runtime.KeepAlive(p)
	var n C.int
	if err := statusToError(C.hlo_computation_protos_size(p.cProto, &n)); err != nil {
		return 0, err
	}
	return goCount(int32(n))
}

// Computations returns a copy of each computation of the module.
//
// If the native library fails after returning some of the computations, those are returned
// together with the error: they are valid and owned by the caller.
func (p *HloModuleProto) Computations() ([]*HloComputationProto, error) {
	n, err := p.NumComputations()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(p)
	cComps := make([]C.hlo_computation_proto, max(n, 1))
	status := C.hlo_computation_protos(p.cProto, unsafe.SliceData(cComps))
	comps := make([]*HloComputationProto, 0, n)
	for _, cComp := range cComps[:n] {
		if cComp != nil {
			comps = append(comps, newHloComputationProto(cComp))
		}
	}
	if err := statusToError(status); err != nil {
		return comps, errors.WithMessagef(err, "fetched %d of %d computations", len(comps), n)
	}
	return comps, nil
}

// Bytes returns the module serialized as a binary HloModuleProto, which can be saved and later loaded
// with ParseProto or ModuleFromProtoFile.
func (p *HloModuleProto) Bytes() ([]byte, error) {
	if p.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "HloModuleProto.Bytes")
	}
	defer runtime.KeepAlive(p)
	var cData *C.char
	var cSize C.size_t
	if err := statusToError(C.hlo_module_proto_serialize(p.cProto, &cData, &cSize)); err != nil {
		return nil, errors.WithMessage(err, "while serializing HloModuleProto")
	}
	defer cFree(cData)
	return slices.Clone(unsafe.Slice((*byte)(unsafe.Pointer(cData)), int(cSize))), nil
}

// Summary decodes the module's names, ids, opcodes and operands.
func (p *HloModuleProto) Summary() (*hloproto.Module, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	module, err := hloproto.Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, "while decoding the serialized HloModuleProto")
	}
	klog.V(2).Infof("HloModuleProto %q: %d computations, %d instructions",
		module.Name, len(module.Computations), module.NumInstructions())
	return module, nil
}

// HloComputationProto is one of the computations of an HloModuleProto.
type HloComputationProto struct {
	cProto C.hlo_computation_proto
}

func newHloComputationProto(cProto C.hlo_computation_proto) *HloComputationProto {
	p := &HloComputationProto{cProto: cProto}
	handleAcquired(ComputationProtoHandle)
	runtime.SetFinalizer(p, func(p *HloComputationProto) { p.Destroy() })
	return p
}

// Destroy the underlying proto. It is called automatically at garbage collection.
func (p *HloComputationProto) Destroy() {
	if p == nil || p.cProto == nil {
		return
	}
	C.hlo_computation_proto_free(p.cProto)
	p.cProto = nil
	handleReleased(ComputationProtoHandle)
}

// IsNil returns whether p is nil or has been destroyed.
func (p *HloComputationProto) IsNil() bool {
	return p == nil || p.cProto == nil
}

// NumInstructions returns the number of instructions of the computation.
func (p *HloComputationProto) NumInstructions() (int, error) {
	if p.IsNil() {
		return 0, errors.Wrap(ErrDestroyed, "HloComputationProto.NumInstructions")
	}
	defer runtime.KeepAlive(p)
	var n C.int
	if err := statusToError(C.hlo_instruction_protos_size(p.cProto, &n)); err != nil {
		return 0, err
	}
	return goCount(int32(n))
}

// Instructions returns a copy of each instruction of the computation.
//
// As with HloModuleProto.Computations, on failure the instructions fetched so far are returned
// together with the error.
func (p *HloComputationProto) Instructions() ([]*HloInstructionProto, error) {
	n, err := p.NumInstructions()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(p)
	cInstrs := make([]C.hlo_instruction_proto, max(n, 1))
	status := C.hlo_instruction_protos(p.cProto, unsafe.SliceData(cInstrs))
	instrs := make([]*HloInstructionProto, 0, n)
	for _, cInstr := range cInstrs[:n] {
		if cInstr != nil {
			instrs = append(instrs, newHloInstructionProto(cInstr))
		}
	}
	if err := statusToError(status); err != nil {
		return instrs, errors.WithMessagef(err, "fetched %d of %d instructions", len(instrs), n)
	}
	return instrs, nil
}

// HloInstructionProto is one instruction of an HloComputationProto.
type HloInstructionProto struct {
	cProto C.hlo_instruction_proto
}

func newHloInstructionProto(cProto C.hlo_instruction_proto) *HloInstructionProto {
	p := &HloInstructionProto{cProto: cProto}
	handleAcquired(InstructionProtoHandle)
	runtime.SetFinalizer(p, func(p *HloInstructionProto) { p.Destroy() })
	return p
}

// Destroy the underlying proto. It is called automatically at garbage collection.
func (p *HloInstructionProto) Destroy() {
	if p == nil || p.cProto == nil {
		return
	}
	C.hlo_instruction_proto_free(p.cProto)
	p.cProto = nil
	handleReleased(InstructionProtoHandle)
}

// IsNil returns whether p is nil or has been destroyed.
func (p *HloInstructionProto) IsNil() bool {
	return p == nil || p.cProto == nil
}

// Opcode of the instruction, e.g.: "parameter", "add", "reduce".
func (p *HloInstructionProto) Opcode() (string, error) {
	if p.IsNil() {
		return "", errors.Wrap(ErrDestroyed, "HloInstructionProto.Opcode")
	}
	defer runtime.KeepAlive(p)
	cOpcode := C.hlo_instruction_proto_opcode(p.cProto)
	if cOpcode == nil {
		return "", errors.New("XLA returned no opcode for instruction")
	}
	return cStrFree(cOpcode), nil
}
