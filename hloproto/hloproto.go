// Package hloproto decodes the parts of a serialized HloModuleProto needed to describe a module:
// the names and ids of its computations, and the opcode and operands of each instruction.
//
// It works on the binary wire format directly, so it doesn't need the native library nor the XLA proto
// definitions. Fields not listed here are skipped.
package hloproto

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the XLA protos (xla/service/hlo.proto).
const (
	moduleName                 protowire.Number = 1
	moduleEntryComputationName protowire.Number = 2
	moduleComputations         protowire.Number = 3
	moduleID                   protowire.Number = 5
	moduleEntryComputationID   protowire.Number = 6

	computationName         protowire.Number = 1
	computationInstructions protowire.Number = 2
	computationID           protowire.Number = 5
	computationRootID       protowire.Number = 6

	instructionName       protowire.Number = 1
	instructionOpcode     protowire.Number = 2
	instructionID         protowire.Number = 35
	instructionOperandIDs protowire.Number = 36
)

// Module is the summary of an HloModuleProto.
type Module struct {
	Name                 string
	EntryComputationName string
	ID                   int64
	EntryComputationID   int64
	Computations         []*Computation
}

// Computation is the summary of an HloComputationProto.
type Computation struct {
	Name         string
	ID           int64
	RootID       int64
	Instructions []*Instruction
}

// Instruction is the summary of an HloInstructionProto.
type Instruction struct {
	Name       string
	Opcode     string
	ID         int64
	OperandIDs []int64
}

// Decode a binary serialized HloModuleProto.
func Decode(data []byte) (*Module, error) {
	m := &Module{}
	err := decodeMessage(data, func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error {
		switch {
		case num == moduleName && typ == protowire.BytesType:
			m.Name = string(value)
		case num == moduleEntryComputationName && typ == protowire.BytesType:
			m.EntryComputationName = string(value)
		case num == moduleID && typ == protowire.VarintType:
			m.ID = int64(v)
		case num == moduleEntryComputationID && typ == protowire.VarintType:
			m.EntryComputationID = int64(v)
		case num == moduleComputations && typ == protowire.BytesType:
			comp, err := decodeComputation(value)
			if err != nil {
				return errors.WithMessagef(err, "computation #%d", len(m.Computations))
			}
			m.Computations = append(m.Computations, comp)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to decode HloModuleProto")
	}
	return m, nil
}

func decodeComputation(data []byte) (*Computation, error) {
	c := &Computation{}
	err := decodeMessage(data, func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error {
		switch {
		case num == computationName && typ == protowire.BytesType:
			c.Name = string(value)
		case num == computationID && typ == protowire.VarintType:
			c.ID = int64(v)
		case num == computationRootID && typ == protowire.VarintType:
			c.RootID = int64(v)
		case num == computationInstructions && typ == protowire.BytesType:
			instr, err := decodeInstruction(value)
			if err != nil {
				return errors.WithMessagef(err, "instruction #%d", len(c.Instructions))
			}
			c.Instructions = append(c.Instructions, instr)
		}
		return nil
	})
	return c, err
}

func decodeInstruction(data []byte) (*Instruction, error) {
	instr := &Instruction{}
	err := decodeMessage(data, func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error {
		switch {
		case num == instructionName && typ == protowire.BytesType:
			instr.Name = string(value)
		case num == instructionOpcode && typ == protowire.BytesType:
			instr.Opcode = string(value)
		case num == instructionID && typ == protowire.VarintType:
			instr.ID = int64(v)
		case num == instructionOperandIDs && typ == protowire.VarintType:
			instr.OperandIDs = append(instr.OperandIDs, int64(v))
		case num == instructionOperandIDs && typ == protowire.BytesType:
			// Packed repeated field.
			for len(value) > 0 {
				id, n := protowire.ConsumeVarint(value)
				if n < 0 {
					return errors.Wrap(protowire.ParseError(n), "operand_ids")
				}
				instr.OperandIDs = append(instr.OperandIDs, int64(id))
				value = value[n:]
			}
		}
		return nil
	})
	return instr, err
}

// fieldFn is called for each field of a message: value is set for length-delimited fields, and v for varints.
type fieldFn func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error

// decodeMessage iterates over the fields of a message, skipping fixed size fields and groups.
func decodeMessage(data []byte, fn fieldFn) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "invalid field tag")
		}
		data = data[n:]
		var (
			value []byte
			v     uint64
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(data)
		case protowire.BytesType:
			value, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "field %d", num)
		}
		data = data[n:]
		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := fn(num, typ, value, v); err != nil {
			return err
		}
	}
	return nil
}

// NumInstructions returns the total number of instructions over all computations.
func (m *Module) NumInstructions() int {
	var count int
	for _, comp := range m.Computations {
		count += len(comp.Instructions)
	}
	return count
}

// Entry returns the entry computation of the module, or nil if not found.
func (m *Module) Entry() *Computation {
	for _, comp := range m.Computations {
		if comp.ID == m.EntryComputationID && (m.EntryComputationName == "" || comp.Name == m.EntryComputationName) {
			return comp
		}
	}
	for _, comp := range m.Computations {
		if comp.Name == m.EntryComputationName {
			return comp
		}
	}
	return nil
}

// OpcodeHistogram returns the number of instructions per opcode, over all computations.
func (m *Module) OpcodeHistogram() map[string]int {
	histogram := make(map[string]int)
	for _, comp := range m.Computations {
		for _, instr := range comp.Instructions {
			histogram[instr.Opcode]++
		}
	}
	return histogram
}

// Root returns the root instruction of the computation, or nil if not found.
func (c *Computation) Root() *Instruction {
	for _, instr := range c.Instructions {
		if instr.ID == c.RootID {
			return instr
		}
	}
	return nil
}

// Format writes a human-readable listing of the module to w.
func (m *Module) Format(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "HloModule %s (id=%d), entry %q\n", m.Name, m.ID, m.EntryComputationName); err != nil {
		return errors.Wrap(err, "writing module summary")
	}
	for _, comp := range m.Computations {
		if _, err := fmt.Fprintf(w, "  computation %s (id=%d, root=%d):\n", comp.Name, comp.ID, comp.RootID); err != nil {
			return errors.Wrap(err, "writing module summary")
		}
		for _, instr := range comp.Instructions {
			if _, err := fmt.Fprintf(w, "    #%d %s = %s%v\n", instr.ID, instr.Name, instr.Opcode, instr.OperandIDs); err != nil {
				return errors.Wrap(err, "writing module summary")
			}
		}
	}
	histogram := m.OpcodeHistogram()
	for _, opcode := range slices.Sorted(maps.Keys(histogram)) {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", opcode, histogram[opcode]); err != nil {
			return errors.Wrap(err, "writing module summary")
		}
	}
	return nil
}
