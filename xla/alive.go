package xla

import (
	"fmt"
	"sync/atomic"
)

// HandleKind enumerates the kinds of native handles owned by this package.
type HandleKind int

const (
	BuilderHandle HandleKind = iota
	OpHandle
	ComputationHandle
	ModuleProtoHandle
	ComputationProtoHandle
	InstructionProtoHandle
	LiteralHandle
	ClientHandle
	ExecutableHandle
	BufferHandle
	numHandleKinds
)

var handleKindNames = [numHandleKinds]string{
	"Builder", "Op", "Computation", "ModuleProto", "ComputationProto", "InstructionProto",
	"Literal", "Client", "Executable", "Buffer",
}

// String implements fmt.Stringer.
func (k HandleKind) String() string {
	if k < 0 || k >= numHandleKinds {
		return fmt.Sprintf("HandleKind(%d)", int(k))
	}
	return handleKindNames[k]
}

var handlesAlive [numHandleKinds]atomic.Int64

func handleAcquired(kind HandleKind) {
	handlesAlive[kind].Add(1)
}

func handleReleased(kind HandleKind) {
	handlesAlive[kind].Add(-1)
}

// HandlesAlive returns the number of native handles of the given kind currently acquired and not yet released.
func HandlesAlive(kind HandleKind) int64 {
	return handlesAlive[kind].Load()
}

// AllHandlesAlive returns the number of live native handles for every kind with at least one.
func AllHandlesAlive() map[HandleKind]int64 {
	alive := make(map[HandleKind]int64)
	for kind := range numHandleKinds {
		if n := handlesAlive[kind].Load(); n != 0 {
			alive[kind] = n
		}
	}
	return alive
}
