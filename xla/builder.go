package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// XlaBuilder is used to create a computation graph, that can then be compiled and executed by a Client.
//
// Once created (NewBuilder), one can issue "operations" ("ops" for short), like Add, Mul, etc., which are
// recorded. When the computation definition is finalized, call XlaBuilder.Build to get an XlaComputation.
// The builder remains usable afterward to build other computations.
//
// Every Op created is owned by its builder: they are only valid while the builder is alive, and they are
// released by XlaBuilder.Destroy. Ops from different builders cannot be combined.
//
// An XlaBuilder is not safe for concurrent use.
type XlaBuilder struct {
	wrapper *builderWrapper
	name    string

	// cachedReductions holds the sub-computations used by the standard reductions, per reduction and element type.
	cachedReductions map[string]*XlaComputation
	cachedInitValues map[string]*Op
}

// builderWrapper holds the native handles owned by the builder: the builder itself and all of its ops.
type builderWrapper struct {
	c   C.xla_builder
	ops []C.xla_op
}

func (w *builderWrapper) destroy() {
	if w == nil || w.c == nil {
		return
	}
	for _, cOp := range w.ops {
		C.xla_op_free(cOp)
		handleReleased(OpHandle)
	}
	w.ops = nil
	C.xla_builder_free(w.c)
	w.c = nil
	handleReleased(BuilderHandle)
}

// NewBuilder creates a new XlaBuilder with the given name.
func NewBuilder(name string) *XlaBuilder {
	cName := C.CString(name)
	defer cFree(cName)
	b := &XlaBuilder{
		wrapper:          &builderWrapper{c: C.xla_builder_create(cName)},
		name:             name,
		cachedReductions: make(map[string]*XlaComputation),
		cachedInitValues: make(map[string]*Op),
	}
	handleAcquired(BuilderHandle)
	runtime.AddCleanup(b, func(w *builderWrapper) { w.destroy() }, b.wrapper)
	return b
}

// Name of the builder, given at creation.
func (b *XlaBuilder) Name() string {
	return b.name
}

// String implements fmt.Stringer.
func (b *XlaBuilder) String() string {
	if b.IsNil() {
		return "XlaBuilder(destroyed)"
	}
	return fmt.Sprintf("XlaBuilder(%q, %d ops)", b.name, len(b.wrapper.ops))
}

// IsNil returns whether the builder is nil or already destroyed.
func (b *XlaBuilder) IsNil() bool {
	return b == nil || b.wrapper == nil || b.wrapper.c == nil
}

// NumOps returns the number of op handles created with this builder so far.
func (b *XlaBuilder) NumOps() int {
	if b.IsNil() {
		return 0
	}
	return len(b.wrapper.ops)
}

// Destroy releases the builder, all the Ops created by it and the cached sub-computations.
// The builder and its Ops can no longer be used afterward.
// It is safe to call it more than once, and it is called automatically when the builder is garbage collected.
func (b *XlaBuilder) Destroy() {
	if b.IsNil() {
		return
	}
	for _, comp := range b.cachedReductions {
		comp.Destroy()
	}
	b.cachedReductions = nil
	b.cachedInitValues = nil
	b.wrapper.destroy()
}

// FirstError returns the first error recorded by the builder while adding ops, if any.
func (b *XlaBuilder) FirstError() error {
	if b.IsNil() {
		return errors.WithStack(ErrDestroyed)
	}
	defer runtime.KeepAlive(b)
	return statusToError(C.first_error(b.wrapper.c))
}

// CurrentStatus returns the error of the last op added, if any.
func (b *XlaBuilder) CurrentStatus() error {
	if b.IsNil() {
		return errors.WithStack(ErrDestroyed)
	}
	defer runtime.KeepAlive(b)
	return statusToError(C.get_current_status(b.wrapper.c))
}

// CreateSubBuilder returns a new independent XlaBuilder, named after this one, used to build
// sub-computations (e.g. the reduction function of Reduce).
// The sub-builder must be destroyed independently.
func (b *XlaBuilder) CreateSubBuilder(name string) *XlaBuilder {
	return NewBuilder(b.name + "/" + name)
}

// newOp takes ownership of the op handle returned by a native op constructor, and checks for errors.
// On error, the handle is released immediately.
func (b *XlaBuilder) newOp(cOp C.xla_op, opName string) (*Op, error) {
	defer runtime.KeepAlive(b)
	if cOp == nil {
		return nil, errors.Errorf("XLA returned a nil op for %s", opName)
	}
	if err := statusToError(C.get_current_status(b.wrapper.c)); err != nil {
		C.xla_op_free(cOp)
		return nil, errors.WithMessagef(err, "while building op %s in %s", opName, b)
	}
	b.wrapper.ops = append(b.wrapper.ops, cOp)
	handleAcquired(OpHandle)
	op := &Op{builder: b, cOp: cOp, index: len(b.wrapper.ops) - 1}
	if klog.V(3).Enabled() {
		klog.Infof("%s: added op #%d %s", b.name, op.index, opName)
	}
	return op, nil
}

// Build finalizes the graph rooted at the given op into an XlaComputation.
//
// The builder remains valid, and can be used to build other computations, rooted at other ops.
func (b *XlaBuilder) Build(root *Op) (*XlaComputation, error) {
	if _, err := checkOps("Build", root); err != nil {
		return nil, err
	}
	if root.builder != b {
		return nil, errors.Wrapf(ErrBuilderMismatch, "Build(%s): root op was created by %s", b, root.builder)
	}
	defer runtime.KeepAlive(b)
	var cComp C.xla_computation
	err := statusToError(C.build(b.wrapper.c, root.cOp, &cComp))
	if err != nil {
		return nil, errors.WithMessagef(err, "while building computation from %s", b)
	}
	comp := newXlaComputation(cComp)
	klog.V(2).Infof("built computation %q from %s", comp.Name(), b)
	return comp, nil
}

// Build is a shortcut to op.Builder().Build(op).
func (op *Op) Build() (*XlaComputation, error) {
	if op == nil {
		return nil, errors.WithStack(ErrDestroyed)
	}
	return op.builder.Build(op)
}
