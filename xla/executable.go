package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// LoadedExecutable is a computation compiled for the devices of a Client, ready to be executed.
type LoadedExecutable struct {
	wrapper *executableWrapper
	client  *Client
}

// executableWrapper holds the native executable, and it is registered in its client.
type executableWrapper struct {
	c      C.pjrt_loaded_executable
	client *clientWrapper
}

func (w *executableWrapper) destroy() {
	w.client.mu.Lock()
	defer w.client.mu.Unlock()
	w.client.registryMu.Lock()
	defer w.client.registryMu.Unlock()
	w.destroyLocked()
}

// destroyLocked releases the executable. It must be called with the client's mu write-locked and its
// registryMu locked.
func (w *executableWrapper) destroyLocked() {
	if w.c == nil {
		return
	}
	C.pjrt_loaded_executable_free(w.c)
	w.c = nil
	delete(w.client.executables, w)
	handleReleased(ExecutableHandle)
}

// newLoadedExecutable creates the LoadedExecutable and registers it in the client and for freeing.
// It must be called from within client.use.
func newLoadedExecutable(client *Client, cExec C.pjrt_loaded_executable) *LoadedExecutable {
	e := &LoadedExecutable{
		wrapper: &executableWrapper{c: cExec, client: client.wrapper},
		client:  client,
	}
	client.wrapper.registerExecutable(e.wrapper)
	handleAcquired(ExecutableHandle)
	runtime.AddCleanup(e, func(w *executableWrapper) { w.destroy() }, e.wrapper)
	return e
}

// Destroy the executable, releasing its resources. It is no longer valid afterward.
// This is automatically called if the LoadedExecutable is garbage collected, or if its client is destroyed.
//
// It waits for the native calls in flight on the client to finish.
func (e *LoadedExecutable) Destroy() {
	if e == nil || e.wrapper == nil {
		return
	}
	e.wrapper.destroy()
}

// IsNil returns whether the executable is nil or has already been destroyed.
func (e *LoadedExecutable) IsNil() bool {
	return e.use("LoadedExecutable", func(C.pjrt_loaded_executable) error { return nil }) != nil
}

// use calls fn with the native executable, which can't be destroyed until fn returns.
// See clientWrapper.use.
func (e *LoadedExecutable) use(what string, fn func(cExec C.pjrt_loaded_executable) error) error {
	if e == nil || e.wrapper == nil {
		return errors.Wrap(ErrDestroyed, what)
	}
	w := e.wrapper
	return w.client.use(what, func() error {
		if w.c == nil {
			return errors.Wrap(ErrDestroyed, what)
		}
		return fn(w.c)
	})
}

// Client used to compile the executable.
func (e *LoadedExecutable) Client() *Client {
	return e.client
}

// Execute the computation with the given inputs, transferred from the host.
//
// The result is indexed by device (replica) and then by output: for a single device computation, the
// outputs are in result[0]. The buffers are owned by the caller (and tracked by the client).
func (e *LoadedExecutable) Execute(inputs ...*Literal) ([][]*Buffer, error) {
	cInputs := make([]C.literal, len(inputs))
	for ii, input := range inputs {
		if input.IsNil() {
			return nil, errors.Wrapf(ErrDestroyed, "LoadedExecutable.Execute: input #%d", ii)
		}
		cInputs[ii] = input.cLiteral
	}
	numInputs, err := cCount(len(inputs))
	if err != nil {
		return nil, errors.WithMessage(err, "LoadedExecutable.Execute")
	}
	cArray := cMallocArrayFromSlice(cInputs)
	defer cFree(cArray)
	defer runtime.KeepAlive(inputs)
	klog.V(2).Infof("executing with %d literal inputs", len(inputs))
	var outputs [][]*Buffer
	err = e.use("LoadedExecutable.Execute", func(cExec C.pjrt_loaded_executable) error {
		var cOutputs **C.pjrt_buffer
		status := C.execute(cExec, cArray, numInputs, &cOutputs)
		outputs = e.collectOutputsLocked(cOutputs)
		return statusToError(status)
	})
	return e.outputsOrError(outputs, err)
}

// ExecuteBuffers executes the computation with the given inputs, already on device.
// The input buffers are not modified, and they remain owned by the caller.
//
// See Execute for the layout of the result.
func (e *LoadedExecutable) ExecuteBuffers(inputs ...*Buffer) ([][]*Buffer, error) {
	numInputs, err := cCount(len(inputs))
	if err != nil {
		return nil, errors.WithMessage(err, "LoadedExecutable.ExecuteBuffers")
	}
	klog.V(2).Infof("executing with %d buffer inputs", len(inputs))
	var outputs [][]*Buffer
	err = e.use("LoadedExecutable.ExecuteBuffers", func(cExec C.pjrt_loaded_executable) error {
		// The inputs are checked with the client locked, so they can't be destroyed during the execution.
		cInputs := make([]C.pjrt_buffer, len(inputs))
		for ii, input := range inputs {
			cBuffer, err := input.nativeLocked(e.wrapper.client)
			if err != nil {
				return errors.WithMessagef(err, "input #%d", ii)
			}
			cInputs[ii] = cBuffer
		}
		cArray := cMallocArrayFromSlice(cInputs)
		defer cFree(cArray)
		var cOutputs **C.pjrt_buffer
		status := C.execute_b(cExec, cArray, numInputs, &cOutputs)
		outputs = e.collectOutputsLocked(cOutputs)
		return statusToError(status)
	})
	return e.outputsOrError(outputs, err)
}

// collectOutputsLocked wraps the buffers returned by an execution and frees the arrays holding them.
// It must be called from within LoadedExecutable.use.
func (e *LoadedExecutable) collectOutputsLocked(cOutputs **C.pjrt_buffer) [][]*Buffer {
	if cOutputs == nil {
		return nil
	}
	devices, err := e.client.devicesLocked(e.wrapper.client.c, true)
	if err != nil {
		klog.Errorf("failed to list the devices of the outputs: %+v", err)
	}
	var outputs [][]*Buffer
	for deviceIdx, cDeviceOutputs := range cNullTerminated(unsafe.Pointer(cOutputs)) {
		var device *Device
		if deviceIdx < len(devices) {
			device = devices[deviceIdx]
		}
		cBuffers := cNullTerminated(cDeviceOutputs)
		deviceOutputs := make([]*Buffer, len(cBuffers))
		for ii, cBuffer := range cBuffers {
			deviceOutputs[ii] = newBuffer(e.client, C.pjrt_buffer(cBuffer), device)
		}
		outputs = append(outputs, deviceOutputs)
		C.free(cDeviceOutputs)
	}
	C.free(unsafe.Pointer(cOutputs))
	return outputs
}

// outputsOrError returns the outputs of a successful execution. On error, any buffers returned are destroyed.
func (e *LoadedExecutable) outputsOrError(outputs [][]*Buffer, err error) ([][]*Buffer, error) {
	if err != nil {
		for _, deviceOutputs := range outputs {
			for _, buffer := range deviceOutputs {
				buffer.Destroy()
			}
		}
		return nil, errors.WithMessage(err, "while executing computation")
	}
	return outputs, nil
}

// ExecuteAndFetch executes the computation with the given inputs (literals or buffers), and transfers
// all the outputs back to the host. The output buffers are destroyed.
//
// The result is indexed by device (replica) and then by output, as in LoadedExecutable.Execute.
func ExecuteAndFetch[In *Literal | *Buffer](e *LoadedExecutable, inputs ...In) ([][]*Literal, error) {
	var outputs [][]*Buffer
	var err error
	switch typedInputs := any(inputs).(type) {
	case []*Literal:
		outputs, err = e.Execute(typedInputs...)
	case []*Buffer:
		outputs, err = e.ExecuteBuffers(typedInputs...)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, deviceOutputs := range outputs {
			for _, buffer := range deviceOutputs {
				buffer.Destroy()
			}
		}
	}()
	results := make([][]*Literal, len(outputs))
	for deviceIdx, deviceOutputs := range outputs {
		results[deviceIdx] = make([]*Literal, len(deviceOutputs))
		for ii, buffer := range deviceOutputs {
			results[deviceIdx][ii], err = buffer.ToLiteralSync()
			if err != nil {
				for _, deviceResults := range results {
					for _, literal := range deviceResults {
						literal.Destroy()
					}
				}
				return nil, errors.WithMessagef(err, "while fetching output #%d of device #%d", ii, deviceIdx)
			}
		}
	}
	return results, nil
}
