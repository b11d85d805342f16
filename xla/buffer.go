package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"
	"unsafe"

	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
)

// Buffer is a reference to an array (or tuple) stored on a device.
//
// Buffers are tracked by the Client that created them: they are destroyed at the latest when the client is.
type Buffer struct {
	wrapper *bufferWrapper
	client  *Client
	device  *Device
}

// bufferWrapper holds the native buffer, and it is registered in its client.
type bufferWrapper struct {
	c      C.pjrt_buffer
	client *clientWrapper
}

func (w *bufferWrapper) destroy() {
	w.client.mu.Lock()
	defer w.client.mu.Unlock()
	w.client.registryMu.Lock()
	defer w.client.registryMu.Unlock()
	w.destroyLocked()
}

// destroyLocked releases the buffer. It must be called with the client's mu write-locked and its
// registryMu locked.
func (w *bufferWrapper) destroyLocked() {
	if w.c == nil {
		return
	}
	C.pjrt_buffer_free(w.c)
	w.c = nil
	delete(w.client.buffers, w)
	handleReleased(BufferHandle)
}

// newBuffer creates the Buffer and registers it in the client and for freeing.
// device may be nil if not known. It must be called from within client.use.
func newBuffer(client *Client, cBuffer C.pjrt_buffer, device *Device) *Buffer {
	b := &Buffer{
		wrapper: &bufferWrapper{c: cBuffer, client: client.wrapper},
		client:  client,
		device:  device,
	}
	client.wrapper.registerBuffer(b.wrapper)
	handleAcquired(BufferHandle)
	runtime.AddCleanup(b, func(w *bufferWrapper) { w.destroy() }, b.wrapper)
	return b
}

// Destroy the Buffer, releasing its resources. It is no longer valid afterward.
// This is automatically called if the Buffer is garbage collected, or if its client is destroyed.
//
// It waits for the native calls in flight on the client to finish.
func (b *Buffer) Destroy() {
	if b == nil || b.wrapper == nil {
		return
	}
	b.wrapper.destroy()
}

// IsNil returns whether the buffer is nil or has already been destroyed.
func (b *Buffer) IsNil() bool {
	return b.use("Buffer", func(C.pjrt_buffer) error { return nil }) != nil
}

// use calls fn with the native buffer, which can't be destroyed until fn returns. See clientWrapper.use.
func (b *Buffer) use(what string, fn func(cBuffer C.pjrt_buffer) error) error {
	if b == nil || b.wrapper == nil {
		return errors.Wrap(ErrDestroyed, what)
	}
	w := b.wrapper
	return w.client.use(what, func() error {
		if w.c == nil {
			return errors.Wrap(ErrDestroyed, what)
		}
		return fn(w.c)
	})
}

// nativeLocked returns the native buffer for use with client, from within client.use.
func (b *Buffer) nativeLocked(client *clientWrapper) (C.pjrt_buffer, error) {
	if b == nil || b.wrapper == nil || b.wrapper.c == nil {
		return nil, errors.Wrap(ErrDestroyed, "Buffer")
	}
	if b.wrapper.client != client {
		return nil, errors.New("buffer belongs to a different client")
	}
	return b.wrapper.c, nil
}

// Client that owns the buffer.
func (b *Buffer) Client() *Client {
	return b.client
}

// Device where the buffer is stored. It is nil if the buffer was transferred to the client's default device.
func (b *Buffer) Device() *Device {
	return b.device
}

// ToLiteralSync transfers the buffer contents to a new Literal on the host, blocking until it is done.
//
// Concurrent transfers can be made by calling it from different goroutines.
func (b *Buffer) ToLiteralSync() (*Literal, error) {
	var cLiteral C.literal
	err := b.use("Buffer.ToLiteralSync", func(cBuffer C.pjrt_buffer) error {
		return statusToError(C.pjrt_buffer_to_literal_sync(cBuffer, &cLiteral))
	})
	if err != nil {
		return nil, errors.WithMessage(err, "while transferring buffer to host")
	}
	return newLiteral(cLiteral), nil
}

// OnDeviceShape returns the shape of the buffer, as stored on the device.
func (b *Buffer) OnDeviceShape() (shapes.Shape, error) {
	var cShape C.shape
	err := b.use("Buffer.OnDeviceShape", func(cBuffer C.pjrt_buffer) error {
		cShape = C.pjrt_buffer_on_device_shape(cBuffer)
		return nil
	})
	if err != nil {
		return shapes.Shape{}, err
	}
	return shapeFromCAndFree(cShape)
}

// CopyToDevice copies the buffer to a new buffer on another device of the same client.
func (b *Buffer) CopyToDevice(device *Device) (*Buffer, error) {
	if device == nil {
		return nil, errors.New("Buffer.CopyToDevice: no device given")
	}
	var copied *Buffer
	err := b.use("Buffer.CopyToDevice", func(cBuffer C.pjrt_buffer) error {
		cDevice, err := device.nativeOrNilLocked(b.client)
		if err != nil {
			return err
		}
		var cCopy C.pjrt_buffer
		if err := statusToError(C.pjrt_buffer_copy_to_device(cBuffer, cDevice, &cCopy)); err != nil {
			return err
		}
		copied = newBuffer(b.client, cCopy, device)
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "while copying buffer to device %s", device)
	}
	return copied, nil
}

// CopyRawToHostSync copies len(dst) bytes of the buffer's raw data, starting at offset, to dst.
// It blocks until the transfer is done.
func (b *Buffer) CopyRawToHostSync(dst []byte, offset int) error {
	if offset < 0 {
		return errors.Errorf("Buffer.CopyRawToHostSync: invalid negative offset %d", offset)
	}
	err := b.use("Buffer.CopyRawToHostSync", func(cBuffer C.pjrt_buffer) error {
		if len(dst) == 0 {
			return nil
		}
		return statusToError(C.pjrt_buffer_copy_raw_to_host_sync(cBuffer, unsafe.Pointer(unsafe.SliceData(dst)),
			C.size_t(offset), C.size_t(len(dst))))
	})
	if err != nil {
		return errors.WithMessagef(err, "while copying %d bytes at offset %d of buffer to host", len(dst), offset)
	}
	return nil
}
