package xla

/*
#include <stdlib.h>
#include "xla_rs.h"
*/
import "C"
import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Client manages the resources of the devices of one platform: compilation of computations, transfers of
// buffers and execution.
//
// The client tracks every LoadedExecutable and Buffer it creates: Client.Destroy destroys those still
// alive before releasing the client itself.
type Client struct {
	wrapper                       *clientWrapper
	platform                      Platform
	platformName, platformVersion string
}

// clientWrapper holds the native client, and the registry of the native resources created from it.
//
// Buffers and executables reference the clientWrapper, not the Client, so a Client can be garbage
// collected while some of its buffers are still registered.
type clientWrapper struct {
	// mu is read-locked during every native call on the client or on one of its buffers, executables and
	// devices, and write-locked to destroy any of them.
	mu sync.RWMutex
	c  C.pjrt_client

	// registryMu guards the registry, which is updated while mu is read-locked.
	registryMu  sync.Mutex
	buffers     map[*bufferWrapper]struct{}
	executables map[*executableWrapper]struct{}
}

func (w *clientWrapper) destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.c == nil {
		return
	}
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	if len(w.buffers) > 0 || len(w.executables) > 0 {
		klog.V(1).Infof("destroying client with %d buffers and %d executables still alive", len(w.buffers), len(w.executables))
	}
	for buffer := range w.buffers {
		buffer.destroyLocked()
	}
	for exec := range w.executables {
		exec.destroyLocked()
	}
	C.pjrt_client_free(w.c)
	w.c = nil
	handleReleased(ClientHandle)
}

// use calls fn with mu read-locked, after checking that the client is alive: the client and the resources
// created from it can't be destroyed while fn runs. fn must not call use again.
func (w *clientWrapper) use(what string, fn func() error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.c == nil {
		return errors.Wrapf(ErrDestroyed, "%s: client", what)
	}
	return fn()
}

func (w *clientWrapper) registerBuffer(b *bufferWrapper) {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	w.buffers[b] = struct{}{}
}

func (w *clientWrapper) registerExecutable(e *executableWrapper) {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	w.executables[e] = struct{}{}
}

// NewCPUClient creates a client for the host CPU.
func NewCPUClient() (*Client, error) {
	var cClient C.pjrt_client
	if err := statusToError(C.pjrt_cpu_client_create(&cClient)); err != nil {
		return nil, errors.WithMessage(err, "failed to create CPU client")
	}
	return newClient(cClient, CPU), nil
}

// NewGPUClient creates a client for the GPUs, that may use the given fraction of the GPU memory.
// If preallocate is true, the memory is allocated at once during the client creation.
func NewGPUClient(memoryFraction float64, preallocate bool) (*Client, error) {
	var cClient C.pjrt_client
	if err := statusToError(C.pjrt_gpu_client_create(&cClient, C.double(memoryFraction), C.bool(preallocate))); err != nil {
		return nil, errors.WithMessage(err, "failed to create GPU client")
	}
	return newClient(cClient, GPU), nil
}

// NewTPUClient creates a client for the TPUs, with at most maxInflightComputations computations enqueued at once.
func NewTPUClient(maxInflightComputations int) (*Client, error) {
	cMax, err := cCount(maxInflightComputations)
	if err != nil {
		return nil, errors.WithMessage(err, "NewTPUClient")
	}
	var cClient C.pjrt_client
	if err := statusToError(C.pjrt_tpu_client_create(&cClient, cMax)); err != nil {
		return nil, errors.WithMessage(err, "failed to create TPU client")
	}
	return newClient(cClient, TPU), nil
}

// NewClient creates a client for the platform and with the options of the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "NewClient")
	}
	switch cfg.Platform {
	case GPU:
		return NewGPUClient(cfg.MemoryFraction, cfg.Preallocate)
	case TPU:
		return NewTPUClient(cfg.MaxInflightComputations)
	default:
		return NewCPUClient()
	}
}

func newClient(cClient C.pjrt_client, platform Platform) *Client {
	c := &Client{
		wrapper: &clientWrapper{
			c:           cClient,
			buffers:     make(map[*bufferWrapper]struct{}),
			executables: make(map[*executableWrapper]struct{}),
		},
		platform:        platform,
		platformName:    cStrFree(C.pjrt_client_platform_name(cClient)),
		platformVersion: cStrFree(C.pjrt_client_platform_version(cClient)),
	}
	handleAcquired(ClientHandle)
	runtime.AddCleanup(c, func(w *clientWrapper) { w.destroy() }, c.wrapper)
	klog.V(1).Infof("created %s", c)
	return c
}

// Destroy the client, and all the buffers and executables created with it that are still alive.
// The client is no longer valid afterward.
// This is automatically called if the Client is garbage collected.
func (c *Client) Destroy() {
	if c == nil || c.wrapper == nil {
		return
	}
	c.wrapper.destroy()
}

// IsNil returns whether the client is nil or has already been destroyed.
func (c *Client) IsNil() bool {
	return c.use("Client", func(C.pjrt_client) error { return nil }) != nil
}

// String implements fmt.Stringer.
func (c *Client) String() string {
	if c.IsNil() {
		return "Client(destroyed)"
	}
	return fmt.Sprintf("Client[platform=%s, %q - %s]", c.platform, c.platformName, c.platformVersion)
}

// Platform of the client.
func (c *Client) Platform() Platform {
	return c.platform
}

// PlatformName returns the name of the platform as reported by XLA, e.g.: "cpu", "cuda".
func (c *Client) PlatformName() string {
	return c.platformName
}

// PlatformVersion returns the version of the platform as reported by XLA.
func (c *Client) PlatformVersion() string {
	return c.platformVersion
}

// NumBuffers returns the number of buffers created with this client still alive.
func (c *Client) NumBuffers() int {
	c.wrapper.registryMu.Lock()
	defer c.wrapper.registryMu.Unlock()
	return len(c.wrapper.buffers)
}

// NumExecutables returns the number of executables compiled with this client still alive.
func (c *Client) NumExecutables() int {
	c.wrapper.registryMu.Lock()
	defer c.wrapper.registryMu.Unlock()
	return len(c.wrapper.executables)
}

// use calls fn with the native client, which is kept alive until fn returns.
// See clientWrapper.use.
func (c *Client) use(what string, fn func(cClient C.pjrt_client) error) error {
	if c == nil || c.wrapper == nil {
		return errors.Wrap(ErrDestroyed, what)
	}
	return c.wrapper.use(what, func() error { return fn(c.wrapper.c) })
}

// DeviceCount returns the number of devices visible to the client, including non-addressable ones.
func (c *Client) DeviceCount() int {
	var count int
	err := c.use("Client.DeviceCount", func(cClient C.pjrt_client) error {
		count = int(C.pjrt_client_device_count(cClient))
		return nil
	})
	if err != nil {
		return 0
	}
	return count
}

// AddressableDeviceCount returns the number of devices the client can issue commands to.
func (c *Client) AddressableDeviceCount() int {
	var count int
	err := c.use("Client.AddressableDeviceCount", func(cClient C.pjrt_client) error {
		count = int(C.pjrt_client_addressable_device_count(cClient))
		return nil
	})
	if err != nil {
		return 0
	}
	return count
}

// Devices returns all devices visible to the client, including non-addressable ones.
func (c *Client) Devices() (devices []*Device, err error) {
	err = c.use("Client.Devices", func(cClient C.pjrt_client) error {
		devices, err = c.devicesLocked(cClient, false)
		return err
	})
	return
}

// AddressableDevices returns the devices the client can issue commands to.
// All devices are addressable in a single-process setting.
func (c *Client) AddressableDevices() (devices []*Device, err error) {
	err = c.use("Client.AddressableDevices", func(cClient C.pjrt_client) error {
		devices, err = c.devicesLocked(cClient, true)
		return err
	})
	return
}

// devicesLocked lists the devices of the client. It must be called from within Client.use.
func (c *Client) devicesLocked(cClient C.pjrt_client, addressable bool) ([]*Device, error) {
	var n int
	var err error
	if addressable {
		n, err = goCount(int32(C.pjrt_client_addressable_device_count(cClient)))
	} else {
		n, err = goCount(int32(C.pjrt_client_device_count(cClient)))
	}
	if err != nil {
		return nil, err
	}
	cDevices := make([]C.pjrt_device, max(n, 1))
	if addressable {
		C.pjrt_client_addressable_devices(cClient, unsafe.SliceData(cDevices))
	} else {
		C.pjrt_client_devices(cClient, unsafe.SliceData(cDevices))
	}
	return c.newDevices(cDevices[:n]), nil
}

// Compile the computation into a LoadedExecutable for the devices of this client.
func (c *Client) Compile(comp *XlaComputation) (*LoadedExecutable, error) {
	if comp.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Client.Compile: computation")
	}
	defer runtime.KeepAlive(comp)
	var exec *LoadedExecutable
	err := c.use("Client.Compile", func(cClient C.pjrt_client) error {
		var cExec C.pjrt_loaded_executable
		if err := statusToError(C.compile(cClient, comp.cComp, &cExec)); err != nil {
			return err
		}
		exec = newLoadedExecutable(c, cExec)
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "while compiling computation %q", comp.Name())
	}
	klog.V(1).Infof("compiled computation %q for %s", comp.Name(), c)
	return exec, nil
}

// BufferFromHostLiteral transfers the literal to a new buffer on the given device.
// If device is nil, the default device of the client is used.
func (c *Client) BufferFromHostLiteral(device *Device, literal *Literal) (*Buffer, error) {
	if literal.IsNil() {
		return nil, errors.Wrap(ErrDestroyed, "Client.BufferFromHostLiteral: literal")
	}
	defer runtime.KeepAlive(literal)
	var buffer *Buffer
	err := c.use("Client.BufferFromHostLiteral", func(cClient C.pjrt_client) error {
		cDevice, err := device.nativeOrNilLocked(c)
		if err != nil {
			return err
		}
		var cBuffer C.pjrt_buffer
		if err := statusToError(C.pjrt_buffer_from_host_literal(cClient, cDevice, literal.cLiteral, &cBuffer)); err != nil {
			return err
		}
		buffer = newBuffer(c, cBuffer, device)
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "while transferring %s to device", literal)
	}
	return buffer, nil
}

// BufferFromHostBuffer transfers the flat values (in row-major order) of an array with the given dimensions
// to a new buffer on the device. If device is nil, the default device of the client is used.
// If dims is omitted, the values are transferred as a vector.
func BufferFromHostBuffer[T dtypes.ArrayElement](c *Client, device *Device, flat []T, dims ...int64) (*Buffer, error) {
	if len(dims) == 0 {
		dims = []int64{int64(len(flat))}
	}
	shape := shapes.ArrayShapeOf[T](dims...)
	count, err := shape.ElementCount()
	if err != nil {
		return nil, errors.WithMessage(err, "BufferFromHostBuffer")
	}
	if count != int64(len(flat)) {
		return nil, errors.Errorf("BufferFromHostBuffer got %d values for shape %s with %d elements", len(flat), shape, count)
	}
	rank, err := cCount(len(dims))
	if err != nil {
		return nil, errors.WithMessage(err, "BufferFromHostBuffer")
	}
	cDims, _ := cInt64Array(dims)
	defer cFree(cDims)
	var buffer *Buffer
	err = c.use("BufferFromHostBuffer", func(cClient C.pjrt_client) error {
		cDevice, err := device.nativeOrNilLocked(c)
		if err != nil {
			return err
		}
		var cBuffer C.pjrt_buffer
		err = statusToError(C.pjrt_buffer_from_host_buffer(cClient, cDevice, unsafe.Pointer(unsafe.SliceData(flat)),
			C.int(shape.ElementType), rank, cDims, &cBuffer))
		if err != nil {
			return err
		}
		buffer = newBuffer(c, cBuffer, device)
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "while transferring %s to device", shape)
	}
	return buffer, nil
}
