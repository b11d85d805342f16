package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"runtime"

	"github.com/pkg/errors"
)

// Device is a reference to one device of a Client.
//
// Devices are owned by the client: they don't need to be destroyed, and they become invalid when the
// client is destroyed.
type Device struct {
	cDevice C.pjrt_device
	client  *Client
}

func (c *Client) newDevices(cDevices []C.pjrt_device) []*Device {
	devices := make([]*Device, 0, len(cDevices))
	for _, cDevice := range cDevices {
		if cDevice != nil {
			devices = append(devices, &Device{cDevice: cDevice, client: c})
		}
	}
	return devices
}

// Client that owns the device.
func (d *Device) Client() *Client {
	return d.client
}

// use calls fn with the native device, while its client is kept alive. See clientWrapper.use.
func (d *Device) use(what string, fn func(cDevice C.pjrt_device) error) error {
	if d == nil || d.cDevice == nil || d.client == nil {
		return errors.Wrap(ErrDestroyed, what)
	}
	return d.client.use(what, func(C.pjrt_client) error { return fn(d.cDevice) })
}

// nativeOrNilLocked returns the native device to use with client c: nil selects the default device.
// It must be called from within c.use.
func (d *Device) nativeOrNilLocked(c *Client) (C.pjrt_device, error) {
	if d == nil {
		return nil, nil
	}
	if d.client != c {
		return nil, errors.New("device belongs to a different client")
	}
	if d.cDevice == nil {
		return nil, errors.Wrap(ErrDestroyed, "Device")
	}
	return d.cDevice, nil
}

// ID of the device, unique among all devices of the client. It returns -1 if the client was destroyed.
func (d *Device) ID() int {
	id := -1
	_ = d.use("Device.ID", func(cDevice C.pjrt_device) error {
		id = int(C.pjrt_device_id(cDevice))
		return nil
	})
	return id
}

// ProcessIndex of the process that owns the device. Always 0 in single-process settings.
func (d *Device) ProcessIndex() int {
	index := -1
	_ = d.use("Device.ProcessIndex", func(cDevice C.pjrt_device) error {
		index = int(C.pjrt_device_process_index(cDevice))
		return nil
	})
	return index
}

// LocalHardwareID returns the hardware id of the device in its host, or -1 if the device is not addressable.
func (d *Device) LocalHardwareID() int {
	id := -1
	_ = d.use("Device.LocalHardwareID", func(cDevice C.pjrt_device) error {
		id = int(C.pjrt_device_local_hardware_id(cDevice))
		return nil
	})
	return id
}

// Kind of the device, e.g.: "cpu".
func (d *Device) Kind() (kind string) {
	_ = d.use("Device.Kind", func(cDevice C.pjrt_device) error {
		kind = cStrFree(C.pjrt_device_kind(cDevice))
		return nil
	})
	return
}

// DebugString returns a detailed description of the device.
func (d *Device) DebugString() (description string) {
	_ = d.use("Device.DebugString", func(cDevice C.pjrt_device) error {
		description = cStrFree(C.pjrt_device_debug_string(cDevice))
		return nil
	})
	return
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	str := "Device(invalid)"
	_ = d.use("Device.String", func(cDevice C.pjrt_device) error {
		str = cStrFree(C.pjrt_device_to_string(cDevice))
		return nil
	})
	return str
}

// TransferToInfeed enqueues the literal in the infeed queue of the device, to be consumed by a running
// computation.
func (d *Device) TransferToInfeed(literal *Literal) error {
	if literal.IsNil() {
		return errors.Wrap(ErrDestroyed, "Device.TransferToInfeed: literal")
	}
	defer runtime.KeepAlive(literal)
	return d.use("Device.TransferToInfeed", func(cDevice C.pjrt_device) error {
		return statusToError(C.pjrt_device_transfer_to_infeed(cDevice, literal.cLiteral))
	})
}

// TransferFromOutfeed reads the next value of the outfeed queue of the device into the literal, which must
// have the shape of the value.
func (d *Device) TransferFromOutfeed(literal *Literal) error {
	if literal.IsNil() {
		return errors.Wrap(ErrDestroyed, "Device.TransferFromOutfeed: literal")
	}
	defer runtime.KeepAlive(literal)
	return d.use("Device.TransferFromOutfeed", func(cDevice C.pjrt_device) error {
		return statusToError(C.pjrt_device_transfer_from_outfeed(cDevice, literal.cLiteral))
	})
}
