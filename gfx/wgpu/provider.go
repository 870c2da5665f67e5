package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphquad"
)

// ErrNoHALAccess is returned when a device provider does not expose its
// HAL device and queue.
var ErrNoHALAccess = errors.New("wgpu: provider does not expose HAL types")

// halProvider is implemented by providers (such as gogpu) that share their
// HAL device.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a backend on the device of an external provider.
// The provider must also implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int, opts ...Option) (*Backend, error) {
	if provider == nil {
		return nil, glyphquad.ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHALAccess, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHALAccess, hp.HalQueue())
	}
	return New(device, queue, width, height, opts...)
}
