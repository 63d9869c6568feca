package mpp

import (
	"errors"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

// ErrOversizedFrame is returned when a frame buffer is too small for the
// geometry it's asked to hold. Re-exported from internal/pixfmt, which owns
// the definition so internal/yuv can wrap it without importing this package.
var ErrOversizedFrame = pixfmt.ErrOversizedFrame

// Error kinds scoped to the encoder adapter's boundary.
var (
	// ErrUnsupportedFormat is returned when a Frame's PixelFormat has no
	// vendor format tag, when a downscale is requested for a format
	// with no defined scaler (anything but NV12), or when the frame is
	// NV16 or NV24, which the frame preparation does not copy.
	ErrUnsupportedFormat = errors.New("mpp: unsupported pixel format")

	// ErrReconfigure wraps any failure during the allocate sequence. A
	// Reconfigure failure always leaves the adapter Uninit.
	ErrReconfigure = errors.New("mpp: reconfigure failed")

	// ErrAllocFailed is returned by a Backend when a DMA buffer or vendor
	// context cannot be allocated.
	ErrAllocFailed = errors.New("mpp: dma allocation failed")

	// ErrDMASync is returned when the CPU cache flush before submission
	// fails.
	ErrDMASync = errors.New("mpp: cache sync failed")

	// ErrSubmitFailed is returned when the vendor context rejects a
	// submitted frame descriptor.
	ErrSubmitFailed = errors.New("mpp: submit failed")

	// ErrRetrieveFailed is returned when the vendor context cannot
	// produce a packet for a submitted frame.
	ErrRetrieveFailed = errors.New("mpp: retrieve failed")

	// ErrEmptyPacket is returned when the vendor context returns a packet
	// with zero length.
	ErrEmptyPacket = errors.New("mpp: encoder returned an empty packet")
)
