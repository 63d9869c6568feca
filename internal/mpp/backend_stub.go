//go:build !mpp

package mpp

import "fmt"

// stubBackend is the default (no cgo, no vendor headers) build's Backend:
// Configure fails with ErrAllocFailed, Encode fails with ErrSubmitFailed,
// FrameBuffer returns nil and Close is a no-op. It lets the rest of this module
// compile and run its state machine, HTTP control surface, and worker pool
// on a development machine with no RK3588 present; only Configure's first
// call ever actually touches it; the real hardware path lives in
// backend_mpp.go behind the "mpp" build tag.
type stubBackend struct {
	name string
}

// NewHardwareBackend returns the Backend this build was compiled with. In
// the default build it is a stub that always fails; build with -tags mpp
// to link the real cgo vendor wrapper.
func NewHardwareBackend(name string) Backend {
	return &stubBackend{name: name}
}

func (b *stubBackend) Configure(tw, th, horStride, verStride int, vendorFmt Format, quality int) error {
	return fmt.Errorf("%w: %s: built without -tags mpp, no vendor library linked", ErrAllocFailed, b.name)
}

func (b *stubBackend) FrameBuffer() []byte { return nil }

func (b *stubBackend) Encode() ([]byte, error) {
	return nil, fmt.Errorf("%w: %s: built without -tags mpp", ErrSubmitFailed, b.name)
}

func (b *stubBackend) Close() error { return nil }
