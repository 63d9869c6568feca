package mpp

// Backend is the vendor-library boundary an Adapter drives through its
// reconfigure and per-frame protocols. A concrete Backend owns exactly one
// vendor context and its DMA buffer group; there is no legitimate second
// owner, so Configure tears down and replaces everything in one call
// rather than mutating a live context in place.
type Backend interface {
	// Configure (re)allocates the vendor context, config object, buffer
	// group, and frame/packet DMA buffers for (tw, th, horStride,
	// verStride, vendorFmt, quality), per spec §4.4's six-step allocation
	// sequence. Any failure must unwind everything Configure allocated
	// before returning.
	Configure(tw, th, horStride, verStride int, vendorFmt Format, quality int) error

	// FrameBuffer returns the writable DMA frame buffer sized for the most
	// recent successful Configure call. Callers (Adapter, then the
	// blocking compositor and text overlay) write pixel data into it
	// in place.
	FrameBuffer() []byte

	// Encode flushes the CPU cache for FrameBuffer's writable range
	// (cache-sync end), binds it to a vendor frame descriptor, submits it,
	// retrieves the resulting packet, and returns a copy of its bytes.
	// Frame and packet descriptors are released in reverse order before
	// Encode returns.
	Encode() ([]byte, error)

	// Close releases the vendor context and all DMA buffers in reverse
	// acquisition order. Safe to call on a Backend that was never
	// successfully Configured.
	Close() error
}

// BackendFactory builds a fresh Backend instance. Adapter calls it once per
// reconfigure (never reuses a torn-down Backend), matching spec §4.4's
// Uninit -> Ready -> Uninit -> Ready reconfigure cycle.
type BackendFactory func(name string) Backend
