// Package capture provides the one frame source this repository ships: a
// synthetic NV12 test-pattern generator. Real V4L2/RTSP capture is an
// external collaborator (out of scope, per spec §1); this package exists so
// cmd/ustreamerd has something to drive the pipeline with end to end,
// grounded on framesupplier/examples/filesim's ticker-driven frame producer
// loop, replacing its "read PNGs from disk" source with an in-memory
// pattern generator since no capture device is assumed present.
package capture

import (
	"context"
	"time"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

// Source produces one Frame per call, blocking until the next tick or ctx
// cancellation.
type Source interface {
	Next(ctx context.Context) (*pixfmt.Frame, error)
}

// SyntheticSource emits an NV12 diagonal-gradient test pattern at a fixed
// resolution and frame rate. Its gradient offset advances every frame so
// consecutive frames are visibly distinct, which is enough to exercise the
// encoder/overlay/blocking pipeline without a real camera.
type SyntheticSource struct {
	width, height int
	interval      time.Duration
	ticker        *time.Ticker
	frame         uint64
}

// NewSyntheticSource builds a generator at width x height, emitting at fps
// frames per second.
func NewSyntheticSource(width, height int, fps float64) *SyntheticSource {
	if fps <= 0 {
		fps = 30
	}
	return &SyntheticSource{
		width:    width,
		height:   height,
		interval: time.Duration(float64(time.Second) / fps),
	}
}

// Next waits for the next tick (lazily starting the ticker on first call)
// and returns a freshly rendered NV12 frame, or ctx.Err() if ctx is
// cancelled first.
func (s *SyntheticSource) Next(ctx context.Context) (*pixfmt.Frame, error) {
	if s.ticker == nil {
		s.ticker = time.NewTicker(s.interval)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ticker.C:
	}

	used, err := pixfmt.ExpectedUsedBytes(pixfmt.NV12, s.width, s.height)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, used)
	renderGradient(buf, s.width, s.height, s.frame)
	s.frame++

	return &pixfmt.Frame{
		Bytes:     buf,
		Width:     s.width,
		Height:    s.height,
		Stride:    s.width,
		Format:    pixfmt.NV12,
		UsedBytes: used,
		CaptureTS: time.Now(),
		IsKey:     true,
	}, nil
}

// Close stops the internal ticker, if started.
func (s *SyntheticSource) Close() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}

// renderGradient fills an NV12 buffer with a diagonal luma ramp that shifts
// by one pixel per frame, plus a fixed neutral chroma plane.
func renderGradient(buf []byte, w, h int, frame uint64) {
	y := buf[:w*h]
	shift := int(frame % 256)
	for row := 0; row < h; row++ {
		base := row * w
		for col := 0; col < w; col++ {
			y[base+col] = byte((col + row + shift) % 256)
		}
	}
	uv := buf[w*h:]
	for i := range uv {
		uv[i] = 128
	}
}
