package softjpeg

import (
	"bytes"
	"testing"
	"time"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/scalepolicy"
)

func greyNV12(w, h int) *pixfmt.Frame {
	used, _ := pixfmt.ExpectedUsedBytes(pixfmt.NV12, w, h)
	buf := make([]byte, used)
	for i := range buf {
		buf[i] = 128
	}
	return &pixfmt.Frame{Bytes: buf, Width: w, Height: h, Stride: w, Format: pixfmt.NV12, UsedBytes: used, CaptureTS: time.Now()}
}

func TestCompressEmitsValidJPEG(t *testing.T) {
	e := New("cpu", 80, scalepolicy.P2160, nil)
	out, err := e.Compress(greyNV12(64, 64))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes, []byte{0xFF, 0xD8, 0xFF}) {
		t.Fatalf("missing SOI marker: %x", out.Bytes[:3])
	}
	if !out.IsKey || out.GOP != 0 {
		t.Fatalf("expected IsKey/GOP per spec, got %v/%d", out.IsKey, out.GOP)
	}
}

func TestCompressDownscalesUnderP1080(t *testing.T) {
	e := New("cpu", 80, scalepolicy.P1080, nil)
	out, err := e.Compress(greyNV12(3840, 2160))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if out.Width != 1920 || out.Height != 1080 {
		t.Fatalf("expected downscale to 1920x1080, got %dx%d", out.Width, out.Height)
	}
}

func TestQualityClampedAtConstruction(t *testing.T) {
	e := New("cpu", 500, scalepolicy.Native, nil)
	if e.Quality() != 99 {
		t.Fatalf("expected clamp to 99, got %d", e.Quality())
	}
}
