package mpp

import (
	"fmt"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/yuv"
)

// prepareFrameBuffer copies src into dst (the frame DMA buffer, sized for
// horStride x verStride at vendorFmt), per spec §4.4 per-frame step 1: NV12
// goes through the §4.3 scaler (or aligned copy when no scaling is
// needed); the packed formats (YUYV, UYVY, RGB24, BGR24) are a straight
// stride-aligned row copy, since §4.3 only defines a nearest-neighbour
// scaler for semi-planar 4:2:0. NV16 and NV24 are not copied: they fail
// with ErrUnsupportedFormat.
func prepareFrameBuffer(dst []byte, horStride, verStride int, vendorFmt Format, src *pixfmt.Frame, tw, th int) error {
	if vendorFmt == FormatNV12 {
		if tw == src.Width && th == src.Height {
			return yuv.AlignedCopyNV12(src.Data(), src.Width, src.Height, dst)
		}
		return yuv.DownscaleNV12(src.Data(), src.Width, src.Height, dst, tw, th)
	}

	if tw != src.Width || th != src.Height {
		return fmt.Errorf("%w: downscale not supported for %s", ErrUnsupportedFormat, src.Format)
	}
	channels, ok := pixfmt.Channels(src.Format)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Format)
	}
	return copyPackedAligned(dst, horStride, verStride, channels, src.Data(), src.Width, src.Height)
}

// copyPackedAligned row-copies a packed source of w x h at channels bytes
// per pixel into dst at aligned row stride horStride (in pixels), zero-
// filling the destination first so padding never leaks garbage.
func copyPackedAligned(dst []byte, horStride, verStride, channels int, src []byte, w, h int) error {
	rowBytes := w * channels
	dstRowBytes := horStride * channels
	needed := dstRowBytes * verStride
	if len(dst) < needed {
		return fmt.Errorf("%w: frame buffer too small: have %d, need %d", ErrOversizedFrame, len(dst), needed)
	}
	if len(src) < rowBytes*h {
		return fmt.Errorf("%w: source buffer too small for %dx%d at %d channels", ErrOversizedFrame, w, h, channels)
	}
	for i := range dst[:needed] {
		dst[i] = 0
	}
	if dstRowBytes == rowBytes {
		copy(dst[:rowBytes*h], src[:rowBytes*h])
		return nil
	}
	for y := 0; y < h; y++ {
		copy(dst[y*dstRowBytes:y*dstRowBytes+rowBytes], src[y*rowBytes:y*rowBytes+rowBytes])
	}
	return nil
}
