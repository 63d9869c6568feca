package mpp

import "github.com/garagehq/ustreamer-mpp/internal/pixfmt"

// Format is the vendor MPP format tag an encoder context is configured for.
// It mirrors MPP_FMT_YUV420SP and friends from the vendor headers, without
// depending on them.
type Format int

const (
	FormatNV12 Format = iota
	FormatNV16
	FormatNV24
	FormatYUYV
	FormatUYVY
	FormatRGB24
	FormatBGR24
)

func (f Format) String() string {
	switch f {
	case FormatNV12:
		return "NV12"
	case FormatNV16:
		return "NV16"
	case FormatNV24:
		return "NV24"
	case FormatYUYV:
		return "YUYV"
	case FormatUYVY:
		return "UYVY"
	case FormatRGB24:
		return "RGB24"
	case FormatBGR24:
		return "BGR24"
	default:
		return "unknown"
	}
}

// formatFor maps a pixfmt.PixelFormat to its vendor Format tag. JPEG and any
// value outside the closed set have no tag and return ok=false, matching
// spec §4.1's "_v4l2_to_mpp_format returns a sentinel" supplement: the
// adapter turns a false here into ErrUnsupportedFormat.
func formatFor(f pixfmt.PixelFormat) (Format, bool) {
	switch f {
	case pixfmt.NV12:
		return FormatNV12, true
	case pixfmt.NV16:
		return FormatNV16, true
	case pixfmt.NV24:
		return FormatNV24, true
	case pixfmt.YUYV:
		return FormatYUYV, true
	case pixfmt.UYVY:
		return FormatUYVY, true
	case pixfmt.RGB24:
		return FormatRGB24, true
	case pixfmt.BGR24:
		return FormatBGR24, true
	default:
		return 0, false
	}
}

// FrameBufferSize computes the frame DMA buffer size for a format at the
// given 16-aligned strides, per spec §4.4's allocation step 5.
func FrameBufferSize(horStride, verStride int, f Format) int {
	base := horStride * verStride
	switch f {
	case FormatNV12:
		return base * 3 / 2
	case FormatNV16, FormatYUYV, FormatUYVY:
		return base * 2
	case FormatNV24, FormatRGB24, FormatBGR24:
		return base * 3
	default:
		return base
	}
}

// PacketBufferSize is the conservative tw*th upper bound from spec §4.4
// step 6's allocation sequence (kept per the spec's Open Question rather
// than the tighter alternative, matching the original's literal comment).
func PacketBufferSize(tw, th int) int {
	return tw * th
}
