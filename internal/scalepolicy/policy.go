package scalepolicy

import "github.com/garagehq/ustreamer-mpp/internal/pixfmt"

// Policy is the closed set of target-resolution rules.
type Policy int

const (
	// Native applies the encoder's "keep up unless the source is 4K NV12"
	// rule (see Resolve).
	Native Policy = iota
	// P1080 clamps to 1920x1080.
	P1080
	// P1440 clamps to 2560x1440.
	P1440
	// P2160 is a no-op: the input passes through unchanged.
	P2160
)

func (p Policy) String() string {
	switch p {
	case Native:
		return "native"
	case P1080:
		return "1080p"
	case P1440:
		return "1440p"
	case P2160:
		return "2160p"
	default:
		return "unknown"
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Resolve maps (policy, input geometry/format) to a target geometry and
// whether that target differs from the input (needsDownscale). It never
// upscales: tw <= w and th <= h always hold.
func Resolve(p Policy, w, h int, format pixfmt.PixelFormat) (tw, th int, needsDownscale bool) {
	switch p {
	case P1080:
		tw, th = min(w, 1920), min(h, 1080)
	case P1440:
		tw, th = min(w, 2560), min(h, 1440)
	case P2160:
		tw, th = w, h
	case Native:
		if w >= 3840 && h >= 2160 && format == pixfmt.NV12 {
			tw, th = 1920, 1080
		} else {
			tw, th = w, h
		}
	default:
		tw, th = w, h
	}
	return tw, th, tw != w || th != h
}
