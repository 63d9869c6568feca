package yuv

import (
	"testing"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGreyNV12(w, h int, y, uv byte) []byte {
	buf := make([]byte, w*h+w*h/2)
	for i := 0; i < w*h; i++ {
		buf[i] = y
	}
	for i := w * h; i < len(buf); i++ {
		buf[i] = uv
	}
	return buf
}

func TestDownscaleNV12_UniformFrameStaysUniform(t *testing.T) {
	src := makeGreyNV12(1920, 1080, 0x80, 0x80)
	dst := make([]byte, DestSize(640, 360))
	require.NoError(t, DownscaleNV12(src, 1920, 1080, dst, 640, 360))

	yStride := pixfmt.Align16(640)
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			assert.Equal(t, byte(0x80), dst[y*yStride+x])
		}
	}
}

func TestDownscaleNV12_EvenBoundaries(t *testing.T) {
	src := makeGreyNV12(1921, 1081, 0x10, 0x80)
	dst := make([]byte, DestSize(641, 361))
	// dstW will be rounded down to 640; dstH=361 is odd and rejected.
	err := DownscaleNV12(src, 1921, 1081, dst, 641, 361)
	assert.Error(t, err)
}

func TestDownscaleNV12_UVColumnsStayPaired(t *testing.T) {
	// Build a source where each UV pair has a distinguishable (U,V).
	srcW, srcH := 64, 64
	src := make([]byte, srcW*srcH+srcW*srcH/2)
	for i := 0; i < srcW*srcH; i++ {
		src[i] = 0x40
	}
	uvBase := srcW * srcH
	for y := 0; y < srcH/2; y++ {
		for x := 0; x < srcW; x += 2 {
			src[uvBase+y*srcW+x] = 0x10   // U
			src[uvBase+y*srcW+x+1] = 0x20 // V
		}
	}
	dst := make([]byte, DestSize(32, 32))
	require.NoError(t, DownscaleNV12(src, srcW, srcH, dst, 32, 32))

	yStride := pixfmt.Align16(32)
	vStride := pixfmt.Align16(32)
	uvOff := yStride * vStride
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x += 2 {
			assert.Equal(t, byte(0x10), dst[uvOff+y*yStride+x])
			assert.Equal(t, byte(0x20), dst[uvOff+y*yStride+x+1])
		}
	}
}

func TestAlignedCopyNV12_PreservesContent(t *testing.T) {
	src := makeGreyNV12(100, 64, 0x55, 0xAA)
	dst := make([]byte, DestSize(100, 64))
	require.NoError(t, AlignedCopyNV12(src, 100, 64, dst))

	yStride := pixfmt.Align16(100)
	for y := 0; y < 64; y++ {
		for x := 0; x < 100; x++ {
			assert.Equal(t, byte(0x55), dst[y*yStride+x])
		}
	}
}

func TestAlignedCopyNV12_FastPathWhenStrideMatches(t *testing.T) {
	// width already a multiple of 16: fast contiguous-block path.
	src := makeGreyNV12(32, 16, 0x33, 0x44)
	dst := make([]byte, DestSize(32, 16))
	require.NoError(t, AlignedCopyNV12(src, 32, 16, dst))
	assert.Equal(t, byte(0x33), dst[0])
	assert.Equal(t, byte(0x44), dst[32*16])
}
