package yuv

import (
	"fmt"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

// DestSize returns the byte length a destination buffer needs for an NV12
// image of dstW x dstH at MPP's 16-aligned strides, i.e. the buffer
// DownscaleNV12 and AlignedCopyNV12 write into.
func DestSize(dstW, dstH int) int {
	yStride := pixfmt.Align16(dstW)
	vStride := pixfmt.Align16(dstH)
	return yStride*vStride + yStride*(vStride/2)
}

// DownscaleNV12 nearest-neighbour scales a packed NV12 source of srcW x srcH
// into dst, an aligned-stride NV12 buffer of dstW x dstH (dstH must be even,
// dstW is rounded down to even). dst is zero-filled first so padding never
// leaks garbage into the encoded output.
//
// Scale factors are 16.16 fixed point: sx = (srcW<<16)/dstW for the Y plane
// and a half-resolution sy for chroma. The UV source column is masked to an
// even index so a sampled U,V pair always stays together.
func DownscaleNV12(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) error {
	dstW &^= 1
	if dstW <= 0 || dstH <= 0 || dstH%2 != 0 {
		return fmt.Errorf("yuv: invalid destination geometry %dx%d", dstW, dstH)
	}
	if srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("yuv: invalid source geometry %dx%d", srcW, srcH)
	}

	yStride := pixfmt.Align16(dstW)
	vStride := pixfmt.Align16(dstH)
	uvOff := yStride * vStride
	needed := uvOff + yStride*(vStride/2)
	if len(dst) < needed {
		return fmt.Errorf("%w: destination buffer too small: have %d, need %d", pixfmt.ErrOversizedFrame, len(dst), needed)
	}
	srcYSize := srcW * srcH
	if len(src) < srcYSize+srcYSize/2 {
		return fmt.Errorf("%w: source buffer too small for %dx%d NV12", pixfmt.ErrOversizedFrame, srcW, srcH)
	}

	for i := range dst[:needed] {
		dst[i] = 0
	}

	sx := (srcW << 16) / dstW
	sy := (srcH << 16) / dstH

	for dy := 0; dy < dstH; dy++ {
		sRow := (dy * sy) >> 16
		srcRow := src[sRow*srcW : sRow*srcW+srcW]
		dstRow := dst[dy*yStride : dy*yStride+dstW]
		for dx := 0; dx < dstW; dx++ {
			dstRow[dx] = srcRow[(dx*sx)>>16]
		}
	}

	srcUVOff := srcYSize
	srcUVStride := srcW
	dstChromaH := dstH / 2
	sy2 := ((srcH / 2) << 16) / dstChromaH
	for dy := 0; dy < dstChromaH; dy++ {
		sRow := (dy * sy2) >> 16
		srcRow := src[srcUVOff+sRow*srcUVStride : srcUVOff+sRow*srcUVStride+srcUVStride]
		dstRow := dst[uvOff+dy*yStride : uvOff+dy*yStride+dstW]
		for dx := 0; dx < dstW; dx += 2 {
			sCol := ((dx * sx) >> 16) &^ 1
			dstRow[dx] = srcRow[sCol]
			dstRow[dx+1] = srcRow[sCol+1]
		}
	}
	return nil
}

// AlignedCopyNV12 copies a packed NV12 source of srcW x srcH row-by-row into
// dst at MPP's 16-aligned strides, with no resampling. dst is zero-filled
// first. If the aligned stride equals srcW, both planes copy as single
// contiguous blocks instead of per-row.
func AlignedCopyNV12(src []byte, srcW, srcH int, dst []byte) error {
	if srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("yuv: invalid source geometry %dx%d", srcW, srcH)
	}
	srcYSize := srcW * srcH
	if len(src) < srcYSize+srcYSize/2 {
		return fmt.Errorf("%w: source buffer too small for %dx%d NV12", pixfmt.ErrOversizedFrame, srcW, srcH)
	}

	yStride := pixfmt.Align16(srcW)
	vStride := pixfmt.Align16(srcH)
	uvOff := yStride * vStride
	chromaH := srcH / 2
	needed := uvOff + yStride*(vStride/2)
	if len(dst) < needed {
		return fmt.Errorf("%w: destination buffer too small: have %d, need %d", pixfmt.ErrOversizedFrame, len(dst), needed)
	}

	for i := range dst[:needed] {
		dst[i] = 0
	}

	if yStride == srcW {
		copy(dst[:srcW*srcH], src[:srcYSize])
		copy(dst[uvOff:uvOff+srcW*chromaH], src[srcYSize:srcYSize+srcW*chromaH])
		return nil
	}

	for y := 0; y < srcH; y++ {
		copy(dst[y*yStride:y*yStride+srcW], src[y*srcW:y*srcW+srcW])
	}
	for y := 0; y < chromaH; y++ {
		srcRowOff := srcYSize + y*srcW
		copy(dst[uvOff+y*yStride:uvOff+y*yStride+srcW], src[srcRowOff:srcRowOff+srcW])
	}
	return nil
}

// ScaleIntoRect nearest-neighbour scales a packed NV12 source into an
// even-aligned rectangle (dstX, dstY, rectW, rectH) of an already-populated
// destination Y/UV plane pair, without touching pixels outside that
// rectangle. This is the blocking compositor's primitive for drawing a
// scaled background or preview window onto the encoder's DMA buffer, as
// opposed to DownscaleNV12/AlignedCopyNV12 which own and zero the whole
// destination buffer for per-frame DMA preparation.
func ScaleIntoRect(src []byte, srcW, srcH int, dstY, dstUV []byte, dstYStride, dstUVStride, dstX, dstYPos, rectW, rectH int) error {
	if rectW <= 0 || rectH <= 0 || rectW%2 != 0 || rectH%2 != 0 {
		return fmt.Errorf("yuv: invalid rect geometry %dx%d", rectW, rectH)
	}
	if srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("yuv: invalid source geometry %dx%d", srcW, srcH)
	}
	srcYSize := srcW * srcH
	if len(src) < srcYSize+srcYSize/2 {
		return fmt.Errorf("%w: source buffer too small for %dx%d NV12", pixfmt.ErrOversizedFrame, srcW, srcH)
	}

	sx := (srcW << 16) / rectW
	sy := (srcH << 16) / rectH

	for dy := 0; dy < rectH; dy++ {
		sRow := (dy * sy) >> 16
		srcRow := src[sRow*srcW : sRow*srcW+srcW]
		dstOff := (dstYPos+dy)*dstYStride + dstX
		if dstOff+rectW > len(dstY) {
			continue
		}
		dstRow := dstY[dstOff : dstOff+rectW]
		for dx := 0; dx < rectW; dx++ {
			dstRow[dx] = srcRow[(dx*sx)>>16]
		}
	}

	srcUVOff := srcYSize
	chromaH := rectH / 2
	sy2 := ((srcH / 2) << 16) / chromaH
	for dy := 0; dy < chromaH; dy++ {
		sRow := (dy * sy2) >> 16
		srcRow := src[srcUVOff+sRow*srcW : srcUVOff+sRow*srcW+srcW]
		dstOff := (dstYPos/2+dy)*dstUVStride + dstX
		if dstOff+rectW > len(dstUV) {
			continue
		}
		dstRow := dstUV[dstOff : dstOff+rectW]
		for dx := 0; dx < rectW; dx += 2 {
			sCol := ((dx * sx) >> 16) &^ 1
			dstRow[dx] = srcRow[sCol]
			dstRow[dx+1] = srcRow[sCol+1]
		}
	}
	return nil
}
