package httpapi

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

// snapshotThumbnailWidth is the fixed width ?thumbnail=1 scales down to;
// height follows the source aspect ratio.
const snapshotThumbnailWidth = 320

// nv12SnapshotToJPEG deinterleaves a raw NV12 snapshot into an
// image.YCbCr and encodes it as baseline JPEG, optionally downscaling to a
// fixed-width thumbnail first via golang.org/x/image/draw's bilinear
// scaler — the same debug-dump role SPEC_FULL.md's domain stack gives this
// dependency, distinct from internal/yuv's nearest-neighbour encoder-path
// scaler, which must stay fast enough to run on every frame.
func nv12SnapshotToJPEG(snap rawcache.Snapshot, thumbnail bool) ([]byte, error) {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, fmt.Errorf("httpapi: snapshot has empty geometry %dx%d", snap.Width, snap.Height)
	}
	img := nv12ToYCbCr(snap.Bytes, snap.Width, snap.Height, snap.Stride)

	var out image.Image = img
	if thumbnail && snap.Width > snapshotThumbnailWidth {
		thumbH := snap.Height * snapshotThumbnailWidth / snap.Width
		if thumbH < 1 {
			thumbH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, snapshotThumbnailWidth, thumbH))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("httpapi: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// nv12ToYCbCr deinterleaves a packed/aligned-stride NV12 buffer into a 4:2:0
// image.YCbCr, mirroring internal/softjpeg's converter of the same shape
// (kept local rather than exported cross-package since the two call sites
// have no other reason to share a dependency edge).
func nv12ToYCbCr(data []byte, w, h, yStride int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	for y := 0; y < h; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+w], data[y*yStride:y*yStride+w])
	}
	uvOff := yStride * h
	chromaH := h / 2
	for y := 0; y < chromaH; y++ {
		for x := 0; x < w/2; x++ {
			idx := uvOff + y*yStride + x*2
			if idx+1 >= len(data) {
				continue
			}
			ci := y*img.CStride + x
			img.Cb[ci] = data[idx]
			img.Cr[ci] = data[idx+1]
		}
	}
	return img
}
