// Package softjpeg implements the orthogonal software JPEG encoder spec.md
// §1 names as an external collaborator (--encoder=cpu-jpeg). It satisfies
// the same worker-pool Encoder interface as internal/mpp.Adapter so the CLI
// can select either without the rest of the pipeline caring which one it
// got.
package softjpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync/atomic"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/scalepolicy"
	"github.com/garagehq/ustreamer-mpp/internal/yuv"
)

// Encoder is a stateless (no vendor context, no DMA buffers) software
// fallback: every Compress call builds a standard library image.Image from
// the source Frame and hands it to image/jpeg. It exists for development
// machines with no RK3588 present and is not hardware-accelerated.
type Encoder struct {
	name    string
	quality int32
	policy  scalepolicy.Policy
	logger  *slog.Logger

	framesCompressed atomic.Uint64
	framesFailed     atomic.Uint64
}

// New constructs a software JPEG Encoder.
func New(name string, quality int, policy scalepolicy.Policy, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	q := quality
	if q < 1 {
		q = 1
	}
	if q > 99 {
		q = 99
	}
	return &Encoder{name: name, quality: int32(q), policy: policy, logger: logger.With("encoder", name)}
}

func (e *Encoder) Name() string { return e.name }

func (e *Encoder) Quality() int { return int(atomic.LoadInt32(&e.quality)) }

// Compress resolves the scale target, converts src to an image.Image, and
// encodes it with the standard library JPEG encoder at this Encoder's
// quality. The quality value is passed straight through to image/jpeg's
// quality scale rather than mapped to a quantiser table, since the
// software encoder has no fixed-quantiser rate-control concept.
func (e *Encoder) Compress(src *pixfmt.Frame) (*pixfmt.Frame, error) {
	src.BeginEncode()

	tw, th, needsDownscale := scalepolicy.Resolve(e.policy, src.Width, src.Height, src.Format)
	img, err := frameToImage(src, tw, th, needsDownscale)
	if err != nil {
		e.framesFailed.Add(1)
		return nil, err
	}
	tw, th = img.Bounds().Dx(), img.Bounds().Dy()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(atomic.LoadInt32(&e.quality))}); err != nil {
		e.framesFailed.Add(1)
		return nil, fmt.Errorf("softjpeg: encode: %w", err)
	}
	if buf.Len() == 0 {
		e.framesFailed.Add(1)
		return nil, fmt.Errorf("softjpeg: encoder returned an empty packet")
	}

	out := &pixfmt.Frame{
		Bytes:         buf.Bytes(),
		Width:         tw,
		Height:        th,
		Stride:        tw,
		Format:        pixfmt.JPEG,
		UsedBytes:     buf.Len(),
		CaptureTS:     src.CaptureTS,
		EncodeBeginTS: src.EncodeBeginTS,
		IsKey:         true,
		GOP:           0,
	}
	out.EndEncode()
	e.framesCompressed.Add(1)
	return out, nil
}

// Close is a no-op: Encoder owns no vendor resources or DMA buffers.
func (e *Encoder) Close() error { return nil }

// frameToImage converts src to an image.Image. NV12 comes out at (tw, th),
// downscaled through the §4.3 scaler first when needed; every other format
// comes out at the source size. Other semi-planar formats
// (NV16, NV24) and packed formats are never downscaled here, matching
// internal/mpp's "only NV12 has a defined scaler" decision — the scale
// policy's own rules keep this from mattering for Native (the only rule
// that can request a downscale for a non-NV12 format is the clamp-based
// P1080/P1440 table, which this encoder honours for NV12 only and passes
// through unscaled otherwise).
func frameToImage(src *pixfmt.Frame, tw, th int, needsDownscale bool) (image.Image, error) {
	switch src.Format {
	case pixfmt.NV12:
		if needsDownscale {
			dst := make([]byte, yuv.DestSize(tw, th))
			if err := yuv.DownscaleNV12(src.Data(), src.Width, src.Height, dst, tw, th); err != nil {
				return nil, err
			}
			return nv12ToYCbCr(dst, tw, th, pixfmt.Align16(tw)), nil
		}
		return nv12ToYCbCr(src.Data(), src.Width, src.Height, src.Width), nil
	case pixfmt.NV16:
		return nvToYCbCr(src.Data(), src.Width, src.Height, src.Width, image.YCbCrSubsampleRatio422, src.Height), nil
	case pixfmt.NV24:
		return nvToYCbCr(src.Data(), src.Width, src.Height, src.Width, image.YCbCrSubsampleRatio444, src.Height), nil
	case pixfmt.YUYV:
		return packedYUVToYCbCr(src.Data(), src.Width, src.Height, false), nil
	case pixfmt.UYVY:
		return packedYUVToYCbCr(src.Data(), src.Width, src.Height, true), nil
	case pixfmt.RGB24:
		return packedRGBToRGBA(src.Data(), src.Width, src.Height, false), nil
	case pixfmt.BGR24:
		return packedRGBToRGBA(src.Data(), src.Width, src.Height, true), nil
	default:
		return nil, fmt.Errorf("softjpeg: unsupported format %s", src.Format)
	}
}

// nv12ToYCbCr builds a 4:2:0 image.YCbCr from a packed/aligned-stride NV12
// buffer, deinterleaving the UV plane into separate Cb/Cr planes.
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

// nvToYCbCr builds a 4:2:2 or 4:4:4 image.YCbCr from a semi-planar buffer
// whose chroma plane spans chromaH rows at full row width.
func nvToYCbCr(data []byte, w, h, stride int, ratio image.YCbCrSubsampleRatio, chromaH int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), ratio)
	for y := 0; y < h; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+w], data[y*stride:y*stride+w])
	}
	uvOff := stride * h
	chromaW := w
	if ratio == image.YCbCrSubsampleRatio422 {
		chromaW = w / 2
	}
	for y := 0; y < chromaH; y++ {
		for x := 0; x < chromaW; x++ {
			idx := uvOff + y*stride + x*2
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

// packedYUVToYCbCr converts packed 4:2:2 (YUYV or UYVY byte order) into a
// 4:2:2 image.YCbCr.
func packedYUVToYCbCr(data []byte, w, h int, uyvy bool) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	stride := w * 2
	for y := 0; y < h; y++ {
		row := data[y*stride : y*stride+stride]
		for x := 0; x < w; x += 2 {
			var y0, u, y1, v byte
			if uyvy {
				u, y0, v, y1 = row[x*2], row[x*2+1], row[x*2+2], row[x*2+3]
			} else {
				y0, u, y1, v = row[x*2], row[x*2+1], row[x*2+2], row[x*2+3]
			}
			img.Y[y*img.YStride+x] = y0
			img.Y[y*img.YStride+x+1] = y1
			ci := y*img.CStride + x/2
			img.Cb[ci] = u
			img.Cr[ci] = v
		}
	}
	return img
}

// packedRGBToRGBA converts packed RGB24/BGR24 into an image.RGBA.
func packedRGBToRGBA(data []byte, w, h int, bgr bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stride := w * 3
	for y := 0; y < h; y++ {
		srcRow := data[y*stride : y*stride+stride]
		dstRow := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			c0, c1, c2 := srcRow[x*3], srcRow[x*3+1], srcRow[x*3+2]
			r, g, b := c0, c1, c2
			if bgr {
				r, g, b = c2, c1, c0
			}
			dstRow[x*4], dstRow[x*4+1], dstRow[x*4+2], dstRow[x*4+3] = r, g, b, 0xFF
		}
	}
	return img
}
