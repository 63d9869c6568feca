package blocking

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

// ErrJPEGDecode is returned when the uploaded background bytes are not a
// decodable JPEG.
var ErrJPEGDecode = errors.New("blocking: jpeg decode failed")

// ErrBackgroundTooLarge is returned when the decoded (or raw) background
// would exceed the 4K 4:2:0 preallocated slot.
var ErrBackgroundTooLarge = errors.New("blocking: background too large")

// jpegMagic is the SOI marker libmagic-style sniffing uses to tell a JPEG
// body apart from a raw NV12 upload on the same endpoint.
var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// LooksLikeJPEG reports whether body starts with the JPEG SOI marker,
// matching the autodetection POST /blocking/background performs.
func LooksLikeJPEG(body []byte) bool {
	return len(body) >= 3 && bytes.Equal(body[:3], jpegMagic)
}

// UploadBackgroundJPEG decodes body as a baseline JPEG, converts it to NV12
// using BT.601 limited range, and installs it as the background. On
// failure the previous background is left intact, matching spec §7's
// "background decode errors leave the previous background intact" policy.
func (s *Store) UploadBackgroundJPEG(body []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJPEGDecode, err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	nv12, err := rgbImageToNV12(img, w, h)
	if err != nil {
		return err
	}
	return s.setBackground(nv12, w, h)
}

// UploadBackgroundRawNV12 installs body directly as the background,
// validating it is exactly the byte count NV12 at (w,h) implies.
func (s *Store) UploadBackgroundRawNV12(body []byte, w, h int) error {
	want, err := pixfmt.ExpectedUsedBytes(pixfmt.NV12, w, h)
	if err != nil {
		return err
	}
	if len(body) != want {
		return fmt.Errorf("blocking: raw NV12 background %dx%d wants %d bytes, got %d", w, h, want, len(body))
	}
	return s.setBackground(body, w, h)
}

// rgbImageToNV12 converts an RGB image to NV12 bytes using BT.601 limited
// range: Y is computed per pixel; U/V are computed once per 2x2 block
// (sampled from the even-coordinate pixel) and shared by all four luma
// samples in that block.
func rgbImageToNV12(img image.Image, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("blocking: decoded image has empty bounds %dx%d", w, h)
	}
	ySize, err := pixfmt.ExpectedUsedBytes(pixfmt.NV12, w, h)
	if err != nil {
		return nil, err
	}
	if ySize > maxBackgroundNV12Bytes {
		return nil, ErrBackgroundTooLarge
	}

	out := make([]byte, ySize)
	yPlane := out[:w*h]
	uvOff := w * h
	uvPlane := out[uvOff:]
	uvStride := w

	bounds := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			yy, _, _ := overlay.RGBToYUV(byte(r>>8), byte(g>>8), byte(b>>8))
			yPlane[y*w+x] = yy
		}
	}
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x += 2 {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			_, u, v := overlay.RGBToYUV(byte(r>>8), byte(g>>8), byte(b>>8))
			off := (y/2)*uvStride + x
			if off+1 < len(uvPlane) {
				uvPlane[off] = u
				uvPlane[off+1] = v
			}
		}
	}
	return out, nil
}
