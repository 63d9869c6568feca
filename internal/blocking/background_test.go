package blocking

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeRedJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	red := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, red)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode fixture jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestUploadBackgroundJPEGRed(t *testing.T) {
	s := NewStore()
	body := encodeRedJPEG(t, 320, 240)

	if !LooksLikeJPEG(body) {
		t.Fatal("expected fixture to be detected as JPEG")
	}
	if err := s.UploadBackgroundJPEG(body); err != nil {
		t.Fatalf("UploadBackgroundJPEG: %v", err)
	}

	snap := s.Snapshot()
	if snap.BGWidth != 320 || snap.BGHeight != 240 {
		t.Fatalf("unexpected geometry: %dx%d", snap.BGWidth, snap.BGHeight)
	}

	bg, release := s.BorrowBackground()
	defer release()
	if !bg.Valid {
		t.Fatal("expected valid background")
	}
	// Centre luma for pure red, BT.601 limited range, should land near 81.
	centre := bg.Bytes[120*320+160]
	if centre < 70 || centre > 95 {
		t.Fatalf("unexpected centre Y for red background: %d", centre)
	}
	// Chroma plane: V should be near the top of the limited range for red.
	uvOff := 320 * 240
	vSample := bg.Bytes[uvOff+1]
	if vSample < 220 {
		t.Fatalf("unexpected V sample for red background: %d", vSample)
	}
}

func TestUploadBackgroundJPEGBadBytesLeavesPriorIntact(t *testing.T) {
	s := NewStore()
	body := encodeRedJPEG(t, 64, 64)
	if err := s.UploadBackgroundJPEG(body); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	if err := s.UploadBackgroundJPEG([]byte("not a jpeg")); err == nil {
		t.Fatal("expected decode error for garbage bytes")
	}

	snap := s.Snapshot()
	if snap.BGWidth != 64 || snap.BGHeight != 64 {
		t.Fatalf("expected prior background retained, got %dx%d", snap.BGWidth, snap.BGHeight)
	}
}

func TestUploadBackgroundRawNV12SizeValidation(t *testing.T) {
	s := NewStore()
	good := make([]byte, 4*4+4*2)
	if err := s.UploadBackgroundRawNV12(good, 4, 4); err != nil {
		t.Fatalf("expected valid raw upload to succeed: %v", err)
	}

	bad := make([]byte, 10)
	if err := s.UploadBackgroundRawNV12(bad, 4, 4); err == nil {
		t.Fatal("expected size mismatch to fail")
	}
}
