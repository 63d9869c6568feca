package blocking

import (
	"testing"

	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

func makePlanes(w, h int) overlay.Planes {
	ySize := w * h
	uvSize := w * (h / 2)
	return overlay.Planes{
		Y:        make([]byte, ySize),
		UV:       make([]byte, uvSize),
		YStride:  w,
		UVStride: w,
		Width:    w,
		Height:   h,
	}
}

func TestDrawBackgroundNeutralFill(t *testing.T) {
	dst := makePlanes(64, 64)
	cfg := DefaultConfig()

	if err := drawBackground(dst, cfg, BackgroundSnapshot{}); err != nil {
		t.Fatalf("drawBackground: %v", err)
	}
	for _, b := range dst.Y {
		if b != 32 {
			t.Fatalf("expected Y=32 fill, got %d", b)
		}
	}
	for _, b := range dst.UV {
		if b != 128 {
			t.Fatalf("expected UV=128 fill, got %d", b)
		}
	}
}

func TestCompositeArchivesRawFrame(t *testing.T) {
	dst := makePlanes(32, 32)
	src := make([]byte, 32*32+32*16)
	for i := range src {
		src[i] = byte(i % 251)
	}
	cfg := DefaultConfig()
	raw := rawcache.New()
	fonts := overlay.NewFontSet("", "", nil)

	if err := Composite(dst, src, 32, 32, cfg, BackgroundSnapshot{}, raw, fonts); err != nil {
		t.Fatalf("Composite: %v", err)
	}

	snap, release := raw.Borrow()
	defer release()
	if !snap.Valid || snap.Width != 32 || snap.Height != 32 {
		t.Fatalf("expected raw cache populated from source: %+v", snap)
	}
}

func TestPreviewAnchorFromBottomRight(t *testing.T) {
	dst := makePlanes(1920, 1080)
	src := make([]byte, 384*216+384*108)
	pv := Preview{X: -40, Y: -40, W: 384, H: 216, Enabled: true}

	if err := drawPreview(dst, src, 384, 216, pv); err != nil {
		t.Fatalf("drawPreview: %v", err)
	}
	// (1920-40-384, 1080-40-216) = (1496, 824), already even.
	if got := dst.Y[824*dst.YStride+1496]; got != 235 {
		t.Fatalf("expected border pixel at (1496,824) to be 235, got %d", got)
	}
	if got := dst.Y[825*dst.YStride+1496]; got != 235 {
		t.Fatalf("expected border pixel at (1496,825) to be 235, got %d", got)
	}
}

func TestVocabTextBoxAndGlyphDrawn(t *testing.T) {
	dst := makePlanes(256, 256)
	cfg := DefaultConfig()
	cfg.TextVocab = "HELLO"
	cfg.TextY = 235
	cfg.BoxY = 16
	cfg.BoxAlpha = 255
	fonts := overlay.NewFontSet("", "", nil)
	// Start from the neutral Y=32 background Composite paints first: an
	// opaque box blends to (255*16 + 1*32) >> 8 = 16 over it.
	for i := range dst.Y {
		dst.Y[i] = 32
	}

	drawVocabText(dst, fonts, cfg)

	var sawFg, sawBoxOnly bool
	for _, b := range dst.Y {
		if b == 235 {
			sawFg = true
		}
		if b == 16 {
			sawBoxOnly = true
		}
	}
	if !sawFg {
		t.Error("expected at least one glyph pixel at fg Y value")
	}
	if !sawBoxOnly {
		t.Error("expected background box pixels at bg Y value")
	}
}
