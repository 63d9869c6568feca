package overlay

import "testing"

func makePlanes(w, h int) Planes {
	return Planes{
		Y:        make([]byte, w*h),
		UV:       make([]byte, w*h/2),
		YStride:  w,
		UVStride: w,
		Width:    w,
		Height:   h,
	}
}

func TestRGBToYUVWhiteIsNearMaxLuma(t *testing.T) {
	y, u, v := RGBToYUV(255, 255, 255)
	if y < 230 {
		t.Fatalf("expected near-peak luma for white, got %d", y)
	}
	if u < 120 || u > 136 || v < 120 || v > 136 {
		t.Fatalf("expected near-neutral chroma for white, got u=%d v=%d", u, v)
	}
}

func TestRGBToYUVRedHasHighV(t *testing.T) {
	_, _, v := RGBToYUV(255, 0, 0)
	if v < 200 {
		t.Fatalf("expected high V for pure red, got %d", v)
	}
}

func TestDrawBackgroundBoxBlendsTowardTarget(t *testing.T) {
	p := makePlanes(8, 8)
	for i := range p.Y {
		p.Y[i] = 0
	}
	DrawBackgroundBox(p, 0, 0, 8, 8, 200, 128, 128, 255)
	if p.Y[0] < 195 {
		t.Fatalf("expected near-full blend toward 200, got %d", p.Y[0])
	}
}

func TestDrawBackgroundBoxClipsToBounds(t *testing.T) {
	p := makePlanes(4, 4)
	DrawBackgroundBox(p, 2, 2, 10, 10, 100, 128, 128, 255)
	if p.Y[0] != 0 {
		t.Fatalf("expected untouched pixel outside box, got %d", p.Y[0])
	}
	if p.Y[2*4+2] == 0 {
		t.Fatalf("expected pixel inside clipped box to be drawn")
	}
}

func TestDrawBitmapTextSetsForegroundPixels(t *testing.T) {
	p := makePlanes(32, 16)
	DrawBitmapText(p, 0, 0, "A", 1, 235, 128, 128)
	found := false
	for _, b := range p.Y {
		if b == 235 {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected at least one foreground pixel drawn")
	}
}

func TestCalcPositionTopRightClampsInFrame(t *testing.T) {
	x, y := CalcPosition(TopRight, 0, 0, 100, 50, 20, 10, 4)
	if x+20+4 > 100 || y < 0 {
		t.Fatalf("position out of bounds: x=%d y=%d", x, y)
	}
}

func TestCalcPositionCustomUsesGivenCoords(t *testing.T) {
	x, y := CalcPosition(Custom, 5, 5, 100, 100, 10, 10, 0)
	if x != 5 || y != 5 {
		t.Fatalf("expected custom coords honoured, got %d,%d", x, y)
	}
}

func TestDimensionsBitmapFallback(t *testing.T) {
	w, h, usedTTF := Dimensions("hi", 2, FaceBold, nil)
	if usedTTF {
		t.Fatalf("expected bitmap fallback when fonts is nil")
	}
	if w != 2*fontCharWidth*2 || h != fontCharHeight*2 {
		t.Fatalf("unexpected bitmap dimensions: %dx%d", w, h)
	}
}
