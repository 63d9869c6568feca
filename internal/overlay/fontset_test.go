package overlay

import "testing"

func TestNewFontSetWithNoPathsFallsBackToBitmap(t *testing.T) {
	fs := NewFontSet("", "", nil)
	w, h, usedTTF := Dimensions("hi", 1, FaceBold, fs)
	if usedTTF {
		t.Fatalf("expected bitmap fallback when no font paths configured")
	}
	if w == 0 || h == 0 {
		t.Fatalf("expected non-zero bitmap dimensions")
	}
}

func TestNewFontSetWithMissingFilePathFallsBackSilentlyAfterWarn(t *testing.T) {
	fs := NewFontSet("/nonexistent/path/to/font.ttf", "", nil)
	_, _, usedTTF := Dimensions("hi", 1, FaceBold, fs)
	if usedTTF {
		t.Fatalf("expected fallback to bitmap font on load failure")
	}
	// second call must not attempt to reload or warn again; loadedBold latches.
	_, _, usedTTF = Dimensions("hi", 1, FaceBold, fs)
	if usedTTF {
		t.Fatalf("expected fallback on second call too")
	}
}

func TestDrawTTFTextNoopsWithoutLoadedFace(t *testing.T) {
	fs := NewFontSet("", "", nil)
	p := makePlanes(16, 16)
	// must not panic even though no TTF face is available.
	DrawTTFText(fs, FaceBold, p, 0, 0, "x", 16, 235, 128, 128)
}
