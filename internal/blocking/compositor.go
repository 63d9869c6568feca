package blocking

import (
	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
	"github.com/garagehq/ustreamer-mpp/internal/yuv"
)

// textBoxPadding is the fixed padding reserved around vocab/stats text
// blocks when their background box is drawn.
const textBoxPadding = 8

// minPreviewW and minPreviewH are the preview window's floor dimensions
// after the "too big, shrink it" scale-down in step 3.
const (
	minPreviewW = 160
	minPreviewH = 90
)

// Composite draws, in order, the background layer, archives the source
// frame to raw, then the preview window, vocabulary text, and stats text
// onto dst — the encoder's DMA input buffer at its configured strides.
//
// src is the live-capture NV12 frame at srcW x srcH, packed stride. bg is a
// borrowed snapshot of the stored background (see Store.BorrowBackground);
// raw is the shared raw-frame archive written before the preview window
// would otherwise overwrite source-derived pixels.
func Composite(dst overlay.Planes, src []byte, srcW, srcH int, cfg Config, bg BackgroundSnapshot, raw *rawcache.Cache, fonts *overlay.FontSet) error {
	if err := drawBackground(dst, cfg, bg); err != nil {
		return err
	}

	raw.Store(src, srcW, srcH, srcW)

	if cfg.Preview.Enabled && cfg.Preview.W > 0 && cfg.Preview.H > 0 {
		if err := drawPreview(dst, src, srcW, srcH, cfg.Preview); err != nil {
			return err
		}
	}

	if cfg.TextVocab != "" {
		drawVocabText(dst, fonts, cfg)
	}
	if cfg.TextStats != "" {
		drawStatsText(dst, fonts, cfg)
	}
	return nil
}

// drawBackground fills dst with the scaled stored background, or a neutral
// dark grey (Y=32, UV=128) if none has been uploaded yet.
func drawBackground(dst overlay.Planes, cfg Config, bg BackgroundSnapshot) error {
	if cfg.BGValid && bg.Valid {
		w, h := dst.Width&^1, dst.Height&^1
		return yuv.ScaleIntoRect(bg.Bytes, bg.Width, bg.Height, dst.Y, dst.UV, dst.YStride, dst.UVStride, 0, 0, w, h)
	}
	for i := range dst.Y[:dst.Height*dst.YStride] {
		dst.Y[i] = 32
	}
	uvLen := (dst.Height / 2) * dst.UVStride
	for i := 0; i < uvLen && i < len(dst.UV); i++ {
		dst.UV[i] = 128
	}
	return nil
}

// drawPreview scales src into an anchored, even-aligned rectangle of dst and
// outlines it with a 2px white border, per spec §4.6 step 3.
func drawPreview(dst overlay.Planes, src []byte, srcW, srcH int, pv Preview) error {
	pw, ph := pv.W, pv.H
	if pw > dst.Width || ph > dst.Height {
		s := minFloat(float64(dst.Width)/float64(pw), float64(dst.Height)/float64(ph)) * 0.2
		pw = int(float64(pw) * s)
		ph = int(float64(ph) * s)
		if pw < minPreviewW {
			pw = minPreviewW
		}
		if ph < minPreviewH {
			ph = minPreviewH
		}
	}

	x, y := pv.X, pv.Y
	if x < 0 {
		x = dst.Width + x - pw
	}
	if y < 0 {
		y = dst.Height + y - ph
	}
	x = clampInt(x, 0, dst.Width-pw)
	y = clampInt(y, 0, dst.Height-ph)
	x &^= 1
	y &^= 1
	pw &^= 1
	ph &^= 1
	if pw <= 0 || ph <= 0 {
		return nil
	}

	if err := yuv.ScaleIntoRect(src, srcW, srcH, dst.Y, dst.UV, dst.YStride, dst.UVStride, x, y, pw, ph); err != nil {
		return err
	}
	drawPreviewBorder(dst, x, y, pw, ph)
	return nil
}

// drawPreviewBorder paints a 2px white (Y=235) border around the preview
// rectangle, clipped to dst's bounds.
func drawPreviewBorder(dst overlay.Planes, x, y, w, h int) {
	setRow := func(row int) {
		if row < 0 || row >= dst.Height {
			return
		}
		for px := x; px < x+w && px < dst.Width; px++ {
			if px < 0 {
				continue
			}
			dst.Y[row*dst.YStride+px] = 235
		}
	}
	setRow(y)
	setRow(y + 1)
	setRow(y + h - 2)
	setRow(y + h - 1)
	setCol := func(col int) {
		if col < 0 || col >= dst.Width {
			return
		}
		for py := y; py < y+h && py < dst.Height; py++ {
			if py < 0 {
				continue
			}
			dst.Y[py*dst.YStride+col] = 235
		}
	}
	setCol(x)
	setCol(x + 1)
	setCol(x + w - 2)
	setCol(x + w - 1)
}

// drawVocabText centres the vocabulary text horizontally and places it in
// the upper 60% of the frame, centred within that band, per spec §4.6
// step 4.
func drawVocabText(dst overlay.Planes, fonts *overlay.FontSet, cfg Config) {
	tw, th, usedTTF := overlay.Dimensions(cfg.TextVocab, cfg.VocabScale, overlay.FaceBold, fonts)
	x := (dst.Width - tw) / 2
	y := (dst.Height*6/10 - th) / 2
	x = clampEdge(x, dst.Width, tw, 10)
	y = clampEdge(y, dst.Height, th, 10)
	drawTextBlock(dst, fonts, overlay.FaceBold, cfg.TextVocab, cfg.VocabScale, x, y, tw, th, usedTTF, cfg)
}

// drawStatsText places the stats text near the bottom-left, per spec §4.6
// step 5.
func drawStatsText(dst overlay.Planes, fonts *overlay.FontSet, cfg Config) {
	tw, th, usedTTF := overlay.Dimensions(cfg.TextStats, cfg.StatsScale, overlay.FaceMono, fonts)
	x := 20
	y := dst.Height - th - 30
	if y < 10 {
		y = 10
	}
	drawTextBlock(dst, fonts, overlay.FaceMono, cfg.TextStats, cfg.StatsScale, x, y, tw, th, usedTTF, cfg)
}

func drawTextBlock(dst overlay.Planes, fonts *overlay.FontSet, kind overlay.FaceKind, text string, scale, x, y, tw, th int, usedTTF bool, cfg Config) {
	boxX, boxY := x-textBoxPadding, y-textBoxPadding
	boxW, boxH := tw+2*textBoxPadding, th+2*textBoxPadding
	overlay.DrawBackgroundBox(dst, boxX, boxY, boxW, boxH, cfg.BoxY, cfg.BoxU, cfg.BoxV, cfg.BoxAlpha)

	if usedTTF {
		overlay.DrawTTFText(fonts, kind, dst, x, y, text, float64(overlayBaseFontSize(scale)), cfg.TextY, cfg.TextU, cfg.TextV)
	} else {
		overlay.DrawBitmapText(dst, x, y, text, scale, cfg.TextY, cfg.TextU, cfg.TextV)
	}
}

// overlayBaseFontSize mirrors overlay's internal base-size*scale math so
// the compositor can pass DrawTTFText a pixel size without exporting the
// constant twice.
func overlayBaseFontSize(scale int) int {
	const baseFontSize = 16
	return baseFontSize * scale
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampEdge keeps a text block at least margin pixels from either edge of a
// dim-sized axis, matching spec §4.6's "clamped to at least 10 px from the
// edges" for vocab text placement.
func clampEdge(pos, dim, size, margin int) int {
	if pos < margin {
		pos = margin
	}
	if pos+size > dim-margin {
		pos = dim - margin - size
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
