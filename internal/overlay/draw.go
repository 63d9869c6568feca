package overlay

import (
	"image"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/math/fixed"
)

// FaceKind selects which of the two shared TrueType faces a draw call uses.
type FaceKind int

const (
	FaceBold FaceKind = iota
	FaceMono
)

func (fs *FontSet) face(kind FaceKind) *truetype.Font {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if kind == FaceMono {
		return fs.monoFaceLocked()
	}
	return fs.boldFaceLocked()
}

// clampByte clamps v into [lo,hi] after it has already been computed as an
// int (the BT.601 fixed-point math can overshoot before clamping).
func clampByte(v, lo, hi int) byte {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return byte(v)
}

// RGBToYUV converts one 8-bit RGB sample to BT.601 limited-range YUV
// (Y in [16,235], U/V in [16,240]). Shared by the overlay's bitmap-fallback
// color math and the blocking subsystem's JPEG background uploader so the
// two paths can't silently drift apart.
func RGBToYUV(r, g, b byte) (y, u, v byte) {
	ri, gi, bi := int(r), int(g), int(b)
	yy := (66*ri+129*gi+25*bi+128)>>8 + 16
	uu := (-38*ri-74*gi+112*bi+128)>>8 + 128
	vv := (112*ri-94*gi-18*bi+128)>>8 + 128
	return clampByte(yy, 16, 235), clampByte(uu, 16, 240), clampByte(vv, 16, 240)
}

// Planes bundles the destination buffers and geometry DrawText writes into.
type Planes struct {
	Y, UV            []byte
	YStride, UVStride int
	Width, Height    int
}

// Dimensions measures how large a drawn text block will be without drawing
// it, matching the TTF/bitmap split in spec §4.5.
func Dimensions(text string, scale int, kind FaceKind, fonts *FontSet) (w, h int, usedTTF bool) {
	lines := strings.Split(text, "\n")
	if fonts != nil {
		if tf := fonts.face(kind); tf != nil {
			pixelSize := float64(baseFontSize * scale)
			face := truetype.NewFace(tf, &truetype.Options{Size: pixelSize})
			defer face.Close()
			lineHeight := face.Metrics().Height.Ceil()
			maxW := 0
			for _, line := range lines {
				lw := 0
				for _, r := range line {
					if adv, ok := face.GlyphAdvance(r); ok {
						lw += adv.Round()
					}
				}
				if lw > maxW {
					maxW = lw
				}
			}
			return maxW, lineHeight * len(lines), true
		}
	}
	maxChars := 0
	for _, line := range lines {
		if len(line) > maxChars {
			maxChars = len(line)
		}
	}
	return maxChars * fontCharWidth * scale, len(lines) * fontCharHeight * scale, false
}

// CalcPosition reserves a (tw+2*padding) x (th+2*padding) box for position
// pos within a frameW x frameH frame and clamps it fully in-frame, matching
// the original's _calc_position.
func CalcPosition(pos Position, customX, customY int, frameW, frameH, tw, th, padding int) (x, y int) {
	totalW := tw + 2*padding
	totalH := th + 2*padding

	switch pos {
	case TopLeft:
		x, y = padding, padding
	case TopRight:
		x, y = frameW-totalW, padding
	case BottomLeft:
		x, y = padding, frameH-totalH
	case BottomRight:
		x, y = frameW-totalW, frameH-totalH
	case Center:
		x, y = (frameW-totalW)/2, (frameH-totalH)/2
	default: // Custom
		x, y = customX, customY
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+totalW > frameW {
		x = frameW - totalW
	}
	if y+totalH > frameH {
		y = frameH - totalH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// DrawBackgroundBox alpha-blends a bgY/bgU/bgV/alpha rectangle into p at
// (x,y,w,h), clipped to p's bounds. Y'=(a*fg+(256-a)*bg)>>8, applied
// identically to U and V at even pixel coordinates (one write per 2x2
// block).
func DrawBackgroundBox(p Planes, x, y, w, h int, bgY, bgU, bgV, alpha byte) {
	a := int(alpha)
	inv := 256 - a
	x0, y0 := max0(x), max0(y)
	x1, y1 := min(x0+w, p.Width), min(y0+h, p.Height)
	for py := y0; py < y1; py++ {
		row := p.Y[py*p.YStride : py*p.YStride+p.Width]
		for px := x0; px < x1; px++ {
			row[px] = byte((a*int(bgY) + inv*int(row[px])) >> 8)
		}
	}
	for py := y0&^1; py < y1; py += 2 {
		for px := x0 &^ 1; px < x1; px += 2 {
			off := (py/2)*p.UVStride + px
			if off+1 >= len(p.UV) {
				continue
			}
			p.UV[off] = byte((a*int(bgU) + inv*int(p.UV[off])) >> 8)
			p.UV[off+1] = byte((a*int(bgV) + inv*int(p.UV[off+1])) >> 8)
		}
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DrawBitmapText draws text at (x,y) on p using the 8x8 fallback font,
// scaled by scale. Character pixels are set directly (no blend); UV is
// written once per 2x2 block at even frame coordinates.
func DrawBitmapText(p Planes, x, y int, text string, scale int, fgY, fgU, fgV byte) {
	lines := strings.Split(text, "\n")
	cursorY := y
	for _, line := range lines {
		cursorX := x
		for i := 0; i < len(line); i++ {
			g := glyphFor(line[i])
			for cy := 0; cy < fontCharHeight; cy++ {
				row := g[cy]
				for cx := 0; cx < fontCharWidth; cx++ {
					if row&(1<<uint(cx)) == 0 {
						continue
					}
					for sy := 0; sy < scale; sy++ {
						for sx := 0; sx < scale; sx++ {
							px := cursorX + cx*scale + sx
							py := cursorY + cy*scale + sy
							if px < 0 || py < 0 || px >= p.Width || py >= p.Height {
								continue
							}
							p.Y[py*p.YStride+px] = fgY
							if px%2 == 0 && py%2 == 0 {
								off := (py/2)*p.UVStride + px
								if off+1 < len(p.UV) {
									p.UV[off] = fgU
									p.UV[off+1] = fgV
								}
							}
						}
					}
				}
			}
			cursorX += fontCharWidth * scale
		}
		cursorY += fontCharHeight * scale
	}
}

// DrawTTFText rasterises text at (x,y) through the shared FontSet's kind
// face at pixelSize, alpha-blending each glyph's anti-aliased coverage onto
// p with Y'=(a*fg+(255-a)*Y)/255 and the same blend on UV once per 2x2
// block. Callers must already hold the caller-side guarantee that fonts is
// non-nil and its kind face is loaded (see Dimensions' usedTTF return).
func DrawTTFText(fonts *FontSet, kind FaceKind, p Planes, x, y int, text string, pixelSize float64, fgY, fgU, fgV byte) {
	fonts.mu.Lock()
	defer fonts.mu.Unlock()

	var tf *truetype.Font
	if kind == FaceMono {
		tf = fonts.monoFaceLocked()
	} else {
		tf = fonts.boldFaceLocked()
	}
	if tf == nil {
		return
	}

	face := truetype.NewFace(tf, &truetype.Options{Size: pixelSize})
	defer face.Close()
	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	lines := strings.Split(text, "\n")
	cursorY := y + ascent
	for _, line := range lines {
		cursorX := x
		for _, r := range line {
			dr, mask, maskp, advance, ok := face.Glyph(fixedPoint(cursorX, cursorY), r)
			if !ok {
				continue
			}
			blendGlyph(p, dr, mask, maskp, fgY, fgU, fgV)
			cursorX += advance.Round()
		}
		cursorY += lineHeight
	}
}

func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
}

// blendGlyph alpha-blends one rasterised glyph's coverage mask onto p,
// clipped to p's bounds: Y'=(a*fg+(255-a)*Y)/255, with the same formula
// applied to U and V once per 2x2 block at even frame coordinates.
func blendGlyph(p Planes, dr image.Rectangle, mask image.Image, maskp image.Point, fgY, fgU, fgV byte) {
	clip := dr.Intersect(image.Rect(0, 0, p.Width, p.Height))
	if clip.Empty() {
		return
	}
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		my := maskp.Y + (y - dr.Min.Y)
		for x := clip.Min.X; x < clip.Max.X; x++ {
			mx := maskp.X + (x - dr.Min.X)
			_, _, _, a := mask.At(mx, my).RGBA()
			alpha := int(a >> 8)
			if alpha == 0 {
				continue
			}
			idx := y*p.YStride + x
			p.Y[idx] = byte((alpha*int(fgY) + (255-alpha)*int(p.Y[idx])) / 255)
			if x%2 == 0 && y%2 == 0 {
				off := (y/2)*p.UVStride + x
				if off+1 < len(p.UV) {
					p.UV[off] = byte((alpha*int(fgU) + (255-alpha)*int(p.UV[off])) / 255)
					p.UV[off+1] = byte((alpha*int(fgV) + (255-alpha)*int(p.UV[off+1])) / 255)
				}
			}
		}
	}
}
