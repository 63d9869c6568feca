package overlay

// bitmapGlyph is one 8x8 character: row i is glyphRows[i], and bit cx of
// that byte is set iff pixel (cx, i) is drawn. This mirrors the original's
// US_FRAMETEXT_FONT layout (row-major bytes, column = bit index), which
// this repository does not retrieve a copy of; this table is a from-scratch
// replacement covering the characters the compositor's vocabulary/stats
// text and overlay text actually need.
type bitmapGlyph [8]byte

// rowBits turns an 8-character "#."-string into a row byte, column 0 at the
// left mapping to bit 0 — the same convention the draw loop expects.
func rowBits(s string) byte {
	var b byte
	for i := 0; i < 8 && i < len(s); i++ {
		if s[i] == '#' {
			b |= 1 << uint(i)
		}
	}
	return b
}

func glyph(rows ...string) bitmapGlyph {
	var g bitmapGlyph
	for i := 0; i < 8 && i < len(rows); i++ {
		g[i] = rowBits(rows[i])
	}
	return g
}

// defaultGlyph is used for any printable character without a dedicated
// entry below: a hollow box, visually distinct from both space and a solid
// block.
var defaultGlyph = glyph(
	"########",
	"#......#",
	"#......#",
	"#......#",
	"#......#",
	"#......#",
	"#......#",
	"########",
)

var spaceGlyph = glyph(
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
)

var bitmapFont = map[byte]bitmapGlyph{
	' ': spaceGlyph,
	'0': glyph(".######.", "##....##", "##...###", "##..#.##", "##.#..##", "###...##", "##....##", ".######."),
	'1': glyph("...##...", "..###...", ".####...", "...##...", "...##...", "...##...", "...##...", "..####.."),
	'2': glyph(".######.", "##....##", ".......#", "......##", "....##..", "..##....", "##......", "########"),
	'3': glyph(".######.", "##....##", ".......#", "...####.", "...####.", ".......#", "##....##", ".######."),
	'4': glyph("....###.", "...####.", "..##.##.", ".##..##.", "########", ".....##.", ".....##.", ".....##."),
	'5': glyph("########", "##......", "##......", "#######.", "......##", "......##", "##....##", ".######."),
	'6': glyph("..####..", ".##..##.", "##......", "#######.", "##....##", "##....##", ".##..##.", "..####.."),
	'7': glyph("########", "......##", ".....##.", "....##..", "...##...", "..##....", "..##....", "..##...."),
	'8': glyph(".######.", "##....##", "##....##", ".######.", "##....##", "##....##", "##....##", ".######."),
	'9': glyph(".######.", "##....##", "##....##", ".#######", "......##", "......##", ".#....#.", "..####.."),
	'A': glyph("...##...", "..####..", ".##..##.", ".##..##.", "########", "##....##", "##....##", "##....##"),
	'B': glyph("#######.", "##....##", "##....##", "#######.", "##....##", "##....##", "##....##", "#######."),
	'C': glyph(".######.", "##....##", "##......", "##......", "##......", "##......", "##....##", ".######."),
	'D': glyph("######..", "##...##.", "##....##", "##....##", "##....##", "##....##", "##...##.", "######.."),
	'E': glyph("########", "##......", "##......", "######..", "##......", "##......", "##......", "########"),
	'F': glyph("########", "##......", "##......", "######..", "##......", "##......", "##......", "##......"),
	'G': glyph(".######.", "##....##", "##......", "##..####", "##....##", "##....##", "##...###", ".######."),
	'H': glyph("##....##", "##....##", "##....##", "########", "##....##", "##....##", "##....##", "##....##"),
	'I': glyph(".######.", "...##...", "...##...", "...##...", "...##...", "...##...", "...##...", ".######."),
	'J': glyph("...#####", "......##", "......##", "......##", "......##", "##....##", "##....##", ".######."),
	'K': glyph("##....##", "##...##.", "##..##..", "#####...", "##..##..", "##...##.", "##....##", "##....##"),
	'L': glyph("##......", "##......", "##......", "##......", "##......", "##......", "##......", "########"),
	'M': glyph("##....##", "###..###", "########", "##.##.##", "##....##", "##....##", "##....##", "##....##"),
	'N': glyph("##....##", "###...##", "####..##", "##.##.##", "##..####", "##...###", "##....##", "##....##"),
	'O': glyph(".######.", "##....##", "##....##", "##....##", "##....##", "##....##", "##....##", ".######."),
	'P': glyph("#######.", "##....##", "##....##", "#######.", "##......", "##......", "##......", "##......"),
	'Q': glyph(".######.", "##....##", "##....##", "##....##", "##..##.#", "##...##.", "##....##", ".#######"),
	'R': glyph("#######.", "##....##", "##....##", "#######.", "##..##..", "##...##.", "##....##", "##....##"),
	'S': glyph(".######.", "##....##", "##......", ".######.", "......##", "......##", "##....##", ".######."),
	'T': glyph("########", "...##...", "...##...", "...##...", "...##...", "...##...", "...##...", "...##..."),
	'U': glyph("##....##", "##....##", "##....##", "##....##", "##....##", "##....##", "##....##", ".######."),
	'V': glyph("##....##", "##....##", "##....##", ".##..##.", ".##..##.", "..####..", "..####..", "...##..."),
	'W': glyph("##....##", "##....##", "##....##", "##.##.##", "##.##.##", "########", "###..###", "##....##"),
	'X': glyph("##....##", ".##..##.", "..####..", "...##...", "...##...", "..####..", ".##..##.", "##....##"),
	'Y': glyph("##....##", ".##..##.", "..####..", "...##...", "...##...", "...##...", "...##...", "...##..."),
	'Z': glyph("########", ".....##.", "....##..", "...##...", "..##....", ".##.....", "##......", "########"),
	'.': glyph("........", "........", "........", "........", "........", "........", "..##....", "..##...."),
	',': glyph("........", "........", "........", "........", "........", "..##....", "..##....", ".##....."),
	':': glyph("........", "..##....", "..##....", "........", "........", "..##....", "..##....", "........"),
	'-': glyph("........", "........", "........", "######..", "........", "........", "........", "........"),
	'/': glyph(".......#", "......##", ".....##.", "....##..", "...##...", "..##....", ".##.....", "#......."),
	'%': glyph("##....#.", "##...##.", "....##..", "...##...", "..##....", ".##...##", "#....##.", ".....##."),
	'?': glyph(".######.", "##....##", "......##", ".....##.", "....##..", "....##..", "........", "....##.."),
	'!': glyph("...##...", "...##...", "...##...", "...##...", "...##...", "........", "...##...", "...##..."),
}

// glyphFor looks up the bitmap for ch, upper-casing ASCII letters (the table
// only carries uppercase forms). An unmapped non-printable byte gets
// spaceGlyph; an unmapped printable one gets defaultGlyph.
func glyphFor(ch byte) bitmapGlyph {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if g, ok := bitmapFont[ch]; ok {
		return g
	}
	if ch < 0x20 || ch >= 0x7f {
		return spaceGlyph
	}
	return defaultGlyph
}

const (
	fontCharWidth  = 8
	fontCharHeight = 8
)
