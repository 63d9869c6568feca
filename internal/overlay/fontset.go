package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
)

// baseFontSize is the em size a scale of 1 renders at; higher overlay/vocab
// scales multiply this before rasterising.
const baseFontSize = 16

// FontSet lazily loads a bold and a monospace TrueType face and serialises
// every call into the (non-reentrant) freetype rasteriser behind one
// process-wide mutex shared by every encoder worker.
type FontSet struct {
	mu     sync.Mutex
	logger *slog.Logger

	boldPath, monoPath string
	bold, mono         *truetype.Font
	loadedBold, loadedMono bool
	warnedBold, warnedMono bool
}

// NewFontSet builds a FontSet that will attempt to load boldPath/monoPath on
// first use. Either path may be empty, in which case that face never loads
// and callers fall back to the bitmap font.
func NewFontSet(boldPath, monoPath string, logger *slog.Logger) *FontSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &FontSet{boldPath: boldPath, monoPath: monoPath, logger: logger}
}

func loadFace(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("overlay: read font %q: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font %q: %w", path, err)
	}
	return f, nil
}

// boldFaceLocked returns the bold face, loading it on first call. Call sites must
// already hold fs.mu.
func (fs *FontSet) boldFaceLocked() *truetype.Font {
	if !fs.loadedBold {
		fs.loadedBold = true
		if fs.boldPath != "" {
			f, err := loadFace(fs.boldPath)
			if err != nil {
				if !fs.warnedBold {
					fs.logger.Warn("overlay: bold font load failed, using bitmap fallback", "path", fs.boldPath, "error", err)
					fs.warnedBold = true
				}
			} else {
				fs.bold = f
			}
		}
	}
	return fs.bold
}

func (fs *FontSet) monoFaceLocked() *truetype.Font {
	if !fs.loadedMono {
		fs.loadedMono = true
		if fs.monoPath != "" {
			f, err := loadFace(fs.monoPath)
			if err != nil {
				if !fs.warnedMono {
					fs.logger.Warn("overlay: mono font load failed, using bitmap fallback", "path", fs.monoPath, "error", err)
					fs.warnedMono = true
				}
			} else {
				fs.mono = f
			}
		}
	}
	return fs.mono
}
