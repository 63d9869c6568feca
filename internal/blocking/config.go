// Package blocking implements the shared BlockingConfig singleton and the
// four-layer compositor (background, preview, vocabulary text, stats text)
// that draws onto the encoder's DMA input buffer before hardware encoding.
package blocking

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MaxVocabLen and MaxStatsLen are the spec's text_vocab[<=1024] /
// text_stats[<=512] bounds.
const (
	MaxVocabLen = 1024
	MaxStatsLen = 512
)

// maxBackgroundNV12Bytes is the spec's "4K*1.5" preallocated slot ceiling:
// 3840x2160 NV12 (Y + half-height UV).
const maxBackgroundNV12Bytes = 3840 * 2160 * 3 / 2

// Preview is the preview sub-frame window. A negative X or Y means "offset
// from the right/bottom edge" rather than an absolute coordinate.
type Preview struct {
	X, Y, W, H int
	Enabled    bool
}

// Config is the lightweight, frequently-copied half of BlockingConfig. The
// background pixel bytes live separately behind their own lock (see
// Store.BorrowBackground) so that a per-frame Snapshot stays cheap.
type Config struct {
	Enabled bool

	BGValid  bool
	BGWidth  int
	BGHeight int

	Preview Preview

	TextVocab  string
	TextStats  string
	VocabScale int // 1..15
	StatsScale int // 1..10

	TextY, TextU, TextV        byte
	BoxY, BoxU, BoxV, BoxAlpha byte
}

// DefaultConfig mirrors the original's startup defaults.
func DefaultConfig() Config {
	return Config{
		VocabScale: 3,
		StatsScale: 2,
		TextY:      235,
		TextU:      128,
		TextV:      128,
		BoxY:       16,
		BoxU:       128,
		BoxV:       128,
		BoxAlpha:   160,
	}
}

// Patch carries an optional subset of Config fields for a partial update,
// plus the upload-only fields (background bytes) handled separately by
// UploadBackgroundJPEG/UploadBackgroundRawNV12.
type Patch struct {
	Enabled *bool

	PreviewX       *int
	PreviewY       *int
	PreviewW       *int
	PreviewH       *int
	PreviewEnabled *bool

	TextVocab  *string
	TextStats  *string
	VocabScale *int
	StatsScale *int

	TextY, TextU, TextV        *byte
	BoxY, BoxU, BoxV, BoxAlpha *byte

	Clear bool
}

// Store is the mutex-protected BlockingConfig singleton plus the atomic
// "enabled" fast path and the background pixel buffer.
type Store struct {
	mu  sync.RWMutex
	cfg Config

	enabledFast atomic.Bool

	bgMu    sync.RWMutex
	bgBytes []byte
	bgW     int
	bgH     int
	bgValid bool
}

// NewStore creates a Store seeded with DefaultConfig and a preallocated
// background slot sized for max 4K 4:2:0.
func NewStore() *Store {
	s := &Store{cfg: DefaultConfig()}
	s.bgBytes = make([]byte, 0, maxBackgroundNV12Bytes)
	return s
}

// EnabledFast is the lock-free hot-path check: a relaxed atomic load that
// duplicates cfg.Enabled so the common "blocking off" case costs one load
// and no mutex acquisition.
func (s *Store) EnabledFast() bool {
	return s.enabledFast.Load()
}

// Snapshot returns a copy of the lightweight config, including the
// background validity/geometry fields (but not the pixel bytes — use
// BorrowBackground for those).
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	s.bgMu.RLock()
	cfg.BGValid, cfg.BGWidth, cfg.BGHeight = s.bgValid, s.bgW, s.bgH
	s.bgMu.RUnlock()
	return cfg
}

// BackgroundSnapshot is a scoped borrow of the background pixel buffer,
// grounded on the same release-closure shape as internal/rawcache.Snapshot
// so neither boundary relies on a hand-rolled "acquire in get" API.
type BackgroundSnapshot struct {
	Bytes []byte
	Width int
	Height int
	Valid bool
}

// BorrowBackground returns a snapshot of the background buffer plus a
// release function; the returned Bytes alias Store's internal buffer and
// are only valid until release is called.
func (s *Store) BorrowBackground() (BackgroundSnapshot, func()) {
	s.bgMu.RLock()
	snap := BackgroundSnapshot{Bytes: s.bgBytes, Width: s.bgW, Height: s.bgH, Valid: s.bgValid}
	released := false
	release := func() {
		if !released {
			released = true
			s.bgMu.RUnlock()
		}
	}
	return snap, release
}

// setBackground replaces the background buffer under the write lock.
func (s *Store) setBackground(nv12 []byte, w, h int) error {
	if len(nv12) > maxBackgroundNV12Bytes {
		return fmt.Errorf("%w: %d bytes exceeds max %d", ErrBackgroundTooLarge, len(nv12), maxBackgroundNV12Bytes)
	}
	s.bgMu.Lock()
	defer s.bgMu.Unlock()
	if cap(s.bgBytes) < len(nv12) {
		s.bgBytes = make([]byte, len(nv12))
	} else {
		s.bgBytes = s.bgBytes[:len(nv12)]
	}
	copy(s.bgBytes, nv12)
	s.bgW, s.bgH = w, h
	s.bgValid = true
	return nil
}

// Apply validates and merges patch into the stored config as one atomic
// unit. On validation failure the prior configuration is left untouched.
// Clear resets the whole configuration to DefaultConfig (which also turns
// blocking mode off) and marks the background invalid, without deallocating
// the background buffer's capacity (it is reused on the next upload).
func (s *Store) Apply(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Clear {
		next := DefaultConfig()
		s.cfg = next
		s.enabledFast.Store(false)
		s.bgMu.Lock()
		s.bgValid = false
		s.bgW, s.bgH = 0, 0
		s.bgMu.Unlock()
		return nil
	}

	next := s.cfg
	if p.VocabScale != nil {
		if *p.VocabScale < 1 || *p.VocabScale > 15 {
			return fmt.Errorf("blocking: vocab scale %d out of range [1,15]", *p.VocabScale)
		}
		next.VocabScale = *p.VocabScale
	}
	if p.StatsScale != nil {
		if *p.StatsScale < 1 || *p.StatsScale > 10 {
			return fmt.Errorf("blocking: stats scale %d out of range [1,10]", *p.StatsScale)
		}
		next.StatsScale = *p.StatsScale
	}
	if p.TextVocab != nil {
		if len(*p.TextVocab) > MaxVocabLen {
			return fmt.Errorf("blocking: text_vocab exceeds %d bytes", MaxVocabLen)
		}
		next.TextVocab = *p.TextVocab
	}
	if p.TextStats != nil {
		if len(*p.TextStats) > MaxStatsLen {
			return fmt.Errorf("blocking: text_stats exceeds %d bytes", MaxStatsLen)
		}
		next.TextStats = *p.TextStats
	}
	if p.PreviewX != nil {
		next.Preview.X = *p.PreviewX
	}
	if p.PreviewY != nil {
		next.Preview.Y = *p.PreviewY
	}
	if p.PreviewW != nil {
		next.Preview.W = *p.PreviewW
	}
	if p.PreviewH != nil {
		next.Preview.H = *p.PreviewH
	}
	if p.PreviewEnabled != nil {
		next.Preview.Enabled = *p.PreviewEnabled
	}
	if p.TextY != nil {
		next.TextY = *p.TextY
	}
	if p.TextU != nil {
		next.TextU = *p.TextU
	}
	if p.TextV != nil {
		next.TextV = *p.TextV
	}
	if p.BoxY != nil {
		next.BoxY = *p.BoxY
	}
	if p.BoxU != nil {
		next.BoxU = *p.BoxU
	}
	if p.BoxV != nil {
		next.BoxV = *p.BoxV
	}
	if p.BoxAlpha != nil {
		next.BoxAlpha = *p.BoxAlpha
	}
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
		s.enabledFast.Store(next.Enabled)
	}

	s.cfg = next
	return nil
}
