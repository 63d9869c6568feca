package overlay

import (
	"fmt"
	"sync"
)

// Position is the anchor preset for where text is drawn.
type Position int

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
	Center
	Custom
)

// MaxTextLen is the spec's text[<=256] bound.
const MaxTextLen = 256

// Config is a snapshot of the overlay's drawable state. Zero value is
// "disabled, no text".
type Config struct {
	Enabled  bool
	Text     string
	Position Position
	X, Y     int // only meaningful when Position == Custom
	Scale    int // 1..10

	FgY, FgU, FgV byte

	DrawBG               bool
	BgY, BgU, BgV, BgAlpha byte

	Padding int
}

// DefaultConfig mirrors the original's startup defaults: disabled,
// top-right, scale 2, white-on-nothing.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Position: TopRight,
		Scale:    2,
		FgY:      235,
		FgU:      128,
		FgV:      128,
		Padding:  4,
	}
}

// Patch carries an optional subset of Config fields for a partial update.
// Only non-nil fields are applied.
type Patch struct {
	Text     *string
	Position *Position
	X, Y     *int
	Scale    *int
	FgY, FgU, FgV *byte
	DrawBG   *bool
	BgY, BgU, BgV, BgAlpha *byte
	Padding  *int
	Enabled  *bool
}

// Store is the mutex-protected shared OverlayConfig singleton: mutated by
// HTTP handlers, read as a snapshot copy per-frame by encoder workers.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a Store seeded with DefaultConfig.
func NewStore() *Store {
	return &Store{cfg: DefaultConfig()}
}

// Snapshot returns a copy of the current config, safe to use lock-free
// after the call returns.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Apply validates and merges patch into the stored config as one atomic
// unit. On validation failure the prior configuration is left untouched.
func (s *Store) Apply(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	if p.Text != nil {
		if len(*p.Text) > MaxTextLen {
			return fmt.Errorf("overlay: text exceeds %d bytes", MaxTextLen)
		}
		next.Text = *p.Text
	}
	if p.Position != nil {
		next.Position = *p.Position
	}
	if p.X != nil {
		next.X = *p.X
	}
	if p.Y != nil {
		next.Y = *p.Y
	}
	if p.Scale != nil {
		if *p.Scale < 1 || *p.Scale > 10 {
			return fmt.Errorf("overlay: scale %d out of range [1,10]", *p.Scale)
		}
		next.Scale = *p.Scale
	}
	if p.FgY != nil {
		next.FgY = *p.FgY
	}
	if p.FgU != nil {
		next.FgU = *p.FgU
	}
	if p.FgV != nil {
		next.FgV = *p.FgV
	}
	if p.DrawBG != nil {
		next.DrawBG = *p.DrawBG
	}
	if p.BgY != nil {
		next.BgY = *p.BgY
	}
	if p.BgU != nil {
		next.BgU = *p.BgU
	}
	if p.BgV != nil {
		next.BgV = *p.BgV
	}
	if p.BgAlpha != nil {
		next.BgAlpha = *p.BgAlpha
	}
	if p.Padding != nil {
		if *p.Padding < 0 {
			return fmt.Errorf("overlay: padding must be >= 0")
		}
		next.Padding = *p.Padding
	}
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
	}

	s.cfg = next
	return nil
}

// Clear resets to DefaultConfig (disabled, no text).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = DefaultConfig()
}
