package mpp

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/garagehq/ustreamer-mpp/internal/blocking"
	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
	"github.com/garagehq/ustreamer-mpp/internal/scalepolicy"
)

// AdapterStats is a point-in-time snapshot of an Adapter's activity,
// grounded on stream-capture.StreamProvider.Stats() and framesupplier's
// WorkerStats: enough to answer "is this worker healthy" without exposing
// internal state.
type AdapterStats struct {
	FramesCompressed  uint64
	FramesFailed      uint64
	LastReconfigure   time.Time
	ConfiguredWidth   int
	ConfiguredHeight  int
}

// Config bundles everything one Adapter needs to construct: its identity,
// the scaling policy it resolves targets against, the shared overlay and
// blocking singletons it reads a snapshot of on every frame, the raw-frame
// archive, the shared font set, and the Backend factory (real hardware vs
// a test fake).
type Config struct {
	Name    string
	Quality int
	Policy  scalepolicy.Policy

	Overlay   *overlay.Store
	Blocking  *blocking.Store
	RawCache  *rawcache.Cache
	Fonts     *overlay.FontSet

	NewBackend BackendFactory
	Logger     *slog.Logger
}

// Adapter is the stateful, reconfigurable wrapper over one vendor MPP
// encoder context. It implements spec §4.4's Uninit -> Ready(cfg) ->
// Ready(cfg') -> Dropped state machine: "ready" and "partially allocated"
// are never mixed in one record — a failed reconfigure always leaves
// ready=false with everything unwound.
//
// An Adapter is not safe for concurrent use; each worker in the pool owns
// exactly one, per spec §4.7.
type Adapter struct {
	name    string
	quality int32
	policy  scalepolicy.Policy

	overlayStore  *overlay.Store
	blockingStore *blocking.Store
	rawCache      *rawcache.Cache
	fonts         *overlay.FontSet

	newBackend BackendFactory
	backend    Backend
	logger     *slog.Logger

	ready                bool
	configuredW, configuredH int
	horStride, verStride     int
	vendorFmt                Format

	stats AdapterStats
}

// New constructs an Adapter. It reserves name and quality only; no vendor
// resources are touched until the first Compress call.
func New(cfg Config) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newBackend := cfg.NewBackend
	if newBackend == nil {
		newBackend = NewHardwareBackend
	}
	return &Adapter{
		name:          cfg.Name,
		quality:       int32(clampQuality(cfg.Quality)),
		policy:        cfg.Policy,
		overlayStore:  cfg.Overlay,
		blockingStore: cfg.Blocking,
		rawCache:      cfg.RawCache,
		fonts:         cfg.Fonts,
		newBackend:    newBackend,
		logger:        logger.With("encoder", cfg.Name),
	}
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 99 {
		return 99
	}
	return q
}

// Name returns the adapter's reserved name.
func (a *Adapter) Name() string { return a.name }

// Quality returns the clamped [1,99] quantiser quality this adapter
// encodes at.
func (a *Adapter) Quality() int { return int(atomic.LoadInt32(&a.quality)) }

// Stats returns a snapshot of this adapter's activity counters.
func (a *Adapter) Stats() AdapterStats {
	s := a.stats
	s.ConfiguredWidth, s.ConfiguredHeight = a.configuredW, a.configuredH
	return s
}

// Compress implements spec §4.4's per-frame protocol. It resolves the
// scale target, reconfigures the backend if needed, composites the frame
// (scale/copy, then blocking, then text overlay), encodes, and returns the
// resulting JPEG Frame.
func (a *Adapter) Compress(src *pixfmt.Frame) (*pixfmt.Frame, error) {
	src.BeginEncode()

	vendorFmt, ok := formatFor(src.Format)
	if !ok {
		a.stats.FramesFailed++
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Format)
	}

	tw, th, _ := scalepolicy.Resolve(a.policy, src.Width, src.Height, src.Format)
	horStride, verStride := pixfmt.Align16(tw), pixfmt.Align16(th)

	if !a.ready || tw != a.configuredW || th != a.configuredH || vendorFmt != a.vendorFmt {
		if err := a.reconfigure(tw, th, horStride, verStride, vendorFmt); err != nil {
			a.stats.FramesFailed++
			return nil, err
		}
	}

	frameBuf := a.backend.FrameBuffer()
	if err := prepareFrameBuffer(frameBuf, horStride, verStride, vendorFmt, src, tw, th); err != nil {
		a.stats.FramesFailed++
		return nil, err
	}

	planes := overlay.Planes{
		Y:        frameBuf,
		UV:       frameBuf[horStride*verStride:],
		YStride:  horStride,
		UVStride: horStride,
		Width:    tw,
		Height:   th,
	}

	if vendorFmt == FormatNV12 && a.blockingStore != nil && a.blockingStore.EnabledFast() {
		snap := a.blockingStore.Snapshot()
		if snap.Enabled {
			bg, release := a.blockingStore.BorrowBackground()
			err := blocking.Composite(planes, src.Data(), src.Width, src.Height, snap, bg, a.rawCache, a.fonts)
			release()
			if err != nil {
				a.stats.FramesFailed++
				return nil, err
			}
		}
	}

	if vendorFmt == FormatNV12 {
		if ov := a.overlayStore; ov != nil {
			cfg := ov.Snapshot()
			if cfg.Enabled && cfg.Text != "" {
				a.drawOverlay(planes, cfg)
			}
		}
	}

	data, err := a.backend.Encode()
	if err != nil {
		a.stats.FramesFailed++
		return nil, err
	}
	if len(data) == 0 {
		a.stats.FramesFailed++
		return nil, fmt.Errorf("%w: %s", ErrEmptyPacket, a.name)
	}

	out := &pixfmt.Frame{
		Bytes:     data,
		Width:     tw,
		Height:    th,
		Stride:    tw,
		Format:    pixfmt.JPEG,
		UsedBytes: len(data),
		CaptureTS: src.CaptureTS,
		IsKey:     true,
		GOP:       0,
	}
	out.EncodeBeginTS = src.EncodeBeginTS
	out.EndEncode()
	a.stats.FramesCompressed++
	return out, nil
}

// drawOverlay renders cfg.Text at its configured position using the TTF
// path when a face loads, the 8x8 bitmap fallback otherwise.
func (a *Adapter) drawOverlay(planes overlay.Planes, cfg overlay.Config) {
	kind := overlay.FaceBold
	tw, th, usedTTF := overlay.Dimensions(cfg.Text, cfg.Scale, kind, a.fonts)
	x, y := overlay.CalcPosition(cfg.Position, cfg.X, cfg.Y, planes.Width, planes.Height, tw, th, cfg.Padding)

	if cfg.DrawBG {
		overlay.DrawBackgroundBox(planes, x-cfg.Padding, y-cfg.Padding, tw+2*cfg.Padding, th+2*cfg.Padding, cfg.BgY, cfg.BgU, cfg.BgV, cfg.BgAlpha)
	}
	if usedTTF {
		overlay.DrawTTFText(a.fonts, kind, planes, x, y, cfg.Text, float64(16*cfg.Scale), cfg.FgY, cfg.FgU, cfg.FgV)
	} else {
		overlay.DrawBitmapText(planes, x, y, cfg.Text, cfg.Scale, cfg.FgY, cfg.FgU, cfg.FgV)
	}
}

// reconfigure implements spec §4.4's Ready -> Uninit -> Ready transition:
// tear down any live backend, build a fresh one, and run its allocation
// sequence. Any failure leaves the adapter Uninit with everything
// unwound, and is wrapped in ErrReconfigure.
func (a *Adapter) reconfigure(tw, th, horStride, verStride int, vendorFmt Format) error {
	if a.ready {
		a.teardown()
	}

	backend := a.newBackend(a.name)
	if err := backend.Configure(tw, th, horStride, verStride, vendorFmt, int(atomic.LoadInt32(&a.quality))); err != nil {
		a.logger.Error("reconfigure failed", "width", tw, "height", th, "format", vendorFmt, "error", err)
		return fmt.Errorf("%w: %v", ErrReconfigure, err)
	}

	a.backend = backend
	a.ready = true
	a.configuredW, a.configuredH = tw, th
	a.horStride, a.verStride = horStride, verStride
	a.vendorFmt = vendorFmt
	a.stats.LastReconfigure = time.Now()
	a.logger.Info("reconfigured", "width", tw, "height", th, "format", vendorFmt)
	return nil
}

// teardown releases the current backend and resets the adapter to Uninit.
func (a *Adapter) teardown() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("backend close failed", "error", err)
		}
	}
	a.backend = nil
	a.ready = false
}

// Close releases all vendor resources in reverse acquisition order,
// implementing spec §4.4's Dropped transition.
func (a *Adapter) Close() error {
	a.teardown()
	return nil
}
