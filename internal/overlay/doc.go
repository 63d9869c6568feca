// Package overlay holds the shared, mutex-protected text-overlay
// configuration and the drawing primitive that alpha-blends one or more
// lines of text onto an NV12 frame's Y and UV planes.
//
// Two rendering paths exist: a TrueType path (FontSet, backed by
// github.com/golang/freetype) used when a face loads successfully, and an
// 8x8 bitmap fallback used when it doesn't. Both are serialised: the TTF
// path by FontSet's process-wide mutex (the rasteriser is not reentrant),
// the config read by a snapshot taken under Store's mutex at the start of
// each draw.
package overlay
