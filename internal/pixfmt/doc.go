// Package pixfmt catalogues the packed and semi-planar pixel layouts this
// encoder accepts and holds the owned-buffer Frame type that flows through
// capture, scaling, compositing, and encoding.
//
// Every format's total byte count is a pure function of its dimensions and
// stride; JPEG is the one exception, carried as opaque variable-length
// bytes with no plane math of its own.
package pixfmt
