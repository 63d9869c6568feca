// Package scalepolicy resolves a global, user-selectable target-resolution
// rule against an input frame's geometry. It never upscales: both output
// dimensions are clamped to the input's.
package scalepolicy
