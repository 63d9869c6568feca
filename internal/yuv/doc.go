// Package yuv implements nearest-neighbour downscaling and stride-aligned
// copying for semi-planar 4:2:0 (NV12) frames. These are the two paths
// between a captured frame and the encoder's DMA-aligned input buffer: one
// when the resolved target differs from the source, one when it doesn't.
package yuv
