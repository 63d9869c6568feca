//go:build mpp

package mpp

/*
#cgo LDFLAGS: -lrockchip_mpp
#include <string.h>
#include <rockchip/rk_mpi.h>
#include <rockchip/mpp_buffer.h>

static MppEncCfg mpp_jpeg_cfg_new(void) {
	MppEncCfg cfg;
	mpp_enc_cfg_init(&cfg);
	return cfg;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// hwBackend wraps one Rockchip MPP encoder context and its DMA buffer group.
// It is not safe for concurrent use; each Adapter (and therefore each
// worker in the pool) owns exactly one.
type hwBackend struct {
	name string

	ctx    C.MppCtx
	api    *C.MppApi
	group  C.MppBufferGroup
	frame  C.MppFrame
	packet C.MppPacket

	frameBuf  C.MppBufferPtr
	packetBuf C.MppBufferPtr

	horStride, verStride int
	frameBufSize         int
	frameBytes           []byte
	vendorFmt            Format
	configured           bool
}

// NewHardwareBackend returns the cgo-backed Backend talking to the real
// Rockchip MPP vendor library.
func NewHardwareBackend(name string) Backend {
	return &hwBackend{name: name}
}

func mppFormatTag(f Format) C.MppFrameFormat {
	switch f {
	case FormatNV12:
		return C.MPP_FMT_YUV420SP
	case FormatNV16:
		return C.MPP_FMT_YUV422SP
	case FormatNV24:
		return C.MPP_FMT_YUV444SP
	case FormatYUYV:
		return C.MPP_FMT_YUV422_YUYV
	case FormatUYVY:
		return C.MPP_FMT_YUV422_UYVY
	case FormatRGB24:
		return C.MPP_FMT_RGB888
	case FormatBGR24:
		return C.MPP_FMT_BGR888
	default:
		return C.MPP_FMT_YUV420SP
	}
}

// Configure implements spec §4.4's six-step allocation sequence. Any
// failure unwinds everything allocated so far before returning.
func (b *hwBackend) Configure(tw, th, horStride, verStride int, vendorFmt Format, quality int) error {
	b.teardown()

	if ret := C.mpp_create(&b.ctx, &b.api); ret != C.MPP_OK {
		return fmt.Errorf("%w: %s: mpp_create: %d", ErrAllocFailed, b.name, int(ret))
	}
	if ret := C.mpp_init(b.ctx, C.MPP_CTX_ENC, C.MPP_VIDEO_CodingMJPEG); ret != C.MPP_OK {
		b.teardown()
		return fmt.Errorf("%w: %s: mpp_init: %d", ErrReconfigure, b.name, int(ret))
	}

	cfg := C.mpp_jpeg_cfg_new()
	defer C.mpp_enc_cfg_deinit(cfg)
	C.mpp_enc_cfg_set_s32(cfg, C.CString("prep:width"), C.int(tw))
	C.mpp_enc_cfg_set_s32(cfg, C.CString("prep:height"), C.int(th))
	C.mpp_enc_cfg_set_s32(cfg, C.CString("prep:hor_stride"), C.int(horStride))
	C.mpp_enc_cfg_set_s32(cfg, C.CString("prep:ver_stride"), C.int(verStride))
	C.mpp_enc_cfg_set_s32(cfg, C.CString("prep:format"), C.int(mppFormatTag(vendorFmt)))
	C.mpp_enc_cfg_set_s32(cfg, C.CString("rc:mode"), C.int(C.MPP_ENC_RC_MODE_FIXQP))
	q := quality
	if q < 1 {
		q = 1
	}
	if q > 99 {
		q = 99
	}
	C.mpp_enc_cfg_set_s32(cfg, C.CString("jpeg:quant"), C.int(q))
	if ret := C.call_mpi_control(b.api, b.ctx, C.MPP_ENC_SET_CFG, unsafe.Pointer(cfg)); ret != C.MPP_OK {
		b.teardown()
		return fmt.Errorf("%w: %s: MPP_ENC_SET_CFG: %d", ErrReconfigure, b.name, int(ret))
	}

	if ret := C.mpp_buffer_group_get_internal(&b.group, C.MPP_BUFFER_TYPE_DMA_HEAP); ret != C.MPP_OK {
		b.teardown()
		return fmt.Errorf("%w: %s: buffer group: %d", ErrAllocFailed, b.name, int(ret))
	}

	frameBufSize := FrameBufferSize(horStride, verStride, vendorFmt)
	if ret := C.mpp_buffer_get(b.group, &b.frameBuf, C.size_t(frameBufSize)); ret != C.MPP_OK {
		b.teardown()
		return fmt.Errorf("%w: %s: frame buffer: %d", ErrAllocFailed, b.name, int(ret))
	}
	packetBufSize := PacketBufferSize(tw, th)
	if ret := C.mpp_buffer_get(b.group, &b.packetBuf, C.size_t(packetBufSize)); ret != C.MPP_OK {
		b.teardown()
		return fmt.Errorf("%w: %s: packet buffer: %d", ErrAllocFailed, b.name, int(ret))
	}

	b.horStride, b.verStride, b.vendorFmt, b.frameBufSize = horStride, verStride, vendorFmt, frameBufSize
	ptr := C.mpp_buffer_get_ptr(b.frameBuf)
	b.frameBytes = unsafe.Slice((*byte)(ptr), frameBufSize)
	b.configured = true
	return nil
}

func (b *hwBackend) FrameBuffer() []byte {
	return b.frameBytes
}

// Encode implements spec §4.4's per-frame steps 4-7: cache-sync, submit,
// retrieve, release descriptors in reverse order.
func (b *hwBackend) Encode() ([]byte, error) {
	if !b.configured {
		return nil, fmt.Errorf("%w: %s: not configured", ErrSubmitFailed, b.name)
	}
	if ret := C.mpp_buffer_sync_end(b.frameBuf); ret != C.MPP_OK {
		return nil, fmt.Errorf("%w: %s: %d", ErrDMASync, b.name, int(ret))
	}

	if ret := C.mpp_frame_init(&b.frame); ret != C.MPP_OK {
		return nil, fmt.Errorf("%w: %s: mpp_frame_init: %d", ErrSubmitFailed, b.name, int(ret))
	}
	C.mpp_frame_set_width(b.frame, C.RK_U32(b.horStride))
	C.mpp_frame_set_height(b.frame, C.RK_U32(b.verStride))
	C.mpp_frame_set_hor_stride(b.frame, C.RK_U32(b.horStride))
	C.mpp_frame_set_ver_stride(b.frame, C.RK_U32(b.verStride))
	C.mpp_frame_set_fmt(b.frame, mppFormatTag(b.vendorFmt))
	C.mpp_frame_set_buffer(b.frame, b.frameBuf)

	if ret := C.call_mpi_encode_put_frame(b.api, b.ctx, b.frame); ret != C.MPP_OK {
		C.mpp_frame_deinit(&b.frame)
		return nil, fmt.Errorf("%w: %s: encode_put_frame: %d", ErrSubmitFailed, b.name, int(ret))
	}

	if ret := C.call_mpi_encode_get_packet(b.api, b.ctx, &b.packet); ret != C.MPP_OK {
		C.mpp_frame_deinit(&b.frame)
		return nil, fmt.Errorf("%w: %s: encode_get_packet: %d", ErrRetrieveFailed, b.name, int(ret))
	}

	length := int(C.mpp_packet_get_length(b.packet))
	if length == 0 {
		C.mpp_packet_deinit(&b.packet)
		C.mpp_frame_deinit(&b.frame)
		return nil, fmt.Errorf("%w: %s", ErrEmptyPacket, b.name)
	}
	ptr := C.mpp_packet_get_pos(b.packet)
	out := make([]byte, length)
	copy(out, unsafe.Slice((*byte)(ptr), length))

	C.mpp_packet_deinit(&b.packet)
	C.mpp_frame_deinit(&b.frame)
	return out, nil
}

// teardown releases all vendor resources in reverse acquisition order. It
// is safe to call on a partially-allocated or already-torn-down backend.
func (b *hwBackend) teardown() {
	if b.packetBuf != nil {
		C.mpp_buffer_put(b.packetBuf)
		b.packetBuf = nil
	}
	if b.frameBuf != nil {
		C.mpp_buffer_put(b.frameBuf)
		b.frameBuf = nil
	}
	if b.group != nil {
		C.mpp_buffer_group_put(b.group)
		b.group = nil
	}
	if b.ctx != nil {
		C.mpp_destroy(b.ctx)
		b.ctx = nil
		b.api = nil
	}
	b.configured = false
	b.frameBytes = nil
}

func (b *hwBackend) Close() error {
	b.teardown()
	return nil
}
