package httpapi

import (
	"bytes"
	"testing"

	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

func greyNV12Snapshot(w, h int) rawcache.Snapshot {
	buf := make([]byte, w*h+w*h/2)
	for i := 0; i < w*h; i++ {
		buf[i] = 128
	}
	for i := w * h; i < len(buf); i++ {
		buf[i] = 128
	}
	return rawcache.Snapshot{Bytes: buf, Width: w, Height: h, Stride: w, Valid: true}
}

func TestNV12SnapshotToJPEGFullSize(t *testing.T) {
	snap := greyNV12Snapshot(32, 32)
	out, err := nv12SnapshotToJPEG(snap, false)
	if err != nil {
		t.Fatalf("nv12SnapshotToJPEG: %v", err)
	}
	if !bytes.HasPrefix(out, []byte{0xFF, 0xD8, 0xFF}) {
		t.Fatalf("missing SOI marker")
	}
}

func TestNV12SnapshotToJPEGThumbnail(t *testing.T) {
	snap := greyNV12Snapshot(640, 480)
	out, err := nv12SnapshotToJPEG(snap, true)
	if err != nil {
		t.Fatalf("nv12SnapshotToJPEG: %v", err)
	}
	if !bytes.HasPrefix(out, []byte{0xFF, 0xD8, 0xFF}) {
		t.Fatalf("missing SOI marker")
	}
}

func TestNV12SnapshotToJPEGRejectsEmptyGeometry(t *testing.T) {
	snap := rawcache.Snapshot{Valid: true}
	if _, err := nv12SnapshotToJPEG(snap, false); err == nil {
		t.Fatalf("expected error for empty geometry")
	}
}
