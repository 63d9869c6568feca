package httpapi

import (
	"net/http"
	"strconv"

	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

// handleSnapshotRaw streams the most recently archived raw NV12 frame.
// By default the body is the bare pixel buffer (application/octet-stream),
// with geometry carried in response headers since that body isn't a
// container format. ?format=jpeg instead returns a JPEG-encoded preview,
// optionally downscaled to a fixed-width thumbnail with ?thumbnail=1, for
// callers (a debug UI, a curl-and-look workflow) that don't want to
// deinterleave NV12 themselves.
func (s *Server) handleSnapshotRaw(w http.ResponseWriter, r *http.Request) {
	wantJPEG := r.URL.Query().Get("format") == "jpeg"
	wantThumb := r.URL.Query().Get("thumbnail") == "1"

	s.raw.WithSnapshot(func(snap rawcache.Snapshot) {
		if !snap.Valid {
			writeError(w, http.StatusNotFound, "no raw frame archived yet")
			return
		}
		if !wantJPEG {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("X-Frame-Width", strconv.Itoa(snap.Width))
			w.Header().Set("X-Frame-Height", strconv.Itoa(snap.Height))
			w.Header().Set("X-Frame-Stride", strconv.Itoa(snap.Stride))
			w.Header().Set("Content-Length", strconv.Itoa(len(snap.Bytes)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(snap.Bytes)
			return
		}

		buf, err := nv12SnapshotToJPEG(snap, wantThumb)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf)
	})
}
