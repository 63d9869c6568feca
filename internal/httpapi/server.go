// Package httpapi is the HTTP control surface from spec §6: read/write
// access to OverlayConfig and BlockingConfig, background upload, and a raw
// frame snapshot. Grounded on Kitonae-WHEP/internal/server/server.go's
// RegisterRoutes(mux) shape: a handful of fixed routes on the standard
// library's net/http.ServeMux, no third-party router.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/garagehq/ustreamer-mpp/internal/blocking"
	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

// Server holds the shared singletons the control surface reads and
// mutates. It owns no goroutines; RegisterRoutes wires its handlers onto a
// caller-supplied mux so main can start the http.Server.
type Server struct {
	overlay  *overlay.Store
	blocking *blocking.Store
	raw      *rawcache.Cache
	logger   *slog.Logger
}

// New constructs a Server over the given shared stores.
func New(overlayStore *overlay.Store, blockingStore *blocking.Store, raw *rawcache.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{overlay: overlayStore, blocking: blockingStore, raw: raw, logger: logger}
}

// RegisterRoutes wires every spec §6 HTTP control route onto mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/overlay", s.handleOverlayGet)
	mux.HandleFunc("/overlay/set", s.handleOverlaySet)
	mux.HandleFunc("/blocking", s.handleBlockingGet)
	mux.HandleFunc("/blocking/set", s.handleBlockingSet)
	mux.HandleFunc("/blocking/background", s.handleBlockingBackground)
	mux.HandleFunc("/snapshot/raw", s.handleSnapshotRaw)
}
