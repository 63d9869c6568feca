package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/garagehq/ustreamer-mpp/internal/blocking"
)

// blockingDTO is the JSON shape GET /blocking returns: no background
// pixel bytes, only its validity/geometry, per spec §6.
type blockingDTO struct {
	Enabled    bool   `json:"enabled"`
	BGValid    bool   `json:"bg_valid"`
	BGWidth    int    `json:"bg_w"`
	BGHeight   int    `json:"bg_h"`
	PreviewX   int    `json:"preview_x"`
	PreviewY   int    `json:"preview_y"`
	PreviewW   int    `json:"preview_w"`
	PreviewH   int    `json:"preview_h"`
	PreviewOn  bool   `json:"preview_enabled"`
	TextVocab  string `json:"text_vocab"`
	TextStats  string `json:"text_stats"`
	VocabScale int    `json:"text_vocab_scale"`
	StatsScale int    `json:"text_stats_scale"`
	TextY      byte   `json:"text_y"`
	TextU      byte   `json:"text_u"`
	TextV      byte   `json:"text_v"`
	BoxY       byte   `json:"box_y"`
	BoxU       byte   `json:"box_u"`
	BoxV       byte   `json:"box_v"`
	BoxAlpha   byte   `json:"box_alpha"`
}

func toBlockingDTO(c blocking.Config) blockingDTO {
	return blockingDTO{
		Enabled: c.Enabled, BGValid: c.BGValid, BGWidth: c.BGWidth, BGHeight: c.BGHeight,
		PreviewX: c.Preview.X, PreviewY: c.Preview.Y, PreviewW: c.Preview.W, PreviewH: c.Preview.H, PreviewOn: c.Preview.Enabled,
		TextVocab: c.TextVocab, TextStats: c.TextStats, VocabScale: c.VocabScale, StatsScale: c.StatsScale,
		TextY: c.TextY, TextU: c.TextU, TextV: c.TextV,
		BoxY: c.BoxY, BoxU: c.BoxU, BoxV: c.BoxV, BoxAlpha: c.BoxAlpha,
	}
}

func (s *Server) handleBlockingGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toBlockingDTO(s.blocking.Snapshot()))
}

// unescapeLiteralNewlines turns the two-character sequence backslash-n into
// an actual newline, per spec §6's "URL-decoded text supports literal \n
// for newlines" (the query string itself is already URL-decoded by
// net/url by the time handlers see it; this is a second, explicit pass for
// the \n convention on top of that).
func unescapeLiteralNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// handleBlockingSet applies any subset of enabled, text_vocab, text_stats,
// text_vocab_scale, text_stats_scale, preview_{x,y,w,h,enabled}, colour
// triples text_{y,u,v}, box_{y,u,v,alpha}, and clear, per spec §6.
func (s *Server) handleBlockingSet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p blocking.Patch

	if b, err := parseOptionalBool(q, "clear"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil && *b {
		p.Clear = true
	}
	if b, err := parseOptionalBool(q, "enabled"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.Enabled = b
	}
	if v, ok := q["text_vocab"]; ok {
		t := unescapeLiteralNewlines(v[0])
		p.TextVocab = &t
	}
	if v, ok := q["text_stats"]; ok {
		t := unescapeLiteralNewlines(v[0])
		p.TextStats = &t
	}
	if i, err := parseOptionalInt(q, "text_vocab_scale"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.VocabScale = i
	}
	if i, err := parseOptionalInt(q, "text_stats_scale"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.StatsScale = i
	}
	if i, err := parseOptionalInt(q, "preview_x"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.PreviewX = i
	}
	if i, err := parseOptionalInt(q, "preview_y"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.PreviewY = i
	}
	if i, err := parseOptionalInt(q, "preview_w"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.PreviewW = i
	}
	if i, err := parseOptionalInt(q, "preview_h"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.PreviewH = i
	}
	if b, err := parseOptionalBool(q, "preview_enabled"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.PreviewEnabled = b
	}
	if b, err := parseOptionalByte(q, "text_y"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.TextY = b
	}
	if b, err := parseOptionalByte(q, "text_u"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.TextU = b
	}
	if b, err := parseOptionalByte(q, "text_v"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.TextV = b
	}
	if b, err := parseOptionalByte(q, "box_y"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BoxY = b
	}
	if b, err := parseOptionalByte(q, "box_u"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BoxU = b
	}
	if b, err := parseOptionalByte(q, "box_v"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BoxV = b
	}
	if b, err := parseOptionalByte(q, "box_alpha"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BoxAlpha = b
	}

	if err := s.blocking.Apply(p); err != nil {
		s.logger.Warn("blocking/set rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBlockingBackground accepts either a JPEG byte stream (autodetected
// by magic) or raw NV12 bytes with query params ?width&height, per spec
// §6's POST /blocking/background.
func (s *Server) handleBlockingBackground(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if blocking.LooksLikeJPEG(body) {
		if err := s.blocking.UploadBackgroundJPEG(body); err != nil {
			s.logger.Warn("background jpeg upload rejected", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid width")
		return
	}
	height, err := strconv.Atoi(r.URL.Query().Get("height"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid height")
		return
	}
	if err := s.blocking.UploadBackgroundRawNV12(body, width, height); err != nil {
		s.logger.Warn("background raw upload rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
