package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/garagehq/ustreamer-mpp/internal/overlay"
)

// overlayDTO is the JSON shape GET /overlay returns.
type overlayDTO struct {
	Enabled  bool   `json:"enabled"`
	Text     string `json:"text"`
	Position string `json:"position"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Scale    int    `json:"scale"`
	FgY      byte   `json:"y_color"`
	FgU      byte   `json:"u_color"`
	FgV      byte   `json:"v_color"`
	DrawBG   bool   `json:"bg_enabled"`
	BgY      byte   `json:"bg_y"`
	BgU      byte   `json:"bg_u"`
	BgV      byte   `json:"bg_v"`
	BgAlpha  byte   `json:"bg_alpha"`
	Padding  int    `json:"padding"`
}

func toOverlayDTO(c overlay.Config) overlayDTO {
	return overlayDTO{
		Enabled: c.Enabled, Text: c.Text, Position: positionString(c.Position),
		X: c.X, Y: c.Y, Scale: c.Scale,
		FgY: c.FgY, FgU: c.FgU, FgV: c.FgV,
		DrawBG: c.DrawBG, BgY: c.BgY, BgU: c.BgU, BgV: c.BgV, BgAlpha: c.BgAlpha,
		Padding: c.Padding,
	}
}

func positionString(p overlay.Position) string {
	switch p {
	case overlay.TopLeft:
		return "tl"
	case overlay.TopRight:
		return "tr"
	case overlay.BottomLeft:
		return "bl"
	case overlay.BottomRight:
		return "br"
	case overlay.Center:
		return "center"
	default:
		return "custom"
	}
}

func positionFromString(s string) (overlay.Position, bool) {
	switch s {
	case "tl":
		return overlay.TopLeft, true
	case "tr":
		return overlay.TopRight, true
	case "bl":
		return overlay.BottomLeft, true
	case "br":
		return overlay.BottomRight, true
	case "center":
		return overlay.Center, true
	case "custom":
		return overlay.Custom, true
	default:
		return 0, false
	}
}

func (s *Server) handleOverlayGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOverlayDTO(s.overlay.Snapshot()))
}

// handleOverlaySet applies any subset of
// {text,position,x,y,scale,y_color,u_color,v_color,bg_enabled,bg_y,bg_u,
// bg_v,bg_alpha,padding,enabled} from the query string, per spec §6.
func (s *Server) handleOverlaySet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p overlay.Patch

	if v, ok := q["text"]; ok {
		t := v[0]
		p.Text = &t
	}
	if v := q.Get("position"); v != "" {
		if pos, ok := positionFromString(v); ok {
			p.Position = &pos
		} else {
			writeError(w, http.StatusBadRequest, "invalid position")
			return
		}
	}
	if i, err := parseOptionalInt(q, "x"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.X = i
	}
	if i, err := parseOptionalInt(q, "y"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.Y = i
	}
	if i, err := parseOptionalInt(q, "scale"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.Scale = i
	}
	if b, err := parseOptionalByte(q, "y_color"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.FgY = b
	}
	if b, err := parseOptionalByte(q, "u_color"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.FgU = b
	}
	if b, err := parseOptionalByte(q, "v_color"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.FgV = b
	}
	if b, err := parseOptionalBool(q, "bg_enabled"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.DrawBG = b
	}
	if b, err := parseOptionalByte(q, "bg_y"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BgY = b
	}
	if b, err := parseOptionalByte(q, "bg_u"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BgU = b
	}
	if b, err := parseOptionalByte(q, "bg_v"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BgV = b
	}
	if b, err := parseOptionalByte(q, "bg_alpha"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.BgAlpha = b
	}
	if i, err := parseOptionalInt(q, "padding"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if i != nil {
		p.Padding = i
	}
	if b, err := parseOptionalBool(q, "enabled"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if b != nil {
		p.Enabled = b
	}

	if err := s.overlay.Apply(p); err != nil {
		s.logger.Warn("overlay/set rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "err", "error": msg})
}

func parseOptionalInt(q map[string][]string, key string) (*int, error) {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(v[0])
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseOptionalByte(q map[string][]string, key string) (*byte, error) {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(v[0])
	if err != nil {
		return nil, err
	}
	b := byte(n)
	return &b, nil
}

func parseOptionalBool(q map[string][]string, key string) (*bool, error) {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return nil, nil
	}
	b, err := strconv.ParseBool(v[0])
	if err != nil {
		return nil, err
	}
	return &b, nil
}
