package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/garagehq/ustreamer-mpp/internal/blocking"
	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
)

func newTestServer() (*Server, *http.ServeMux) {
	s := New(overlay.NewStore(), blocking.NewStore(), rawcache.New(), nil)
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s, mux
}

func doRequest(mux *http.ServeMux, method, target string, body []byte) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestOverlayGetDefault(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodGet, "/overlay", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var dto overlayDTO
	if err := json.Unmarshal(w.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dto.Enabled {
		t.Fatalf("expected disabled by default")
	}
	if dto.Position != "tr" {
		t.Fatalf("expected default position tr, got %s", dto.Position)
	}
}

func TestOverlaySetAndGetRoundTrip(t *testing.T) {
	_, mux := newTestServer()
	q := url.Values{}
	q.Set("text", "hello")
	q.Set("enabled", "true")
	q.Set("position", "bl")
	q.Set("scale", "4")
	w := doRequest(mux, http.MethodGet, "/overlay/set?"+q.Encode(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(mux, http.MethodGet, "/overlay", nil)
	var dto overlayDTO
	if err := json.Unmarshal(w.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !dto.Enabled || dto.Text != "hello" || dto.Position != "bl" || dto.Scale != 4 {
		t.Fatalf("unexpected dto after set: %+v", dto)
	}
}

func TestOverlaySetRejectsInvalidScale(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodGet, "/overlay/set?scale=99", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestOverlaySetRejectsInvalidPosition(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodGet, "/overlay/set?position=nowhere", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBlockingSetTextAndClear(t *testing.T) {
	_, mux := newTestServer()
	q := url.Values{}
	q.Set("enabled", "true")
	q.Set("text_vocab", `cat\ndog`)
	w := doRequest(mux, http.MethodGet, "/blocking/set?"+q.Encode(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(mux, http.MethodGet, "/blocking", nil)
	var dto blockingDTO
	if err := json.Unmarshal(w.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !dto.Enabled || dto.TextVocab != "cat\ndog" {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	w = doRequest(mux, http.MethodGet, "/blocking/set?clear=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	w = doRequest(mux, http.MethodGet, "/blocking", nil)
	json.Unmarshal(w.Body.Bytes(), &dto)
	if dto.Enabled || dto.TextVocab != "" {
		t.Fatalf("expected cleared config, got %+v", dto)
	}
}

func TestBlockingSetRejectsBadScale(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodGet, "/blocking/set?text_vocab_scale=99", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBackgroundUploadJPEGAndReadBack(t *testing.T) {
	_, mux := newTestServer()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	w := doRequest(mux, http.MethodPost, "/blocking/background", buf.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(mux, http.MethodGet, "/blocking", nil)
	var dto blockingDTO
	json.Unmarshal(w.Body.Bytes(), &dto)
	if !dto.BGValid || dto.BGWidth != 16 || dto.BGHeight != 16 {
		t.Fatalf("expected valid 16x16 background, got %+v", dto)
	}
}

func TestBackgroundUploadRawNV12(t *testing.T) {
	_, mux := newTestServer()
	used, err := pixfmt.ExpectedUsedBytes(pixfmt.NV12, 8, 8)
	if err != nil {
		t.Fatalf("ExpectedUsedBytes: %v", err)
	}
	body := make([]byte, used)
	for i := range body {
		body[i] = 100
	}
	w := doRequest(mux, http.MethodPost, "/blocking/background?width=8&height=8", body)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestBackgroundUploadRawNV12WrongSizeRejected(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodPost, "/blocking/background?width=8&height=8", []byte{1, 2, 3})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSnapshotRawNotFoundWhenEmpty(t *testing.T) {
	_, mux := newTestServer()
	w := doRequest(mux, http.MethodGet, "/snapshot/raw", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSnapshotRawReturnsArchivedFrame(t *testing.T) {
	s, mux := newTestServer()
	raw := []byte{1, 2, 3, 4, 5, 6}
	s.raw.Store(raw, 3, 2, 3)

	w := doRequest(mux, http.MethodGet, "/snapshot/raw", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Frame-Width") != "3" || w.Header().Get("X-Frame-Height") != "2" {
		t.Fatalf("unexpected geometry headers: %v", w.Header())
	}
	if !bytes.Equal(w.Body.Bytes(), raw) {
		t.Fatalf("body mismatch: got %v want %v", w.Body.Bytes(), raw)
	}
}

func TestSnapshotRawJPEGFormat(t *testing.T) {
	s, mux := newTestServer()
	used, err := pixfmt.ExpectedUsedBytes(pixfmt.NV12, 16, 16)
	if err != nil {
		t.Fatalf("ExpectedUsedBytes: %v", err)
	}
	raw := make([]byte, used)
	for i := range raw {
		raw[i] = 128
	}
	s.raw.Store(raw, 16, 16, 16)

	w := doRequest(mux, http.MethodGet, "/snapshot/raw?format=jpeg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("expected image/jpeg content type, got %s", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte{0xFF, 0xD8, 0xFF}) {
		t.Fatalf("missing SOI marker")
	}
}
