package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

func layerURL(w int, c color.NRGBA) string {
	img := image.NewNRGBA(image.Rect(0, 0, w, w))
	img.SetNRGBA(0, 0, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return "url(data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()) + ")"
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	procedural := `<svg style="background-image:` + strings.Join([]string{
		layerURL(192, color.NRGBA{0xff, 0, 0, 0xff}),
		layerURL(192, color.NRGBA{0, 0xff, 0, 0xff}),
		layerURL(192, color.NRGBA{0, 0, 0xff, 0xff}),
	}, ",") + `;"></svg>`
	filler := layerURL(24, color.NRGBA{})
	unique := `<svg style="background-image:` + strings.Join([]string{layerURL(24, color.NRGBA{1, 2, 3, 0xff}), filler, filler}, ",") + `;"></svg>`

	files := map[string]string{"1.svg": procedural, "2.svg": unique, "3.svg": "<svg/>"}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := New(Config{Source: pipeline.DirSource{Dir: dir}, Logger: log.New(io.Discard)})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		t.Errorf("healthz = %d %+v", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}
}

func TestTokenStatus(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		width       int
	}{
		{"/tokens/1", http.StatusOK, "image/png", 192},
		{"/tokens/1?size=96&transparent=true", http.StatusOK, "image/png", 96},
		{"/tokens/2?size=48", http.StatusOK, "image/png", 48},
		{"/tokens/2?transparent=1", http.StatusConflict, "application/json", 0},
		{"/tokens/3", http.StatusUnprocessableEntity, "application/json", 0},
		{"/tokens/4", http.StatusNotFound, "application/json", 0},
		{"/tokens/abc", http.StatusBadRequest, "application/json", 0},
		{"/tokens/1?size=0", http.StatusBadRequest, "application/json", 0},
		{"/tokens/1?size=big", http.StatusBadRequest, "application/json", 0},
		{"/tokens/1?size=2000000000", http.StatusBadRequest, "application/json", 0},
		{"/tokens/1?transparent=maybe", http.StatusBadRequest, "application/json", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if tt.width == 0 {
				var e errorResponse
				if err := json.Unmarshal(body, &e); err != nil || e.Error == "" || e.RequestID == "" {
					t.Errorf("error body = %s", body)
				}
				return
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(body))
			if err != nil || cfg.Width != tt.width {
				t.Errorf("image = %+v, %v; want width %d", cfg, err, tt.width)
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)
	const id = "3f2b8c1e-6a4d-4e5f-9a7b-1c2d3e4f5a6b"

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("request id = %q, want a generated uuid", got)
	}
}

func TestParseRequestSizeLimit(t *testing.T) {
	tests := []struct {
		query string
		max   int
		ok    bool
	}{
		{"size=64", 64, true},
		{"size=65", 64, false},
		{"size=2000000000", DefaultMaxImageSize, false},
		{"", 64, false},
		{"", DefaultMaxImageSize, true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/tokens/1?"+tt.query, nil)
		req, err := parseRequest("1", r, tt.max)
		if tt.ok && err != nil {
			t.Errorf("parseRequest(%q, max %d) error = %v", tt.query, tt.max, err)
		}
		if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("parseRequest(%q, max %d) = %+v, %v; want INVALID_INPUT", tt.query, tt.max, req, err)
		}
	}
}
