// Package export renders .painter documents to PNG over HTTP.
package export

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/render/raster"
	"github.com/painterhq/painter/internal/store"
)

const (
	maxUploadSize = 8 << 20 // 8MB
	maxDimension  = 4096
)

type Handler struct {
	defaultWidth  int
	defaultHeight int
	logger        *slog.Logger
}

func NewHandler(defaultWidth, defaultHeight int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{defaultWidth: defaultWidth, defaultHeight: defaultHeight, logger: logger}
}

// RenderPNG handles POST /render. The body is a .painter document; the
// optional width and height query parameters size the image. With fit=1
// the camera frames the content instead of using the default pose.
func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	width := dimension(r.URL.Query().Get("width"), h.defaultWidth)
	height := dimension(r.URL.Query().Get("height"), h.defaultHeight)

	s, err := document.Decode(data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, document.ErrVersion) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	vp := camera.NewViewport(width, height)
	cam := camera.ForMode(s.Mode())
	if r.URL.Query().Get("fit") == "1" {
		cam = store.FitCamera(s, vp)
	}

	var buf bytes.Buffer
	if err := raster.RenderPNG(&buf, s, cam, vp); err != nil {
		h.logger.Error("render png", "error", err, "width", width, "height", height)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// dimension parses a pixel size, falling back to def when the value is
// missing or out of range.
func dimension(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 || v > maxDimension {
		return def
	}
	return v
}
