package store

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/render/raster"
	"github.com/painterhq/painter/internal/scene"
)

// ThumbnailSize is the edge length of stored thumbnails in pixels.
const ThumbnailSize = 256

// supersample is the factor the scene is rendered at before downscaling.
const supersample = 2

// Thumbnail renders the active mode of s framed to its content and returns a
// size x size PNG.
func Thumbnail(s *scene.Scene, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("thumbnail: invalid size %d", size)
	}
	vp := camera.NewViewport(size*supersample, size*supersample)
	cam := FitCamera(s, vp)

	c := raster.New(vp.Width, vp.Height)
	defer c.Close()
	if err := render.RenderFrame(c, s, cam, vp); err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), c.Image(), c.Image().Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// FitCamera returns the default camera for the scene's mode moved so that
// every shape of that mode is in view. An empty scene gets the default pose.
func FitCamera(s *scene.Scene, vp camera.Viewport) camera.Camera {
	mode := s.Mode()
	cam := camera.ForMode(mode)

	box := geom.EmptyBox()
	for _, sh := range s.Shapes(mode) {
		box = box.Union(geom.BoundingBox(sh, geom.WorldSpace).Expand(sh.Width / 2))
	}
	if box.IsEmpty() {
		return cam
	}

	size := box.Size()
	center := box.Center()
	if mode == geom.Mode2D {
		w, h := math.Max(size[0], 1), math.Max(size[1], 1)
		cam.Scale = 0.9 * math.Min(float64(vp.Width)/w, float64(vp.Height)/h)
		cam.Position = geom.V3(
			center[0]-float64(vp.Width)/2/cam.Scale,
			center[1]-float64(vp.Height)/2/cam.Scale,
			0,
		)
		return cam
	}

	radius := math.Max(size.Len()/2, 0.5)
	dist := 1.2 * radius / math.Sin(cam.FovY/2)
	cam.Position = geom.V3(center[0], center[1], center[2]+dist)
	cam.Far = math.Max(cam.Far, 2*(dist+radius))
	return cam
}
