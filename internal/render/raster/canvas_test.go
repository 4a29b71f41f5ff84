package raster

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/scene"
)

func rgbAt(img image.Image, x, y int) geom.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return geom.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func TestCanvasFillsPolygon(t *testing.T) {
	s := scene.New(geom.Mode2D)
	_, err := s.Add(geom.NewShape(geom.KindPolygon, geom.Mode2D, geom.Red, 0,
		geom.V3(10, 10, 0), geom.V3(90, 10, 0), geom.V3(10, 90, 0)))
	if err != nil {
		t.Fatal(err)
	}

	c := New(100, 100)
	defer c.Close()
	if err := render.RenderFrame(c, s, camera.Default2D(), camera.NewViewport(100, 100)); err != nil {
		t.Fatal(err)
	}
	img := c.Image()
	if got := rgbAt(img, 20, 20); got != geom.Red {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := rgbAt(img, 95, 95); got != geom.White {
		t.Errorf("outside pixel = %v, want background", got)
	}
}

func TestCanvasDrawsBox(t *testing.T) {
	s := scene.New(geom.Mode3D)
	if _, err := s.Add(geom.BoxMesh(geom.V3(0, 0, 0), 4, geom.Blue)); err != nil {
		t.Fatal(err)
	}
	c := New(64, 64)
	defer c.Close()
	if err := render.RenderFrame(c, s, camera.Default3D(), camera.NewViewport(64, 64)); err != nil {
		t.Fatal(err)
	}
	img := c.Image()
	if got := rgbAt(img, 32, 32); got != geom.Blue {
		t.Errorf("centre pixel = %v, want blue", got)
	}
	if got := rgbAt(img, 1, 1); got != scene.Background3D {
		t.Errorf("corner pixel = %v, want background", got)
	}
}

func TestCanvasRejectsEmptyViewport(t *testing.T) {
	c := New(10, 10)
	defer c.Close()
	if err := c.Begin(render.FrameState{}); err == nil {
		t.Error("Begin accepted an empty viewport")
	}
}

func TestRenderPNG(t *testing.T) {
	s := scene.New(geom.Mode2D)
	var buf bytes.Buffer
	if err := RenderPNG(&buf, s, camera.Default2D(), camera.NewViewport(32, 16)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("png size = %v", b)
	}
}
