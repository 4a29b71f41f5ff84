package document

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
)

func extremalScene(mode geom.Mode) *scene.Scene {
	s := scene.New(mode)
	s.SetBackground(geom.Black)
	z := 0.0
	if mode == geom.Mode3D {
		z = -2.5
	}
	shapes := []geom.Shape{
		geom.NewShape(geom.KindPoint, mode, geom.Black, 1, geom.V3(0.1, 0.2, z)),
		geom.NewShape(geom.KindLine, mode, geom.White, 2.5, geom.V3(-1e6, 3, z), geom.V3(1e-9, -7, z)),
		geom.NewShape(geom.KindPolygon, mode, geom.RGB(255, 0, 0), 0, geom.V3(0, 0, z), geom.V3(1, 0, z), geom.V3(0, 1, z)),
	}
	if mode == geom.Mode3D {
		box := geom.BoxMesh(geom.V3(1, 2, 3), 0.75, geom.White)
		box.Transform = geom.RotateEulerDegrees(10, 20, 30)
		shapes = append(shapes, box)
	} else {
		shapes[2].Transform = geom.Placement{X: 5, Y: 6, Rotation: 33, ScaleX: 2, ScaleY: 0.5, Anchor: geom.V2(1, 1)}.Mat4()
	}
	for _, sh := range shapes {
		if _, err := s.Add(sh); err != nil {
			panic(err)
		}
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		scene *scene.Scene
	}{
		{"empty 2d", scene.New(geom.Mode2D)},
		{"empty 3d", scene.New(geom.Mode3D)},
		{"extremal 2d", extremalScene(geom.Mode2D)},
		{"extremal 3d", extremalScene(geom.Mode3D)},
		{"sample 2d", NewSampleScene(geom.Mode2D)},
		{"sample 3d", NewSampleScene(geom.Mode3D)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "drawing")
			written, err := Save(context.Background(), path, tt.scene)
			if err != nil {
				t.Fatal(err)
			}
			if written != path+Extension {
				t.Errorf("written to %s, want %s", written, path+Extension)
			}
			got, err := Load(context.Background(), written)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.scene) {
				t.Errorf("load(save(scene)) differs:\n got  %+v\n want %+v", got.All(), tt.scene.All())
			}
			if got.Mode() != tt.scene.Mode() || got.Len() != tt.scene.Len() {
				t.Errorf("mode %s len %d, want %s len %d", got.Mode(), got.Len(), tt.scene.Mode(), tt.scene.Len())
			}
		})
	}
}

func TestEncodeHeader(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := Encode(scene.New(geom.Mode2D), "sketch.painter", at)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"version": "1.0"`, `"saved_at": "2024-03-01T12:00:00Z"`, `"project_name": "sketch.painter"`, `"shapes": []`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("encoded document lacks %s:\n%s", want, data)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		version bool
	}{
		{"not json", `{`, false},
		{"missing version", `{"mode":"2d","background":[0,0,0],"shapes":[]}`, false},
		{"missing mode", `{"version":"1.0","background":[0,0,0],"shapes":[]}`, false},
		{"unknown mode", `{"version":"1.0","mode":"4d","background":[0,0,0],"shapes":[]}`, false},
		{"missing background", `{"version":"1.0","mode":"2d","shapes":[]}`, false},
		{"background out of range", `{"version":"1.0","mode":"2d","background":[0,256,0],"shapes":[]}`, false},
		{"missing shapes", `{"version":"1.0","mode":"2d","background":[0,0,0]}`, false},
		{"shape missing kind", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"mode":"2d","vertices":[[0,0]],"color":[0,0,0]}]}`, false},
		{"shape missing color", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"kind":"point","mode":"2d","vertices":[[0,0]]}]}`, false},
		{"polygon with two vertices", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"kind":"polygon","mode":"2d","vertices":[[0,0],[1,1]],"color":[0,0,0]}]}`, false},
		{"bad vertex arity", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"kind":"point","mode":"2d","vertices":[[0]],"color":[0,0,0]}]}`, false},
		{"short transform", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"kind":"point","mode":"2d","vertices":[[0,0]],"color":[0,0,0],"transform":[1,0,0]}]}`, false},
		{"explicit zero depth", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"kind":"point","mode":"2d","vertices":[[0,0]],"color":[0,0,0],"depth":0}]}`, false},
		{"duplicate ids", `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[{"id":"a","kind":"point","mode":"2d","vertices":[[0,0]],"color":[0,0,0]},{"id":"a","kind":"point","mode":"2d","vertices":[[1,1]],"color":[0,0,0]}]}`, false},
		{"future major version", `{"version":"2.0","mode":"2d","background":[0,0,0],"shapes":[]}`, true},
		{"garbage version", `{"version":"draft","mode":"2d","background":[0,0,0],"shapes":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if tt.version {
				var ve *VersionError
				if !errors.As(err, &ve) || !errors.Is(err, ErrVersion) {
					t.Errorf("error = %v, want VersionError", err)
				}
				return
			}
			var fe *FormatError
			if !errors.As(err, &fe) || !errors.Is(err, ErrFormat) {
				t.Errorf("error = %v, want FormatError", err)
			}
		})
	}
}

func TestDecodeMinorVersion(t *testing.T) {
	doc := `{"version":"1.4","mode":"3d","background":[1,2,3],"shapes":[{"kind":"point","mode":"3d","vertices":[[1,2,3]],"color":[9,9,9],"future_field":true}]}`
	s, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode() != geom.Mode3D || s.Len() != 1 || s.Background() != geom.RGB(1, 2, 3) {
		t.Errorf("decoded mode %s len %d bg %v", s.Mode(), s.Len(), s.Background())
	}
	sh := s.All()[0]
	if sh.Transform != geom.Identity() || sh.ID == "" || sh.Depth != 1 {
		t.Errorf("defaults not applied: %+v", sh)
	}
}

func TestDecodeKeepsExplicitDepths(t *testing.T) {
	doc := `{"version":"1.0","mode":"2d","background":[0,0,0],"shapes":[
		{"id":"low","kind":"point","mode":"2d","vertices":[[0,0]],"color":[0,0,0],"depth":-3},
		{"id":"high","kind":"point","mode":"2d","vertices":[[1,1]],"color":[0,0,0],"depth":7},
		{"id":"auto","kind":"point","mode":"2d","vertices":[[2,2]],"color":[0,0,0]}]}`
	s, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"low": -3, "high": 7, "auto": 8}
	for id, depth := range want {
		sh, err := s.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if sh.Depth != depth {
			t.Errorf("%s depth = %d, want %d", id, sh.Depth, depth)
		}
	}

	data, err := Encode(s, "depths.painter", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Equal(s) {
		t.Error("explicit depths did not survive a round trip")
	}
}

func TestCancelledSaveKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.painter")
	if _, err := Save(context.Background(), path, extremalScene(geom.Mode2D)); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Save(ctx, path, scene.New(geom.Mode3D)); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("cancelled save modified the previous file")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.painter"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want not exist", err)
	}
}
