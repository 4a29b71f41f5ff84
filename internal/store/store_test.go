package store

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
	"github.com/painterhq/painter/internal/typeid"
)

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	doc := typeid.NewDocumentID()
	other := typeid.NewDocumentID()

	if _, err := s.Latest(ctx, doc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest on empty doc: err = %v, want ErrNotFound", err)
	}

	for i, payload := range []string{"one", "two", "three"} {
		v, err := s.Put(ctx, doc, []byte(payload), []byte("png-"+payload))
		if err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
		if v != i+1 {
			t.Fatalf("Put %d: version = %d, want %d", i, v, i+1)
		}
	}
	if v, err := s.Put(ctx, other, []byte("x"), nil); err != nil || v != 1 {
		t.Fatalf("Put other doc: version = %d, err = %v, want 1", v, err)
	}

	latest, err := s.Latest(ctx, doc)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Version != 3 || string(latest.Document) != "three" || string(latest.Thumbnail) != "png-three" {
		t.Errorf("Latest = v%d %q %q", latest.Version, latest.Document, latest.Thumbnail)
	}
	if latest.DocID != doc || latest.ID == "" || latest.CreatedAt.IsZero() {
		t.Errorf("Latest metadata = %+v", latest)
	}

	got, err := s.Get(ctx, doc, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Document) != "two" {
		t.Errorf("Get(2).Document = %q", got.Document)
	}
	for _, v := range []int{0, 4, -1} {
		if _, err := s.Get(ctx, doc, v); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%d): err = %v, want ErrNotFound", v, err)
		}
	}

	list, err := s.List(ctx, doc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List len = %d, want 3", len(list))
	}
	for i, snap := range list {
		if snap.Version != 3-i {
			t.Errorf("List[%d].Version = %d, want %d", i, snap.Version, 3-i)
		}
		if snap.Document != nil || snap.Thumbnail != nil {
			t.Errorf("List[%d] carries payloads", i)
		}
	}

	empty, err := s.List(ctx, typeid.NewDocumentID())
	if err != nil || len(empty) != 0 {
		t.Errorf("List unknown doc = %v, %v", empty, err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "painter.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "painter.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := s.Put(ctx, "doc_a", []byte("first"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, err := s.Put(ctx, "doc_a", []byte("second"), nil)
	if err != nil || v != 2 {
		t.Fatalf("Put after reopen: version = %d, err = %v, want 2", v, err)
	}
}

func TestSQLiteConcurrentPut(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "painter.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	const writers = 8
	var wg sync.WaitGroup
	versions := make([]int, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Put(ctx, "doc_c", []byte("x"), nil)
			if err != nil {
				t.Errorf("Put: %v", err)
			}
			versions[i] = v
		}()
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, v := range versions {
		if seen[v] {
			t.Errorf("version %d assigned twice", v)
		}
		seen[v] = true
	}
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("PAINTER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAINTER_TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(context.Background(), url)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		driver  string
		url     string
		wantErr bool
	}{
		{driver: DriverNone},
		{driver: ""},
		{driver: DriverSQLite},
		{driver: DriverPostgres, wantErr: true},
		{driver: "mongo", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s, err := Open(ctx, tt.driver, filepath.Join(t.TempDir(), "p.db"), tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) err = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name  string
		scene *scene.Scene
	}{
		{name: "empty 2d", scene: scene.New(geom.Mode2D)},
		{name: "sample 2d", scene: document.NewSampleScene(geom.Mode2D)},
		{name: "sample 3d", scene: document.NewSampleScene(geom.Mode3D)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Thumbnail(tt.scene, 64)
			if err != nil {
				t.Fatalf("Thumbnail: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
				t.Errorf("bounds = %v, want 64x64", b)
			}
		})
	}

	if _, err := Thumbnail(scene.New(geom.Mode2D), 0); err == nil {
		t.Error("Thumbnail(size 0) succeeded")
	}
}

func TestFitCamera2D(t *testing.T) {
	s := scene.New(geom.Mode2D)
	sh := geom.NewShape(geom.KindPolygon, geom.Mode2D, geom.Black, 0,
		geom.V3(1000, 1000, 0), geom.V3(1100, 1000, 0), geom.V3(1100, 1200, 0), geom.V3(1000, 1200, 0))
	if _, err := s.Add(sh); err != nil {
		t.Fatal(err)
	}

	vp := camera.NewViewport(100, 100)
	cam := FitCamera(s, vp)
	for _, corner := range sh.Vertices {
		p, err := cam.WorldToScreen(vp, corner)
		if err != nil {
			t.Fatalf("WorldToScreen: %v", err)
		}
		if p[0] < 0 || p[0] > 100 || p[1] < 0 || p[1] > 100 {
			t.Errorf("corner %v maps to %v, outside viewport", corner, p)
		}
	}
}
