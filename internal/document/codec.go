package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
)

// Encode serializes every shape of s, both modes included.
func Encode(s *scene.Scene, projectName string, savedAt time.Time) ([]byte, error) {
	f := File{
		Version:     FormatVersion,
		SavedAt:     savedAt.UTC().Format(time.RFC3339),
		ProjectName: projectName,
		Mode:        s.Mode(),
		Background:  colorRecord(s.Background()),
		Shapes:      []ShapeRecord{},
	}
	for _, sh := range s.All() {
		f.Shapes = append(f.Shapes, shapeRecord(sh))
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode painter document: %w", err)
	}
	return data, nil
}

func shapeRecord(sh geom.Shape) ShapeRecord {
	rec := ShapeRecord{
		ID:        sh.ID,
		Kind:      sh.Kind,
		Mode:      sh.Mode,
		Vertices:  make([][]float64, len(sh.Vertices)),
		Indices:   sh.Indices,
		Color:     colorRecord(sh.Color),
		Width:     sh.Width,
		Transform: [16]float64(sh.Transform),
		Depth:     sh.Depth,
	}
	for i, v := range sh.Vertices {
		if sh.Mode == geom.Mode2D {
			rec.Vertices[i] = []float64{v[0], v[1]}
		} else {
			rec.Vertices[i] = []float64{v[0], v[1], v[2]}
		}
	}
	return rec
}

func colorRecord(c geom.Color) [3]int {
	return [3]int{int(c.R), int(c.G), int(c.B)}
}

// Decode parses a document into a new scene. It fails with a VersionError
// when the version tag is not readable and a FormatError when the structure
// is invalid. Minor versions of the current major version are accepted.
func Decode(data []byte) (*scene.Scene, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}
	if raw.Version == nil {
		return nil, &FormatError{Field: "version", Reason: "missing"}
	}
	if !supportedVersion(*raw.Version) {
		return nil, &VersionError{Version: *raw.Version}
	}
	if raw.Mode == nil {
		return nil, &FormatError{Field: "mode", Reason: "missing"}
	}
	if !raw.Mode.Valid() {
		return nil, &FormatError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", *raw.Mode)}
	}
	if raw.Background == nil {
		return nil, &FormatError{Field: "background", Reason: "missing"}
	}
	bg, err := decodeColor(*raw.Background)
	if err != nil {
		return nil, &FormatError{Field: "background", Reason: err.Error()}
	}
	if raw.Shapes == nil {
		return nil, &FormatError{Field: "shapes", Reason: "missing"}
	}

	s := scene.New(*raw.Mode)
	s.SetBackground(bg)
	for i, rec := range *raw.Shapes {
		field := fmt.Sprintf("shapes[%d]", i)
		sh, err := decodeShape(rec, field)
		if err != nil {
			return nil, err
		}
		if _, err := s.Add(sh); err != nil {
			return nil, &FormatError{Field: field, Reason: err.Error()}
		}
	}
	return s, nil
}

func supportedVersion(v string) bool {
	major, _, _ := strings.Cut(FormatVersion, ".")
	got, _, ok := strings.Cut(v, ".")
	return ok && got == major
}

func decodeShape(rec rawShapeRecord, field string) (geom.Shape, error) {
	if rec.Kind == nil {
		return geom.Shape{}, &FormatError{Field: field + ".kind", Reason: "missing"}
	}
	if rec.Mode == nil {
		return geom.Shape{}, &FormatError{Field: field + ".mode", Reason: "missing"}
	}
	if rec.Vertices == nil {
		return geom.Shape{}, &FormatError{Field: field + ".vertices", Reason: "missing"}
	}
	if rec.Color == nil {
		return geom.Shape{}, &FormatError{Field: field + ".color", Reason: "missing"}
	}

	sh := geom.Shape{
		ID:        rec.ID,
		Kind:      *rec.Kind,
		Mode:      *rec.Mode,
		Indices:   rec.Indices,
		Width:     rec.Width,
		Transform: geom.Identity(),
	}
	// An omitted depth is assigned on load. Zero is that unassigned value
	// and never written, so an explicit zero cannot round-trip.
	if rec.Depth != nil {
		if *rec.Depth == 0 {
			return geom.Shape{}, &FormatError{Field: field + ".depth", Reason: "zero is reserved for an unassigned depth"}
		}
		sh.Depth = *rec.Depth
	}
	c, err := decodeColor(*rec.Color)
	if err != nil {
		return geom.Shape{}, &FormatError{Field: field + ".color", Reason: err.Error()}
	}
	sh.Color = c

	for j, v := range *rec.Vertices {
		switch {
		case len(v) == 2:
			sh.Vertices = append(sh.Vertices, geom.V3(v[0], v[1], 0))
		case len(v) == 3:
			sh.Vertices = append(sh.Vertices, geom.V3(v[0], v[1], v[2]))
		default:
			return geom.Shape{}, &FormatError{
				Field:  fmt.Sprintf("%s.vertices[%d]", field, j),
				Reason: fmt.Sprintf("want 2 or 3 coordinates, got %d", len(v)),
			}
		}
	}

	if rec.Transform != nil {
		if len(*rec.Transform) != 16 {
			return geom.Shape{}, &FormatError{
				Field:  field + ".transform",
				Reason: fmt.Sprintf("want 16 entries, got %d", len(*rec.Transform)),
			}
		}
		copy(sh.Transform[:], *rec.Transform)
	}

	if err := sh.Validate(); err != nil {
		return geom.Shape{}, &FormatError{Field: field, Reason: err.Error()}
	}
	return sh, nil
}

func decodeColor(ch []int) (geom.Color, error) {
	if len(ch) != 3 {
		return geom.Color{}, fmt.Errorf("want 3 channels, got %d", len(ch))
	}
	return geom.RGBInt(ch[0], ch[1], ch[2])
}
