// Package document reads and writes .painter files.
//
// A file is a JSON object holding a version tag, the scene mode and
// background, and every shape of both modes in insertion order.
package document

import "github.com/painterhq/painter/internal/geom"

const (
	FormatVersion = "1.0"
	Extension     = ".painter"
)

// File is the on-disk layout. Fields are written in declaration order.
type File struct {
	Version     string        `json:"version"`
	SavedAt     string        `json:"saved_at"`
	ProjectName string        `json:"project_name"`
	Mode        geom.Mode     `json:"mode"`
	Background  [3]int        `json:"background"`
	Shapes      []ShapeRecord `json:"shapes"`
}

// ShapeRecord is one shape. 2D vertices are stored as [x, y] pairs and 3D
// vertices as [x, y, z]. Transform is the 4x4 local transform in
// column-major order.
type ShapeRecord struct {
	ID        string      `json:"id"`
	Kind      geom.Kind   `json:"kind"`
	Mode      geom.Mode   `json:"mode"`
	Vertices  [][]float64 `json:"vertices"`
	Indices   []uint32    `json:"indices,omitempty"`
	Color     [3]int      `json:"color"`
	Width     float64     `json:"width"`
	Transform [16]float64 `json:"transform"`
	Depth     int         `json:"depth"`
}

// rawFile mirrors File with pointers so that missing fields can be told
// apart from zero values.
type rawFile struct {
	Version     *string           `json:"version"`
	SavedAt     string            `json:"saved_at"`
	ProjectName string            `json:"project_name"`
	Mode        *geom.Mode        `json:"mode"`
	Background  *[]int            `json:"background"`
	Shapes      *[]rawShapeRecord `json:"shapes"`
}

type rawShapeRecord struct {
	ID        string       `json:"id"`
	Kind      *geom.Kind   `json:"kind"`
	Mode      *geom.Mode   `json:"mode"`
	Vertices  *[][]float64 `json:"vertices"`
	Indices   []uint32     `json:"indices"`
	Color     *[]int       `json:"color"`
	Width     float64      `json:"width"`
	Transform *[]float64   `json:"transform"`
	Depth     *int         `json:"depth"`
}
