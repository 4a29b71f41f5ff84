// Package geom is the geometry kernel: shape primitives, colours, bounding
// boxes, hit-testing and matrix transforms for both planar (2D) and spatial
// (3D) drawing.
//
// All matrices follow the OpenGL convention used by mathgl: column vectors,
// column-major storage, and composition right to left. Compose(B, A) applies
// A first and then B. Angles are radians internally. Only the *Degrees
// helpers accept degrees.
package geom
