//go:build gl

// Package glrender is the OpenGL 4.1 core render backend.
//
// A Context wraps one compiled shader program and its buffers. It must be
// used on the thread that owns the GL context.
package glrender

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
)

type Context struct {
	program  uint32
	mvpLoc   int32
	colorLoc int32
	sizeLoc  int32
	vao      uint32
	vbo      uint32
	ebo      uint32

	state render.FrameState
	vp    geom.Mat4
}

// New prepares a context around an already linked program.
func New(program uint32) (*Context, error) {
	c := &Context{program: program}
	c.mvpLoc = gl.GetUniformLocation(program, gl.Str("mvp\x00"))
	c.colorLoc = gl.GetUniformLocation(program, gl.Str("color\x00"))
	c.sizeLoc = gl.GetUniformLocation(program, gl.Str("pointSize\x00"))
	if c.mvpLoc < 0 || c.colorLoc < 0 {
		return nil, fmt.Errorf("glrender: program lacks the mvp or color uniform")
	}
	attrib := gl.GetAttribLocation(program, gl.Str("vp\x00"))
	if attrib < 0 {
		return nil, fmt.Errorf("glrender: program lacks the vp attribute")
	}

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.GenBuffers(1, &c.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)

	gl.EnableVertexAttribArray(uint32(attrib))
	gl.VertexAttribPointer(uint32(attrib), 3, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return c, nil
}

func (c *Context) Begin(st render.FrameState) error {
	vp := st.Viewport
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	r, g, b := st.Background.Float()
	gl.ClearColor(float32(r), float32(g), float32(b), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if st.Mode == geom.Mode3D {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	c.state = st
	c.vp = st.Projection.Mul4(st.View)
	gl.UseProgram(c.program)
	gl.BindVertexArray(c.vao)
	return nil
}

func (c *Context) Draw(call render.DrawCall) error {
	if len(call.Vertices) == 0 {
		return nil
	}
	verts := make([]float32, 0, len(call.Vertices)*3)
	for _, v := range call.Vertices {
		verts = append(verts, float32(v[0]), float32(v[1]), float32(v[2]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)

	mvp := toMat32(c.vp.Mul4(call.Model))
	gl.UniformMatrix4fv(c.mvpLoc, 1, false, &mvp[0])
	r, g, b := call.Color.Float()
	gl.Uniform3f(c.colorLoc, float32(r), float32(g), float32(b))
	width := float32(c.state.LineWidth(call.Width))
	gl.Uniform1f(c.sizeLoc, width)
	gl.LineWidth(width)

	n := int32(len(call.Vertices))
	switch call.Primitive {
	case render.Points:
		gl.DrawArrays(gl.POINTS, 0, n)
	case render.LineStrip:
		gl.DrawArrays(gl.LINE_STRIP, 0, n)
	case render.Polygon:
		c.drawElements(call.Indices)
		gl.DrawArrays(gl.LINE_LOOP, 0, n)
	case render.Triangles:
		if len(call.Indices) == 0 {
			gl.DrawArrays(gl.TRIANGLES, 0, n)
		} else {
			c.drawElements(call.Indices)
		}
	default:
		return fmt.Errorf("glrender: unsupported primitive %q", call.Primitive)
	}
	return glError("draw")
}

func (c *Context) drawElements(indices []uint32) {
	if len(indices) == 0 {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (c *Context) End() error {
	gl.BindVertexArray(0)
	return glError("end frame")
}

// Delete releases the buffers. The program belongs to the caller.
func (c *Context) Delete() {
	gl.DeleteBuffers(1, &c.vbo)
	gl.DeleteBuffers(1, &c.ebo)
	gl.DeleteVertexArrays(1, &c.vao)
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glrender: %s: gl error 0x%x", op, code)
	}
	return nil
}

func toMat32(m geom.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, f := range m {
		out[i] = float32(f)
	}
	return out
}
