// Package boxes draws a wireframe cube around every section the latest
// occlusion readback marked visible. Debug aid, off unless debug boxes
// are enabled in the config.
package boxes

import (
	"path/filepath"

	"github.com/go-gl/gl/v4.3-core/gl"

	"voxview/internal/config"
	"voxview/internal/graphics"
	renderer "voxview/internal/graphics/renderer"
	"voxview/internal/profiling"
	"voxview/internal/vis"
	"voxview/internal/world"
)

// boxInset pulls edges inward so they do not z-fight section faces that
// lie exactly on cell boundaries.
const boxInset = 0.05

type Boxes struct {
	latest func() *vis.Snapshot

	shader *graphics.Shader
	vao    uint32
	vbo    uint32

	// verts is scratch reused across frames: world-space line segments.
	verts []float32
}

// NewBoxes creates the renderable. latest supplies the most recent
// visibility snapshot, or nil before the first readback completes.
func NewBoxes(latest func() *vis.Snapshot) *Boxes {
	return &Boxes{latest: latest}
}

func (b *Boxes) Init() error {
	var err error
	b.shader, err = graphics.NewShader(
		filepath.Join(graphics.ShadersDir, "boxes.vert"),
		filepath.Join(graphics.ShadersDir, "boxes.frag"),
	)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return nil
}

func (b *Boxes) Render(ctx renderer.RenderContext) {
	if !config.Get().Debug.Boxes {
		return
	}
	snap := b.latest()
	if snap == nil {
		return
	}
	defer profiling.Track("render.boxes")()

	b.buildVerts(snap)
	if len(b.verts) == 0 {
		return
	}

	b.shader.Use()
	b.shader.SetMatrix4("proj", &ctx.Proj[0])
	b.shader.SetMatrix4("view", &ctx.View[0])
	b.shader.SetVector3("color", 1.0, 0.85, 0.1)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	// Orphan then refill to avoid stalling on a buffer still in flight
	size := len(b.verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(b.verts))

	gl.LineWidth(1.0)
	gl.DrawArrays(gl.LINES, 0, int32(len(b.verts)/3))
	gl.BindVertexArray(0)
}

// buildVerts regenerates the line list from the snapshot's visible cells.
func (b *Boxes) buildVerts(snap *vis.Snapshot) {
	b.verts = b.verts[:0]
	side := snap.Side()
	baseY := snap.MinY / world.SectionSize
	for i, depth := range snap.Data {
		if depth == 0 {
			continue
		}
		dy := i / (side * side)
		rem := i - dy*side*side
		dz := rem/side - snap.Radius
		dx := rem%side - snap.Radius
		x0 := float32((snap.CX+dx)*world.SectionSize) + boxInset
		y0 := float32((baseY+dy)*world.SectionSize) + boxInset
		z0 := float32((snap.CZ+dz)*world.SectionSize) + boxInset
		x1 := x0 + world.SectionSize - 2*boxInset
		y1 := y0 + world.SectionSize - 2*boxInset
		z1 := z0 + world.SectionSize - 2*boxInset
		b.appendBox(x0, y0, z0, x1, y1, z1)
	}
}

// appendBox emits the 12 edges of a box as line segments.
func (b *Boxes) appendBox(x0, y0, z0, x1, y1, z1 float32) {
	b.verts = append(b.verts,
		// Bottom rectangle
		x0, y0, z0, x1, y0, z0,
		x1, y0, z0, x1, y0, z1,
		x1, y0, z1, x0, y0, z1,
		x0, y0, z1, x0, y0, z0,

		// Top rectangle
		x0, y1, z0, x1, y1, z0,
		x1, y1, z0, x1, y1, z1,
		x1, y1, z1, x0, y1, z1,
		x0, y1, z1, x0, y1, z0,

		// Vertical edges
		x0, y0, z0, x0, y1, z0,
		x1, y0, z0, x1, y1, z0,
		x1, y0, z1, x1, y1, z1,
		x0, y0, z1, x0, y1, z1,
	)
}

func (b *Boxes) Dispose() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
}

func (b *Boxes) SetViewport(width, height int) {}
