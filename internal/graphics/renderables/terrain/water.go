package terrain

import (
	"sort"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxview/internal/graphics/renderer"
	"voxview/internal/profiling"
	"voxview/internal/world"
)

// waterAlpha is the blend factor for the translucent water pass.
const waterAlpha = 0.72

// Water draws the translucent water geometry collected by the meshing
// workers. It shares the terrain's store, shader and atlas, and must be
// placed after the occlusion pass so the depth snapshot only contains
// opaque geometry.
type Water struct {
	terrain *Terrain

	// scratch reused across frames to avoid per-frame allocation.
	visible []*sectionMesh
}

func NewWater(t *Terrain) *Water {
	return &Water{terrain: t}
}

func (w *Water) Init() error { return nil }

func (w *Water) Render(ctx renderer.RenderContext) {
	defer profiling.Track("render.water")()

	w.visible = w.visible[:0]
	for _, m := range w.terrain.store.meshes {
		if m.waterIndexCount == 0 {
			continue
		}
		x, y, z := m.pos.MinBlock()
		minx, miny, minz := float32(x), float32(y), float32(z)
		if !ctx.Frustum.IntersectsBox(minx, miny, minz,
			minx+world.SectionSize, miny+world.SectionSize, minz+world.SectionSize) {
			continue
		}
		w.visible = append(w.visible, m)
	}
	if len(w.visible) == 0 {
		return
	}

	// Far to near so overlapping water surfaces blend correctly.
	eye := ctx.Camera.Position
	sort.Slice(w.visible, func(i, j int) bool {
		return sectionDistSq(w.visible[i].pos, eye) > sectionDistSq(w.visible[j].pos, eye)
	})

	sh := w.terrain.shader
	sh.Use()
	sh.SetMatrix4("proj", &ctx.Proj[0])
	sh.SetMatrix4("view", &ctx.View[0])
	sh.SetFloat("alpha", waterAlpha)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.terrain.atlasTex)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	for _, m := range w.visible {
		gl.BindVertexArray(m.waterVAO)
		gl.DrawElements(gl.TRIANGLES, m.waterIndexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}

	gl.BindVertexArray(0)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

// sectionDistSq is the squared distance from the eye to the section center.
func sectionDistSq(p world.SectionPos, eye mgl32.Vec3) float32 {
	x, y, z := p.MinBlock()
	half := float32(world.SectionSize) / 2
	dx := float32(x) + half - eye.X()
	dy := float32(y) + half - eye.Y()
	dz := float32(z) + half - eye.Z()
	return dx*dx + dy*dy + dz*dz
}

// Dispose is a no-op; the shared GL objects belong to the terrain pass.
func (w *Water) Dispose() {}

func (w *Water) SetViewport(width, height int) {}
