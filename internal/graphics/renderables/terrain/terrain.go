// Package terrain renders the section meshes produced by the meshing
// workers: an opaque pass over every stored section and a translucent
// water pass that runs later in the frame, after the occlusion pass has
// captured the opaque depth buffer.
package terrain

import (
	"path/filepath"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.3-core/gl"

	"voxview/internal/config"
	"voxview/internal/graphics"
	renderer "voxview/internal/graphics/renderer"
	"voxview/internal/mesher"
	"voxview/internal/profiling"
	"voxview/internal/registry"
	"voxview/internal/world"
)

// Terrain implements the opaque terrain pass. It also owns the shared
// pieces the water pass reuses: the mesh store, the shader and the block
// texture atlas.
type Terrain struct {
	mesher *mesher.Mesher
	reg    *registry.Registry
	store  *Store

	shader   *graphics.Shader
	atlasTex uint32

	lastChunkX  int
	lastChunkZ  int
	lastRadius  int
	lastUploads int
}

// NewTerrain creates the renderable. Results polled from m are uploaded
// during Render under the configured per-frame budget.
func NewTerrain(m *mesher.Mesher, reg *registry.Registry) *Terrain {
	return &Terrain{
		mesher:     m,
		reg:        reg,
		store:      NewStore(),
		lastChunkX: 1<<31 - 1, // sentinel so first run triggers
		lastChunkZ: 1<<31 - 1,
	}
}

// Store exposes the section mesh store to the water pass.
func (t *Terrain) Store() *Store { return t.store }

func (t *Terrain) Init() error {
	var err error
	t.shader, err = graphics.NewShader(
		filepath.Join(graphics.ShadersDir, "terrain.vert"),
		filepath.Join(graphics.ShadersDir, "terrain.frag"),
	)
	if err != nil {
		return err
	}
	t.shader.Use()
	t.shader.SetInt("atlas", 0)

	img := graphics.BuildAtlasImage(t.reg)
	t.atlasTex = graphics.NewTextureRGBA(img)
	return nil
}

func (t *Terrain) Render(ctx renderer.RenderContext) {
	defer profiling.Track("render.terrain")()

	t.drainResults()
	t.pruneIfMoved(ctx)
	t.drawOpaque(ctx)
}

// drainResults uploads finished meshes, at most the configured budget per
// frame so a burst of results cannot stall rendering.
func (t *Terrain) drainResults() {
	defer profiling.Track("render.terrain.upload")()

	budget := config.GetUploadBudget()
	n := 0
	for n < budget {
		r, ok := t.mesher.Poll()
		if !ok {
			break
		}
		t.store.Apply(r)
		n++
	}
	t.lastUploads = n
}

// pruneIfMoved retires far meshes when the camera enters a new chunk or
// the eviction radius shrinks.
func (t *Terrain) pruneIfMoved(ctx renderer.RenderContext) {
	pos := ctx.Camera.Position
	cp := world.ChunkPosAt(int(math32.Floor(pos.X())), int(math32.Floor(pos.Z())))
	radius := config.GetChunkEvictRadius()
	if cp.X == t.lastChunkX && cp.Z == t.lastChunkZ && radius == t.lastRadius {
		return
	}
	t.lastChunkX, t.lastChunkZ = cp.X, cp.Z
	t.lastRadius = radius
	t.store.PruneOutside(cp.X, cp.Z, radius)
}

func (t *Terrain) drawOpaque(ctx renderer.RenderContext) {
	defer profiling.Track("render.terrain.opaque")()

	t.shader.Use()
	t.shader.SetMatrix4("proj", &ctx.Proj[0])
	t.shader.SetMatrix4("view", &ctx.View[0])
	t.shader.SetFloat("alpha", 1.0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.atlasTex)

	for _, m := range t.store.meshes {
		if m.indexCount == 0 {
			continue
		}
		x, y, z := m.pos.MinBlock()
		minx, miny, minz := float32(x), float32(y), float32(z)
		if !ctx.Frustum.IntersectsBox(minx, miny, minz,
			minx+world.SectionSize, miny+world.SectionSize, minz+world.SectionSize) {
			continue
		}
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
}

func (t *Terrain) Dispose() {
	t.store.Dispose()
	if t.atlasTex != 0 {
		gl.DeleteTextures(1, &t.atlasTex)
	}
	if t.shader != nil {
		t.shader.Delete()
	}
}

func (t *Terrain) SetViewport(width, height int) {}

// SectionCount returns how many section meshes are resident on the GPU.
func (t *Terrain) SectionCount() int { return t.store.Len() }

// LastUploads returns how many meshes were uploaded during the most
// recent frame.
func (t *Terrain) LastUploads() int { return t.lastUploads }
