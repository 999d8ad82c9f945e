// Package occlusion runs the GPU visibility pass: it snapshots the depth
// buffer after opaque terrain has drawn, reduces it into a min-depth Hi-Z
// pyramid, tests every cell of the visibility grid in a compute dispatch
// and reads the result back asynchronously. Finished snapshots are handed
// to the meshing scheduler without ever blocking the render thread.
//
// The compute kernels in assets/shaders/occlusion mirror the reference
// implementation in internal/vis texel for texel; the vis package is what
// the tests exercise.
package occlusion

import (
	"path/filepath"
	"time"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.3-core/gl"

	"voxview/internal/config"
	"voxview/internal/graphics"
	renderer "voxview/internal/graphics/renderer"
	"voxview/internal/logging"
	"voxview/internal/profiling"
	"voxview/internal/vis"
	"voxview/internal/world"
)

// ringSize is how many readbacks may be in flight at once. Three covers
// the usual two frames of driver latency with one spare.
const ringSize = 3

type slotMeta struct {
	radius int
	height int
	cx, cz int
	minY   int
	cells  int
}

type readbackSlot struct {
	buf    uint32
	fence  uintptr
	inUse  bool
	meta   slotMeta
	issued time.Time
}

// Stats reports the state of the visibility pass for the debug overlay.
type Stats struct {
	VisibleCells int
	TotalCells   int
	Latency      time.Duration
	Applied      uint64
	Stale        uint64
}

// Pass implements the renderer.Renderable lifecycle so it can sit in the
// render list between the opaque and translucent passes, where the depth
// buffer holds exactly the opaque scene.
type Pass struct {
	apply func(*vis.Snapshot) bool

	copyShader   *graphics.Shader
	reduceShader *graphics.Shader
	cullShader   *graphics.Shader

	width, height int
	depthCopy     uint32
	hiz           uint32
	hizLevels     int

	gridRadius int
	gridHeight int
	ssbo       uint32
	ring       [ringSize]readbackSlot
	pending    []int
	nextSlot   int

	latest *vis.Snapshot
	stats  Stats
}

// New creates the pass. apply receives each finished snapshot on the
// render thread; it returns false when the snapshot was rejected as stale.
func New(apply func(*vis.Snapshot) bool, width, height int) *Pass {
	return &Pass{
		apply:   apply,
		width:   width,
		height:  height,
		pending: make([]int, 0, ringSize),
	}
}

func (p *Pass) Init() error {
	dir := filepath.Join(graphics.ShadersDir, "occlusion")

	var err error
	if p.copyShader, err = graphics.NewComputeShader(filepath.Join(dir, "hiz_copy.comp")); err != nil {
		return err
	}
	if p.reduceShader, err = graphics.NewComputeShader(filepath.Join(dir, "hiz_reduce.comp")); err != nil {
		return err
	}
	if p.cullShader, err = graphics.NewComputeShader(filepath.Join(dir, "cull.comp")); err != nil {
		return err
	}

	p.createTargets()
	return nil
}

// createTargets allocates the screen-sized textures: the depth snapshot
// and the R32F pyramid with its full mip chain.
func (p *Pass) createTargets() {
	p.releaseTargets()

	gl.GenTextures(1, &p.depthCopy)
	gl.BindTexture(gl.TEXTURE_2D, p.depthCopy)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(p.width), int32(p.height),
		0, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	p.hizLevels = vis.MipCount(p.width, p.height)
	gl.GenTextures(1, &p.hiz)
	gl.BindTexture(gl.TEXTURE_2D, p.hiz)
	gl.TexStorage2D(gl.TEXTURE_2D, int32(p.hizLevels), gl.R32F, int32(p.width), int32(p.height))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST_MIPMAP_NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(p.hizLevels-1))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *Pass) releaseTargets() {
	if p.depthCopy != 0 {
		gl.DeleteTextures(1, &p.depthCopy)
		p.depthCopy = 0
	}
	if p.hiz != 0 {
		gl.DeleteTextures(1, &p.hiz)
		p.hiz = 0
	}
}

// ensureGrid sizes the cull output buffer and the readback ring for the
// given grid. Changing the grid drops every in-flight readback; their
// results would be rejected as stale anyway.
func (p *Pass) ensureGrid(radius, height int) {
	if radius == p.gridRadius && height == p.gridHeight && p.ssbo != 0 {
		return
	}

	p.releaseGrid()
	p.gridRadius = radius
	p.gridHeight = height

	side := 2*radius + 1
	cells := side * side * height
	size := cells * 4

	gl.GenBuffers(1, &p.ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, p.ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_COPY)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	for i := range p.ring {
		gl.GenBuffers(1, &p.ring[i].buf)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, p.ring[i].buf)
		gl.BufferData(gl.COPY_WRITE_BUFFER, size, nil, gl.STREAM_READ)
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	logging.Debug("visibility grid sized", "radius", radius, "height", height, "cells", cells)
}

func (p *Pass) releaseGrid() {
	if p.ssbo != 0 {
		gl.DeleteBuffers(1, &p.ssbo)
		p.ssbo = 0
	}
	for i := range p.ring {
		if p.ring[i].fence != 0 {
			gl.DeleteSync(p.ring[i].fence)
		}
		if p.ring[i].buf != 0 {
			gl.DeleteBuffers(1, &p.ring[i].buf)
		}
		p.ring[i] = readbackSlot{}
	}
	p.pending = p.pending[:0]
	p.nextSlot = 0
}

// Render runs the whole visibility pass for this frame: poll finished
// readbacks, snapshot the opaque depth, rebuild the pyramid, dispatch the
// cull and queue a new readback.
func (p *Pass) Render(ctx renderer.RenderContext) {
	defer profiling.Track("occlusion.pass")()

	radius := config.GetRenderDistance()
	height := ctx.World.SectionCount()
	p.ensureGrid(radius, height)

	p.pollReadbacks()
	p.copyDepth()
	p.buildPyramid()
	p.dispatchCull(ctx)
	p.queueReadback(ctx)
}

// copyDepth snapshots the current depth buffer. Reading it into a second
// texture keeps the compute passes off the live depth attachment.
func (p *Pass) copyDepth() {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, p.depthCopy)
	gl.CopyTexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, 0, 0, int32(p.width), int32(p.height))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *Pass) buildPyramid() {
	// Level 0: depth texture into the R32F pyramid
	p.copyShader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.depthCopy)
	gl.BindImageTexture(0, p.hiz, 0, false, 0, gl.WRITE_ONLY, gl.R32F)
	gl.DispatchCompute(groups(p.width, 8), groups(p.height, 8), 1)
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT)

	// Min-reduce level by level
	p.reduceShader.Use()
	for level := 1; level < p.hizLevels; level++ {
		lw := mipDim(p.width, level)
		lh := mipDim(p.height, level)
		gl.BindImageTexture(0, p.hiz, int32(level-1), false, 0, gl.READ_ONLY, gl.R32F)
		gl.BindImageTexture(1, p.hiz, int32(level), false, 0, gl.WRITE_ONLY, gl.R32F)
		gl.DispatchCompute(groups(lw, 8), groups(lh, 8), 1)
		gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT)
	}

	// The cull pass samples the pyramid through a sampler
	gl.MemoryBarrier(gl.TEXTURE_FETCH_BARRIER_BIT)
}

func (p *Pass) dispatchCull(ctx renderer.RenderContext) {
	side := 2*p.gridRadius + 1
	cells := side * side * p.gridHeight
	cx, cz := cameraChunk(ctx)

	viewProj := ctx.Proj.Mul4(ctx.View)

	p.cullShader.Use()
	p.cullShader.SetMatrix4("viewProj", &viewProj[0])
	p.cullShader.SetInt("radius", int32(p.gridRadius))
	p.cullShader.SetInt("gridHeight", int32(p.gridHeight))
	p.cullShader.SetInt("centerX", int32(cx))
	p.cullShader.SetInt("centerZ", int32(cz))
	p.cullShader.SetInt("minY", int32(ctx.World.MinY()))
	p.cullShader.SetInt("cellCount", int32(cells))
	p.cullShader.SetInt("maxLevel", int32(p.hizLevels-1))
	p.cullShader.SetVector2("viewport", float32(p.width), float32(p.height))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.hiz)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, p.ssbo)
	gl.DispatchCompute(groups(cells, 64), 1, 1)
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
}

// queueReadback copies the cull output into a free ring slot and fences
// it. When every slot is still in flight the frame simply skips; the GPU
// is behind and stacking more copies would not help.
func (p *Pass) queueReadback(ctx renderer.RenderContext) {
	slot := &p.ring[p.nextSlot]
	if slot.inUse {
		return
	}

	side := 2*p.gridRadius + 1
	cells := side * side * p.gridHeight
	cx, cz := cameraChunk(ctx)

	gl.BindBuffer(gl.COPY_READ_BUFFER, p.ssbo)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, slot.buf)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, cells*4)
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	slot.fence = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	slot.inUse = true
	slot.issued = time.Now()
	slot.meta = slotMeta{
		radius: p.gridRadius,
		height: p.gridHeight,
		cx:     cx,
		cz:     cz,
		minY:   ctx.World.MinY(),
		cells:  cells,
	}

	p.pending = append(p.pending, p.nextSlot)
	p.nextSlot = (p.nextSlot + 1) % ringSize
}

// pollReadbacks applies every finished readback in submission order. The
// wait uses a zero timeout so an unfinished transfer never stalls the
// frame.
func (p *Pass) pollReadbacks() {
	for len(p.pending) > 0 {
		slot := &p.ring[p.pending[0]]
		status := gl.ClientWaitSync(slot.fence, 0, 0)
		if status != gl.ALREADY_SIGNALED && status != gl.CONDITION_SATISFIED {
			return
		}

		p.applySlot(slot)
		gl.DeleteSync(slot.fence)
		slot.fence = 0
		slot.inUse = false
		p.pending = p.pending[1:]
	}
}

func (p *Pass) applySlot(slot *readbackSlot) {
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, slot.buf)
	ptr := gl.MapBufferRange(gl.COPY_WRITE_BUFFER, 0, slot.meta.cells*4, gl.MAP_READ_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
		logging.Warn("visibility readback map failed")
		return
	}

	snap := vis.NewSnapshot(slot.meta.radius, slot.meta.height, slot.meta.cx, slot.meta.cz, slot.meta.minY)
	data := unsafe.Slice((*float32)(ptr), slot.meta.cells)
	copy(snap.Data, data)
	gl.UnmapBuffer(gl.COPY_WRITE_BUFFER)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	visible := 0
	for _, d := range snap.Data {
		if d > 0 {
			visible++
		}
	}

	p.latest = snap
	p.stats.VisibleCells = visible
	p.stats.TotalCells = slot.meta.cells
	p.stats.Latency = time.Since(slot.issued)
	if p.apply(snap) {
		p.stats.Applied++
	} else {
		p.stats.Stale++
	}
}

func (p *Pass) Dispose() {
	p.releaseGrid()
	p.releaseTargets()
	if p.cullShader != nil {
		p.cullShader.Delete()
	}
	if p.reduceShader != nil {
		p.reduceShader.Delete()
	}
	if p.copyShader != nil {
		p.copyShader.Delete()
	}
}

// SetViewport rebuilds the screen-sized targets. In-flight readbacks stay
// valid; their grids were captured at submission time.
func (p *Pass) SetViewport(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width = width
	p.height = height
	p.createTargets()
}

// Latest returns the most recent snapshot read back from the GPU, or nil
// before the first one completes.
func (p *Pass) Latest() *vis.Snapshot { return p.latest }

// CurrentStats returns overlay counters for the pass.
func (p *Pass) CurrentStats() Stats { return p.stats }

func cameraChunk(ctx renderer.RenderContext) (int, int) {
	pos := ctx.Camera.Position
	cp := world.ChunkPosAt(int(math32.Floor(pos.X())), int(math32.Floor(pos.Z())))
	return cp.X, cp.Z
}

func groups(n, local int) uint32 {
	return uint32((n + local - 1) / local)
}

func mipDim(d, level int) int {
	d >>= level
	if d < 1 {
		return 1
	}
	return d
}
