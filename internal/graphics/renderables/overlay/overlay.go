// Package overlay draws the on-screen stats readout: frame timing plus
// streaming, mesher and visibility counters. Toggled at runtime through
// the debug overlay setting.
package overlay

import (
	"fmt"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxview/internal/config"
	"voxview/internal/graphics"
	"voxview/internal/graphics/occlusion"
	"voxview/internal/graphics/renderables/terrain"
	renderer "voxview/internal/graphics/renderer"
	"voxview/internal/mesher"
	"voxview/internal/profiling"
	"voxview/internal/world"
)

type Overlay struct {
	mesher  *mesher.Mesher
	terrain *terrain.Terrain
	pass    *occlusion.Pass

	width  int
	height int

	fontRenderer *graphics.FontRenderer

	// FPS tracking
	frames       int
	lastFPSCheck time.Time
	currentFPS   int

	lines []string // scratch rebuilt each frame
}

// NewOverlay creates the renderable. The mesher, terrain and occlusion
// handles feed the counters.
func NewOverlay(width, height int, m *mesher.Mesher, t *terrain.Terrain, p *occlusion.Pass) *Overlay {
	return &Overlay{width: width, height: height, mesher: m, terrain: t, pass: p}
}

func (o *Overlay) Init() error {
	atlas, err := graphics.BuildFontAtlas()
	if err != nil {
		return err
	}
	o.fontRenderer, err = graphics.NewFontRenderer(atlas, o.width, o.height)
	return err
}

func (o *Overlay) Render(ctx renderer.RenderContext) {
	// FPS keeps counting even while the overlay is hidden, so toggling it
	// on shows a settled value.
	o.frames++
	if time.Since(o.lastFPSCheck) >= time.Second {
		o.currentFPS = o.frames
		o.lastFPSCheck = time.Now()
		o.frames = 0
	}

	if !config.Get().Debug.Overlay {
		return
	}
	defer profiling.Track("render.overlay")()

	o.buildLines(ctx)
	o.fontRenderer.RenderLines(o.lines, 10, 20, 22, 1.5, mgl32.Vec3{1.0, 1.0, 1.0})
}

func (o *Overlay) buildLines(ctx renderer.RenderContext) {
	o.lines = o.lines[:0]

	pos := ctx.Camera.Position
	cp := world.ChunkPosAt(int(math32.Floor(pos.X())), int(math32.Floor(pos.Z())))
	o.lines = append(o.lines,
		fmt.Sprintf("FPS: %d | frame: %.2f ms", o.currentFPS, ctx.DT*1000),
		fmt.Sprintf("Pos: %.1f %.1f %.1f | chunk: %d %d", pos.X(), pos.Y(), pos.Z(), cp.X, cp.Z),
	)

	if ctx.World != nil {
		o.lines = append(o.lines, fmt.Sprintf("Chunks: %d loaded, %d pending",
			ctx.World.ChunkCount(), ctx.World.PendingChunks()))
	}

	ms := o.mesher.Stats()
	o.lines = append(o.lines,
		fmt.Sprintf("Mesher: %d workers | dirty: %d, queued: %d", ms.Workers, ms.Dirty, ms.Queued),
		fmt.Sprintf("Meshed: %d | dropped: %d, stale: %d | avg %.2f ms",
			ms.Meshed, ms.Dropped, ms.Discarded, float64(ms.AverageMesh.Microseconds())/1000.0),
		fmt.Sprintf("Sections on GPU: %d | uploads: %d", o.terrain.SectionCount(), o.terrain.LastUploads()),
	)

	vs := o.pass.CurrentStats()
	o.lines = append(o.lines, fmt.Sprintf("Visible: %d / %d cells | readback: %.1f ms | applied: %d, stale: %d",
		vs.VisibleCells, vs.TotalCells, float64(vs.Latency.Microseconds())/1000.0, vs.Applied, vs.Stale))

	if top := profiling.TopN(8); top != "" {
		for _, line := range strings.Split(top, ", ") {
			if line != "" && !strings.Contains(line, ":0ms") {
				o.lines = append(o.lines, line)
			}
		}
	}
}

func (o *Overlay) Dispose() {
	if o.fontRenderer != nil {
		o.fontRenderer.Dispose()
	}
}

func (o *Overlay) SetViewport(width, height int) {
	o.width = width
	o.height = height
	if o.fontRenderer != nil {
		o.fontRenderer.SetViewport(width, height)
	}
}
