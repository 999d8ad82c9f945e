package renderer

import (
	"voxview/internal/graphics"
	"voxview/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext provides shared per-frame state for all renderables.
type RenderContext struct {
	Camera  *graphics.Camera
	World   *world.World
	DT      float64
	View    mgl32.Mat4
	Proj    mgl32.Mat4
	Frustum graphics.Frustum
}

// Renderable interface defines the lifecycle for renderable features.
// Render order follows list order, so passes that read what earlier
// passes wrote (depth, translucency) are placed after them.
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
