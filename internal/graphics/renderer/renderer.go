package renderer

import (
	"voxview/internal/config"
	"voxview/internal/graphics"
	"voxview/internal/world"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Renderer orchestrates rendering via renderable features.
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
}

// NewRenderer configures global GL state and initializes the given
// renderables in order.
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	// Configure OpenGL
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	renderer := &Renderer{
		renderables: rs,
		camera:      graphics.NewCamera(width, height),
	}

	// Initialize all renderables
	for _, r := range rs {
		if err := r.Init(); err != nil {
			return nil, err
		}
	}

	return renderer, nil
}

// Render executes one frame over all renderables.
func (r *Renderer) Render(w *world.World, dt float64) {
	// Sky color
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	// FOV is a live setting
	r.camera.FOV = config.Get().Render.FOV

	view := r.camera.GetViewMatrix()
	projection := r.camera.GetProjectionMatrix()

	ctx := RenderContext{
		Camera:  r.camera,
		World:   w,
		DT:      dt,
		View:    view,
		Proj:    projection,
		Frustum: graphics.ExtractFrustum(projection.Mul4(view)),
	}

	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order.
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance.
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// UpdateViewport resizes the camera and every renderable after a window
// size change.
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
