package main

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxview/internal/config"
	"voxview/internal/graphics/occlusion"
	"voxview/internal/graphics/renderables/boxes"
	"voxview/internal/graphics/renderables/overlay"
	"voxview/internal/graphics/renderables/terrain"
	renderer "voxview/internal/graphics/renderer"
	"voxview/internal/mesher"
	"voxview/internal/registry"
	"voxview/internal/world"
)

// World vertical extent in blocks.
const (
	worldMinY   = -64
	worldHeight = 384
)

func setupWindow() (*glfw.Window, error) {
	// Compute shaders need a 4.3 context
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	s := config.Get()
	window, err := glfw.CreateWindow(s.Window.Width, s.Window.Height, "voxview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	if s.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

// App holds the initialized components.
type App struct {
	Window    *glfw.Window
	Renderer  *renderer.Renderer
	World     *world.World
	Mesher    *mesher.Mesher
	Terrain   *terrain.Terrain
	Occlusion *occlusion.Pass
}

func setupApp(window *glfw.Window) (*App, error) {
	reg, err := registry.Load()
	if err != nil {
		return nil, err
	}

	s := config.Get()
	gen := world.NewSimplexGenerator(s.World.Seed, s.World.SeaLevel, reg.Palette())
	w := world.New(worldMinY, worldHeight, gen)

	m := mesher.New(w, reg, config.ResolveWorkers(s.Mesher.Workers), s.Render.Distance)

	// A freshly loaded chunk dirties its own sections and the border
	// sections of already loaded neighbors, whose meshes assumed air there.
	w.SetChunkLoadListener(func(cp world.ChunkPos) {
		m.SubmitChunk(cp.X, cp.Z)
		for _, n := range [...]world.ChunkPos{
			{X: cp.X - 1, Z: cp.Z}, {X: cp.X + 1, Z: cp.Z},
			{X: cp.X, Z: cp.Z - 1}, {X: cp.X, Z: cp.Z + 1},
		} {
			if w.Chunk(n) != nil {
				m.SubmitChunk(n.X, n.Z)
			}
		}
	})
	w.SetSectionChangeListener(m.SubmitSection)

	fbW, fbH := window.GetFramebufferSize()

	// Visibility readbacks feed the scheduler
	occPass := occlusion.New(m.UpdateVisibility, fbW, fbH)

	terrainR := terrain.NewTerrain(m, reg)
	waterR := terrain.NewWater(terrainR)
	boxesR := boxes.NewBoxes(occPass.Latest)
	overlayR := overlay.NewOverlay(fbW, fbH, m, terrainR, occPass)

	// Order matters: the occlusion pass snapshots the depth buffer after
	// the opaque terrain and before anything translucent lands on top.
	r, err := renderer.NewRenderer(fbW, fbH,
		terrainR,
		occPass,
		waterR,
		boxesR,
		overlayR,
	)
	if err != nil {
		return nil, err
	}

	// Seed a small area synchronously so the first frames have ground under
	// the camera, then drop the camera just above it.
	cam := r.GetCamera()
	w.StreamAroundSync(cam.Position.X(), cam.Position.Z(), 2)
	groundY := w.HeightAt(int(cam.Position.X()), int(cam.Position.Z()))
	cam.Position[1] = float32(groundY) + 24

	return &App{
		Window:    window,
		Renderer:  r,
		World:     w,
		Mesher:    m,
		Terrain:   terrainR,
		Occlusion: occPass,
	}, nil
}
